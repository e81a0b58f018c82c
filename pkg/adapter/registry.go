package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registration describes an adapter and how its targets are reached.
type Registration struct {
	Name string
	New  func(*slog.Logger) Adapter

	// Embedded adapters open the database file named by Config.Path, or a
	// private in-memory database when the path is empty. The others connect
	// to a server at Config.Host.
	Embedded bool

	// DefaultPort is filled in for server targets without a port.
	DefaultPort int
	// DefaultSchema is the schema unqualified names resolve in.
	DefaultSchema string
}

// Configured reports whether cfg names a reachable target: a file for
// embedded adapters, a host for server adapters.
func (r Registration) Configured(cfg Config) bool {
	if r.Embedded {
		return cfg.Path != ""
	}
	return cfg.Host != ""
}

// Shared reports whether separate connections opened with cfg see the same
// database. Server databases and embedded files are shared; in-memory
// databases are private to their connection.
func (r Registration) Shared(cfg Config) bool {
	if !r.Embedded {
		return true
	}
	return cfg.Path != "" && cfg.Path != ":memory:"
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register adds an adapter to the registry, replacing any registration with
// the same name. Adapter packages call it from init().
func Register(r Registration) {
	if r.Name == "" || r.New == nil {
		panic("adapter: Register needs a name and a constructor")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(r.Name)] = r
}

// Lookup returns the registration for an adapter name.
func Lookup(name string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[strings.ToLower(name)]
	return r, ok
}

// Names returns all registered adapter names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the registration for cfg.Type or an UnknownAdapterError.
func Resolve(cfg Config) (Registration, error) {
	if cfg.Type == "" {
		return Registration{}, fmt.Errorf("adapter type not specified")
	}
	r, ok := Lookup(cfg.Type)
	if !ok {
		return Registration{}, &UnknownAdapterError{Type: cfg.Type, Available: Names()}
	}
	return r, nil
}

// NewAdapter creates an unconnected adapter for cfg.Type. A nil logger
// discards output.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	r, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return r.New(logger), nil
}

// UnknownAdapterError is returned when an unknown adapter type is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check target.type in dialectgen.yaml or --target", e.Type, e.Available)
}
