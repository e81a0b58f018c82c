package catalog

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// Builder turns function specifications into a Catalog.
//
// Only the first invocation of each function is represented. Functions
// declaring more than one invocation are logged at Warn level.
type Builder struct {
	mapper *typemap.EvalMapper
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		mapper: typemap.NewEvalMapper(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build maps every function of every source, in source order then
// declaration order, into one catalog entry each. Sources are not
// deduplicated against each other.
//
// The first missing field or unknown evaluation tag aborts the build.
func (b *Builder) Build(sources ...Source) (*Catalog, error) {
	upper := cases.Upper(language.Und)

	var entries []Entry
	for _, src := range sources {
		for i, fn := range src.Functions {
			entry, err := b.entry(upper, src.Name, i, fn)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		b.logger.Debug("catalog source mapped", "source", src.Name, "functions", len(src.Functions))
	}

	cat := newCatalog(entries)
	for _, name := range cat.cats.Unclassified {
		b.logger.Warn("function has argument types outside every category", "function", name)
	}
	b.logger.Info("catalog built",
		"entries", len(cat.entries),
		"numeric", len(cat.cats.Numeric),
		"string", len(cat.cats.String),
		"date", len(cat.cats.Date))
	return cat, nil
}

func (b *Builder) entry(upper cases.Caser, source string, index int, fn FunctionSpec) (Entry, error) {
	missing := func(field string) error {
		return &MissingFieldError{Source: source, Index: index, ID: fn.ID, Field: field}
	}

	if fn.ID == "" {
		return Entry{}, missing("id")
	}
	if len(fn.Invocations) == 0 {
		return Entry{}, missing("invocations[0]")
	}
	if len(fn.Invocations) > 1 {
		b.logger.Warn("function declares several invocations, only the first is cataloged",
			"source", source, "function", fn.ID, "invocations", len(fn.Invocations))
	}

	inv := fn.Invocations[0]
	if inv.ReturnType == "" {
		return Entry{}, missing("invocations[0].return_type")
	}
	ret, err := b.mapper.Map(inv.ReturnType)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: function %s return type: %w", source, fn.ID, err)
	}

	args := make([]typemap.Canonical, len(inv.Arguments))
	for i, arg := range inv.Arguments {
		if arg.EvalType == "" {
			return Entry{}, missing(fmt.Sprintf("invocations[0].arguments[%d].eval_type", i))
		}
		if args[i], err = b.mapper.Map(arg.EvalType); err != nil {
			return Entry{}, fmt.Errorf("%s: function %s argument %d: %w", source, fn.ID, i, err)
		}
	}

	return Entry{
		Name:       upper.String(fn.ID),
		ReturnType: ret,
		Comment:    fn.Description,
		ArgTypes:   args,
	}, nil
}
