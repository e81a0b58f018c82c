// Package catalog builds the function catalog of a SQL dialect and derives
// its category indexes.
//
// A Catalog is an immutable value produced by Builder.Build (from function
// specifications) or FromEntries (from previously generated entries). It
// answers the function-metadata questions a driver's introspection surface
// asks: which functions exist, what they return, what they accept, and which
// accept numeric, string or date arguments.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// Entry describes one cataloged function, derived from its first invocation.
type Entry struct {
	Name       string              `json:"name"`
	ReturnType typemap.Canonical   `json:"returnType"`
	Comment    string              `json:"comment"`
	ArgTypes   []typemap.Canonical `json:"argTypes"`
}

func (e Entry) clone() Entry {
	e.ArgTypes = append([]typemap.Canonical(nil), e.ArgTypes...)
	return e
}

// Catalog is an ordered, immutable set of entries with their category index.
type Catalog struct {
	entries []Entry
	names   []string
	cats    Categories
}

func newCatalog(entries []Entry) *Catalog {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return &Catalog{entries: entries, names: names, cats: Index(entries)}
}

// FromEntries builds a Catalog from already-mapped entries. The slice is
// copied.
func FromEntries(entries []Entry) *Catalog {
	owned := make([]Entry, len(entries))
	for i, e := range entries {
		owned[i] = e.clone()
	}
	return newCatalog(owned)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Names returns every entry name in catalog order, duplicates included.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Categories returns the derived category sets.
func (c *Catalog) Categories() Categories {
	return Categories{
		Numeric:      append([]string(nil), c.cats.Numeric...),
		String:       append([]string(nil), c.cats.String...),
		Date:         append([]string(nil), c.cats.Date...),
		System:       append([]string(nil), c.cats.System...),
		Unclassified: append([]string(nil), c.cats.Unclassified...),
	}
}

// NumericFunctions returns the comma-joined numeric function names.
func (c *Catalog) NumericFunctions() string { return c.cats.NumericString() }

// StringFunctions returns the comma-joined string function names.
func (c *Catalog) StringFunctions() string { return c.cats.StringString() }

// DateFunctions returns the comma-joined date function names.
func (c *Catalog) DateFunctions() string { return c.cats.DateString() }

// SystemFunctions returns the comma-joined zero-argument function names.
func (c *Catalog) SystemFunctions() string { return c.cats.SystemString() }

// Functions returns the entries whose name matches a SQL LIKE pattern
// ('%' any run, '_' one character, '\' escape), case-insensitively. An empty
// pattern matches everything.
func (c *Catalog) Functions(pattern string) []Entry {
	match := likeMatcher(pattern)
	var out []Entry
	for _, e := range c.entries {
		if match(e.Name) {
			out = append(out, e.clone())
		}
	}
	return out
}

// ColumnRole tells a return column from an argument column.
type ColumnRole string

// Column roles.
const (
	ReturnColumn ColumnRole = "return"
	InColumn     ColumnRole = "in"
)

// FunctionColumn is one row of function-column metadata: the return value
// at Ordinal 0, then each argument from 1.
type FunctionColumn struct {
	Function string            `json:"function"`
	Ordinal  int               `json:"ordinal"`
	Name     string            `json:"name"`
	Role     ColumnRole        `json:"role"`
	Type     typemap.Canonical `json:"type"`
	Comment  string            `json:"comment,omitempty"`
}

// FunctionColumns flattens the entries matching pattern into per-column rows.
func (c *Catalog) FunctionColumns(pattern string) []FunctionColumn {
	var out []FunctionColumn
	for _, e := range c.Functions(pattern) {
		out = append(out, FunctionColumn{
			Function: e.Name,
			Name:     "result",
			Role:     ReturnColumn,
			Type:     e.ReturnType,
			Comment:  e.Comment,
		})
		for i, t := range e.ArgTypes {
			out = append(out, FunctionColumn{
				Function: e.Name,
				Ordinal:  i + 1,
				Name:     "arg" + strconv.Itoa(i+1),
				Role:     InColumn,
				Type:     t,
			})
		}
	}
	return out
}

func likeMatcher(pattern string) func(string) bool {
	if pattern == "" || pattern == "%" {
		return func(string) bool { return true }
	}

	var b strings.Builder
	b.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(regexp.QuoteMeta(`\`))
	}
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	return re.MatchString
}
