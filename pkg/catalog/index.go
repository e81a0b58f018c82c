package catalog

import (
	"strings"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// Category is one of the semantic buckets a canonical type name falls into.
type Category int

// Categories a canonical type name can be classified into.
const (
	Unclassified Category = iota
	NumericCategory
	StringCategory
	DateCategory
)

// Classify returns the category of a canonical type name. The polymorphic
// marker and any name outside the three buckets are Unclassified.
func Classify(c typemap.Canonical) Category {
	switch c {
	case typemap.String:
		return StringCategory
	case typemap.Numeric, typemap.Long, typemap.Int, typemap.Double, typemap.Decimal:
		return NumericCategory
	case typemap.Date:
		return DateCategory
	default:
		return Unclassified
	}
}

// Categories holds the ordered function-name sets derived from a catalog.
// Each set lists a name once, in first-seen order.
type Categories struct {
	Numeric []string `json:"numeric"`
	String  []string `json:"string"`
	Date    []string `json:"date"`
	// System lists functions taking no arguments.
	System []string `json:"system"`
	// Unclassified lists functions with an argument type outside the three
	// buckets. Polymorphic arguments never land here.
	Unclassified []string `json:"unclassified,omitempty"`
}

// NumericString returns the numeric set joined with commas.
func (c Categories) NumericString() string { return strings.Join(c.Numeric, ",") }

// StringString returns the string set joined with commas.
func (c Categories) StringString() string { return strings.Join(c.String, ",") }

// DateString returns the date set joined with commas.
func (c Categories) DateString() string { return strings.Join(c.Date, ",") }

// SystemString returns the system set joined with commas.
func (c Categories) SystemString() string { return strings.Join(c.System, ",") }

type orderedSet struct {
	seen  map[string]bool
	names []string
}

func (s *orderedSet) add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[name] {
		return
	}
	s.seen[name] = true
	s.names = append(s.names, name)
}

// Index derives the category sets from entries. It walks entries in order and
// each entry's argument types in declared order; the result depends only on
// its input.
func Index(entries []Entry) Categories {
	var numeric, str, date, system, unclassified orderedSet

	for _, e := range entries {
		if len(e.ArgTypes) == 0 {
			system.add(e.Name)
		}
		for _, t := range e.ArgTypes {
			if t.IsNull() {
				continue
			}
			switch Classify(t) {
			case NumericCategory:
				numeric.add(e.Name)
			case StringCategory:
				str.add(e.Name)
			case DateCategory:
				date.add(e.Name)
			default:
				unclassified.add(e.Name)
			}
		}
	}

	return Categories{
		Numeric:      numeric.names,
		String:       str.names,
		Date:         date.names,
		System:       system.names,
		Unclassified: unclassified.names,
	}
}
