// Package typemap maps the closed vocabularies used by function and test
// specifications onto the type names exposed by the generated artifacts.
//
// Two mappers live here. EvalMapper turns an evaluation-type tag from a
// function specification (EvalNumber, EvalString, ...) into the canonical
// type name reported by the catalog. TestMapper turns a test-type token from
// a compliance test (float, varchar, int, ...) into the Kind used to coerce
// expected cells and to check the type name reported by the server.
//
// Both vocabularies are closed. An unknown token is a generation-time
// contract violation and is reported as *UnknownTagError.
package typemap

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical is an externally reported type name for a function argument or
// return value. The zero value is Null: polymorphic, no fixed type.
type Canonical string

// Canonical type names.
const (
	Null    Canonical = ""
	Numeric Canonical = "numeric"
	String  Canonical = "string"
	Long    Canonical = "long"
	Int     Canonical = "int"
	Date    Canonical = "date"
	Double  Canonical = "double"
	Decimal Canonical = "decimal"
)

// IsNull reports whether c is the polymorphic marker.
func (c Canonical) IsNull() bool { return c == Null }

// String returns the type name, or "null" for the polymorphic marker.
func (c Canonical) String() string {
	if c == Null {
		return "null"
	}
	return string(c)
}

// Evaluation type tags accepted in function specifications.
const (
	EvalNumber      = "EvalNumber"
	EvalString      = "EvalString"
	EvalInt64       = "EvalInt64"
	EvalInt32       = "EvalInt32"
	EvalPolymorphic = "EvalPolymorphic"
	EvalDatetime    = "EvalDatetime"
	EvalDate        = "EvalDate"
	EvalDouble      = "EvalDouble"
	EvalDecimal128  = "EvalDecimal128"
)

var evalTags = map[string]Canonical{
	EvalNumber:      Numeric,
	EvalString:      String,
	EvalInt64:       Long,
	EvalInt32:       Int,
	EvalPolymorphic: Null,
	EvalDatetime:    Date,
	EvalDate:        Date,
	EvalDouble:      Double,
	EvalDecimal128:  Decimal,
}

// UnknownTagError is returned when a token falls outside a closed vocabulary.
type UnknownTagError struct {
	Vocabulary string // "evaluation type" or "test type"
	Tag        string
	Known      []string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown %s %q (known: %s)", e.Vocabulary, e.Tag, strings.Join(e.Known, ", "))
}

// EvalMapper maps evaluation-type tags to canonical type names.
type EvalMapper struct{}

// NewEvalMapper returns the mapper for the fixed evaluation-type enumeration.
func NewEvalMapper() *EvalMapper {
	return &EvalMapper{}
}

// Map returns the canonical name for tag. EvalPolymorphic maps to Null.
func (m *EvalMapper) Map(tag string) (Canonical, error) {
	c, ok := evalTags[tag]
	if !ok {
		return Null, &UnknownTagError{Vocabulary: "evaluation type", Tag: tag, Known: EvalTags()}
	}
	return c, nil
}

// EvalTags returns every accepted evaluation-type tag, sorted.
func EvalTags() []string {
	return sortedKeys(evalTags)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
