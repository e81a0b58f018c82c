package catalog

import "fmt"

// FunctionSpec is one declared function from a function-specification
// document.
type FunctionSpec struct {
	ID          string
	Description string
	Invocations []Invocation
}

// Invocation is one declared call signature.
type Invocation struct {
	Arguments  []Arg
	ReturnType string
}

// Arg is one declared argument, carrying its evaluation-type tag.
type Arg struct {
	EvalType string
}

// Source is an ordered list of function specifications read from one
// document. Name identifies the document in errors and logs.
type Source struct {
	Name      string
	Functions []FunctionSpec
}

// MissingFieldError reports a function specification lacking a field the
// catalog needs.
type MissingFieldError struct {
	Source string
	Index  int    // position of the function within Source
	ID     string // empty when the id itself is missing
	Field  string // e.g. "invocations[0].return_type"
}

func (e *MissingFieldError) Error() string {
	where := fmt.Sprintf("%s: function #%d", e.Source, e.Index)
	if e.ID != "" {
		where = fmt.Sprintf("%s: function %s", e.Source, e.ID)
	}
	return fmt.Sprintf("%s: missing required field %q", where, e.Field)
}
