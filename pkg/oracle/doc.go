// Package oracle compiles declarative SQL compliance tests into assertions
// and checks query results against them.
//
// A TestCase comes from a suite document. Compiler.Compile normalizes its SQL
// and expected labels, maps its declared test types to kinds, and coerces its
// expected cells into typed Values. Excluded cases (skip, expected errors)
// yield ErrExcluded.
//
// At execution time a ResultSet is checked with Evaluate: column count,
// labels, types, then rows through a Comparator. Two comparators exist:
// OrderedTolerant (the default) compares rows positionally with a numeric
// tolerance of DefaultTolerance; UnorderedStrings compares rows as text and
// only requires actual rows to be a subset of the expected ones.
package oracle
