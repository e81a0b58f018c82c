package codegen

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dialectgen/pkg/oracle"
	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// CompiledSuite is the compiled form of one suite document.
type CompiledSuite struct {
	Name       string
	Assertions []*oracle.Assertion
}

// SuiteOptions extend Options for test-suite rendering.
type SuiteOptions struct {
	Options
	// Policy and Tolerance are baked into the generated options value.
	Policy    oracle.Policy
	Tolerance float64
}

var kindIdents = map[typemap.Kind]string{
	typemap.KindAny:      "typemap.KindAny",
	typemap.KindBool:     "typemap.KindBool",
	typemap.KindLong:     "typemap.KindLong",
	typemap.KindDouble:   "typemap.KindDouble",
	typemap.KindDecimal:  "typemap.KindDecimal",
	typemap.KindString:   "typemap.KindString",
	typemap.KindDate:     "typemap.KindDate",
	typemap.KindDatetime: "typemap.KindDatetime",
}

func kindIdent(k typemap.Kind) string {
	if id, ok := kindIdents[k]; ok {
		return id
	}
	return fmt.Sprintf("typemap.Kind(%q)", string(k))
}

// TestName returns the test function name for an assertion:
// Test<SUITE><ID> with every character outside [A-Za-z0-9_] replaced by "_".
func TestName(suite, id string) string {
	return "Test" + identifier(strings.ToUpper(suite)) + identifier(id)
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SuiteSource renders the suites as a go test file with one test function
// per assertion, in suite order. Colliding test names get a numeric suffix.
// The default package is "tdvt".
func SuiteSource(suites []CompiledSuite, opts SuiteOptions) ([]byte, error) {
	var body bytes.Buffer
	var uses imports
	names := make(map[string]bool)

	for _, s := range suites {
		for _, a := range s.Assertions {
			base := TestName(s.Name, a.ID)
			name := base
			for n := 2; names[name]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
			names[name] = true
			writeTest(&body, name, a, &uses)
		}
	}

	var buf bytes.Buffer
	writeHeader(&buf, opts.Options, opts.pkg("tdvt"))

	// A suite with every case excluded declares only the options value.
	tests := len(names) > 0
	buf.WriteString("import (\n")
	if uses.math {
		buf.WriteString("\t\"math\"\n")
	}
	if tests {
		buf.WriteString("\t\"testing\"\n")
	}
	if uses.math || tests {
		buf.WriteString("\n")
	}
	buf.WriteString("\t\"github.com/leapstack-labs/dialectgen/pkg/oracle\"\n")
	if tests {
		buf.WriteString("\t\"github.com/leapstack-labs/dialectgen/pkg/oracle/oracletest\"\n")
	}
	if uses.typemap {
		buf.WriteString("\t\"github.com/leapstack-labs/dialectgen/pkg/typemap\"\n")
	}
	buf.WriteString(")\n\n")

	policy := "oracle.PolicyOrdered"
	if opts.Policy == oracle.PolicyUnordered {
		policy = "oracle.PolicyUnordered"
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = oracle.DefaultTolerance
	}
	fmt.Fprintf(&buf, "var options = oracle.Options{Policy: %s, Tolerance: %s}\n\n", policy, floatLit(tol))

	buf.Write(body.Bytes())
	return gofmt("test suite", buf.Bytes())
}

// imports records the optional packages referenced by generated tests.
type imports struct {
	math    bool
	typemap bool
}

func writeTest(buf *bytes.Buffer, name string, a *oracle.Assertion, uses *imports) {
	fmt.Fprintf(buf, "func %s(t *testing.T) {\n", name)
	buf.WriteString("\toracletest.Run(t, &oracle.Assertion{\n")
	fmt.Fprintf(buf, "\t\tID: %q,\n", a.ID)
	fmt.Fprintf(buf, "\t\tSuite: %q,\n", a.Suite)
	fmt.Fprintf(buf, "\t\tSQL: %q,\n", a.SQL)

	if a.Labels != nil {
		buf.WriteString("\t\tLabels: []string{")
		for i, l := range a.Labels {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(buf, "%q", l)
		}
		buf.WriteString("},\n")
	}

	if a.Types != nil {
		uses.typemap = true
		buf.WriteString("\t\tTypes: []typemap.Kind{")
		for i, k := range a.Types {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(kindIdent(k))
		}
		buf.WriteString("},\n")
	}

	if a.Rows != nil {
		buf.WriteString("\t\tRows: [][]oracle.Value{\n")
		for _, row := range a.Rows {
			buf.WriteString("\t\t\t{")
			for i, v := range row {
				if i > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(valueLit(v, uses))
			}
			buf.WriteString("},\n")
		}
		buf.WriteString("\t\t},\n")
	}

	if a.RowCount != nil {
		fmt.Fprintf(buf, "\t\tRowCount: oracletest.Int(%d),\n", *a.RowCount)
	}
	if a.RowCountAtLeast {
		buf.WriteString("\t\tRowCountAtLeast: true,\n")
	}
	if a.Ordered != nil {
		fmt.Fprintf(buf, "\t\tOrdered: oracletest.Bool(%t),\n", *a.Ordered)
	}

	buf.WriteString("\t}, options)\n}\n\n")
}

// valueLit returns the Go expression for v.
func valueLit(v oracle.Value, uses *imports) string {
	if v.Null {
		uses.typemap = true
		return fmt.Sprintf("oracle.Null(%s)", kindIdent(v.Kind))
	}
	switch v.Kind {
	case typemap.KindBool:
		return fmt.Sprintf("oracle.Bool(%t)", v.Bool)
	case typemap.KindLong:
		return fmt.Sprintf("oracle.Long(%d)", v.Int)
	case typemap.KindDouble, typemap.KindDecimal:
		uses.typemap = true
		f := floatLit(v.Float)
		uses.math = uses.math || strings.HasPrefix(f, "math.")
		return fmt.Sprintf("oracle.Float(%s, %s)", kindIdent(v.Kind), f)
	default:
		uses.typemap = true
		return fmt.Sprintf("oracle.Text(%s, %q)", kindIdent(v.Kind), v.Text)
	}
}

func floatLit(f float64) string {
	switch {
	case math.IsNaN(f):
		return "math.NaN()"
	case math.IsInf(f, 1):
		return "math.Inf(1)"
	case math.IsInf(f, -1):
		return "math.Inf(-1)"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
