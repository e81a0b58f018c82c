package typemap

import "strings"

// Kind is the value class of a result column in a compliance test.
// It drives both the coercion of expected cells and the check against the
// type name the server reports for the column.
type Kind string

// Result column kinds. KindAny is used when a test declares no types: cells
// keep their natural class.
const (
	KindAny      Kind = ""
	KindBool     Kind = "bool"
	KindLong     Kind = "long"
	KindDouble   Kind = "double"
	KindDecimal  Kind = "decimal"
	KindString   Kind = "string"
	KindDate     Kind = "date"
	KindDatetime Kind = "datetime"
)

// IsNumeric reports whether values of k compare with numeric tolerance.
func (k Kind) IsNumeric() bool {
	return k == KindLong || k == KindDouble || k == KindDecimal
}

// IsText reports whether values of k are carried as text.
func (k Kind) IsText() bool {
	return k == KindString || k == KindDate || k == KindDatetime
}

func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	return string(k)
}

// Test-type tokens. "int" maps to the platform integer, which is int64 in Go
// and reported as long.
var testTokens = map[string]Kind{
	"bool":      KindBool,
	"boolean":   KindBool,
	"int":       KindLong,
	"integer":   KindLong,
	"bigint":    KindLong,
	"long":      KindLong,
	"float":     KindDouble,
	"double":    KindDouble,
	"real":      KindDouble,
	"decimal":   KindDecimal,
	"numeric":   KindDecimal,
	"str":       KindString,
	"string":    KindString,
	"varchar":   KindString,
	"char":      KindString,
	"text":      KindString,
	"date":      KindDate,
	"datetime":  KindDatetime,
	"timestamp": KindDatetime,
}

// Token returns the canonical test-type token for k, the one a recorded
// baseline writes. KindAny has no token and returns "str".
func (k Kind) Token() string {
	switch k {
	case KindBool:
		return "bool"
	case KindLong:
		return "int"
	case KindDouble:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindDatetime:
		return "datetime"
	default:
		return "str"
	}
}

// TestMapper maps test-type tokens to result column kinds.
type TestMapper struct{}

// NewTestMapper returns the mapper for the fixed test-type enumeration.
func NewTestMapper() *TestMapper {
	return &TestMapper{}
}

// Map returns the kind declared by token. Tokens are matched case-insensitively.
func (m *TestMapper) Map(token string) (Kind, error) {
	k, ok := testTokens[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return KindAny, &UnknownTagError{Vocabulary: "test type", Tag: token, Known: TestTokens()}
	}
	return k, nil
}

// TestTokens returns every accepted test-type token, sorted.
func TestTokens() []string {
	return sortedKeys(testTokens)
}

// Reported is the classification of a server-reported column type name.
type Reported struct {
	Name    string // raw name as reported by the driver
	Kind    Kind   // classified kind; KindAny when Unknown is set
	Unknown bool   // server did not report a usable type
}

// Server type names grouped by kind. Matching is on the upper-cased name with
// any parameter list ("DECIMAL(18,3)") removed.
var reportedNames = map[string]Kind{
	"BOOL": KindBool, "BOOLEAN": KindBool, "BIT": KindBool,

	"TINYINT": KindLong, "SMALLINT": KindLong, "INTEGER": KindLong, "INT": KindLong,
	"INT2": KindLong, "INT4": KindLong, "INT8": KindLong, "BIGINT": KindLong,
	"HUGEINT": KindLong, "UTINYINT": KindLong, "USMALLINT": KindLong, "UINTEGER": KindLong,
	"UBIGINT": KindLong, "LONG": KindLong, "SERIAL": KindLong, "BIGSERIAL": KindLong,

	"DOUBLE": KindDouble, "FLOAT": KindDouble, "FLOAT4": KindDouble, "FLOAT8": KindDouble,
	"REAL": KindDouble, "DOUBLE PRECISION": KindDouble,

	"DECIMAL": KindDecimal, "NUMERIC": KindDecimal,

	"VARCHAR": KindString, "TEXT": KindString, "CHAR": KindString, "BPCHAR": KindString,
	"STRING": KindString, "NAME": KindString, "NVARCHAR": KindString, "CHARACTER VARYING": KindString,

	"DATE": KindDate,

	"DATETIME": KindDatetime, "TIMESTAMP": KindDatetime, "TIMESTAMPTZ": KindDatetime,
	"TIMESTAMP WITH TIME ZONE": KindDatetime, "TIMESTAMP_S": KindDatetime,
	"TIMESTAMP_MS": KindDatetime, "TIMESTAMP_NS": KindDatetime,
}

var unknownNames = map[string]bool{"": true, "NULL": true, "UNKNOWN": true, "ANY": true}

// ClassifyReported classifies the type name a server reported for a column.
// Empty, NULL and UNKNOWN names are marked Unknown; servers do not always
// report a type for computed columns. A name that is neither known nor
// unknown keeps KindAny with Unknown false, so callers can flag it.
func ClassifyReported(name string) Reported {
	key := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(key, '('); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	if unknownNames[key] {
		return Reported{Name: name, Unknown: true}
	}
	return Reported{Name: name, Kind: reportedNames[key]}
}

// Matches reports whether a column reported as r satisfies the expected kind.
// An unknown report is tolerated. Double and decimal are interchangeable
// since engines type fractional literals either way.
func (r Reported) Matches(expected Kind) bool {
	if r.Unknown || expected == KindAny {
		return true
	}
	if fractional(r.Kind) && fractional(expected) {
		return true
	}
	return r.Kind == expected
}

func fractional(k Kind) bool {
	return k == KindDouble || k == KindDecimal
}
