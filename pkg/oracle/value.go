package oracle

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// DefaultTolerance is the absolute error accepted between numeric cells.
const DefaultTolerance = 0.005

// Value is one typed result cell. Kind selects the meaningful field: Bool
// for KindBool, Int for KindLong, Float for KindDouble and KindDecimal, Text
// for the text kinds. A Null value carries the kind of its column.
type Value struct {
	Kind  typemap.Kind
	Null  bool
	Bool  bool
	Int   int64
	Float float64
	Text  string
}

// Null returns a null cell of the given kind.
func Null(kind typemap.Kind) Value { return Value{Kind: kind, Null: true} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{Kind: typemap.KindBool, Bool: b} }

// Long returns an integer cell.
func Long(i int64) Value { return Value{Kind: typemap.KindLong, Int: i} }

// Float returns a floating cell of kind double or decimal.
func Float(kind typemap.Kind, f float64) Value { return Value{Kind: kind, Float: f} }

// Text returns a text cell of kind string, date or datetime.
func Text(kind typemap.Kind, s string) Value { return Value{Kind: kind, Text: s} }

// Number returns the numeric value of v and whether it has one.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case typemap.KindLong:
		return float64(v.Int), true
	case typemap.KindDouble, typemap.KindDecimal:
		return v.Float, true
	default:
		return 0, false
	}
}

// String renders v as text. Nulls render as "null".
func (v Value) String() string {
	if v.Null {
		return "null"
	}
	switch v.Kind {
	case typemap.KindBool:
		return strconv.FormatBool(v.Bool)
	case typemap.KindLong:
		return strconv.FormatInt(v.Int, 10)
	case typemap.KindDouble, typemap.KindDecimal:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Text
	}
}

// Equal reports whether two cells are equal. A null equals only a null.
// Numeric cells are equal when they differ by at most tol; everything else
// compares exactly.
func (v Value) Equal(o Value, tol float64) bool {
	if v.Null || o.Null {
		return v.Null && o.Null
	}

	if v.Kind == typemap.KindLong && o.Kind == typemap.KindLong {
		return v.Int == o.Int
	}
	a, aok := v.Number()
	b, bok := o.Number()
	if aok && bok {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.IsNaN(a) && math.IsNaN(b)
		}
		if math.IsInf(a, 0) || math.IsInf(b, 0) {
			return a == b
		}
		// The epsilon keeps a difference of exactly tol from failing on
		// binary rounding.
		return math.Abs(a-b) <= tol+1e-12
	}
	if aok || bok {
		return false
	}

	if v.Kind == typemap.KindBool || o.Kind == typemap.KindBool {
		return v.Kind == o.Kind && v.Bool == o.Bool
	}
	return v.Text == o.Text
}

// CellError reports a cell that cannot be coerced to its column kind.
type CellError struct {
	Kind  typemap.Kind
	Value any
	Err   error
}

func (e *CellError) Error() string {
	msg := fmt.Sprintf("cannot read %#v as %s", e.Value, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CellError) Unwrap() error { return e.Err }

// IsNullSentinel reports whether raw marks a null cell: nil, the literal
// string "NULL", or the YAML marker "~".
func IsNullSentinel(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == "NULL" || v == "~"
	case []byte:
		return v == nil
	}
	return false
}

// Coerce converts a raw cell into a Value of the given kind. It is applied
// to expected cells from a test document and to actual cells scanned from a
// result set, so both sides compare in the same representation.
//
// KindAny keeps the natural class of raw.
func Coerce(kind typemap.Kind, raw any) (Value, error) {
	if IsNullSentinel(raw) {
		return Null(kind), nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	switch kind {
	case typemap.KindBool:
		return coerceBool(raw), nil
	case typemap.KindLong:
		i, err := toInt(raw)
		if err != nil {
			return Value{}, &CellError{Kind: kind, Value: raw, Err: err}
		}
		return Long(i), nil
	case typemap.KindDouble, typemap.KindDecimal:
		f, err := toFloat(raw)
		if err != nil {
			return Value{}, &CellError{Kind: kind, Value: raw, Err: err}
		}
		return Float(kind, f), nil
	case typemap.KindString, typemap.KindDate, typemap.KindDatetime:
		return Text(kind, toText(kind, raw)), nil
	case typemap.KindAny:
		return natural(raw), nil
	default:
		return Value{}, &CellError{Kind: kind, Value: raw, Err: fmt.Errorf("unsupported kind")}
	}
}

// coerceBool maps a zero number, a numeric string equal to zero, or the
// string "0" to false and everything else to true. Native booleans keep
// their value.
func coerceBool(raw any) Value {
	switch v := raw.(type) {
	case bool:
		return Bool(v)
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Bool(f != 0)
		}
		return Bool(s != "0")
	}
	if f, err := toFloat(raw); err == nil {
		return Bool(f != 0)
	}
	return Bool(true)
}

func natural(raw any) Value {
	switch v := raw.(type) {
	case bool:
		return Bool(v)
	case string:
		return Text(typemap.KindString, v)
	case time.Time:
		return Text(typemap.KindDatetime, formatTime(typemap.KindDatetime, v))
	case float32, float64:
		f, _ := toFloat(v)
		return Float(typemap.KindDouble, f)
	}
	if i, err := toInt(raw); err == nil {
		return Long(i)
	}
	if f, err := toFloat(raw); err == nil {
		return Float(typemap.KindDouble, f)
	}
	return Text(typemap.KindString, fmt.Sprint(raw))
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("out of range")
		}
		return int64(v), nil
	case uint:
		return toInt(uint64(v))
	case float32:
		return toInt(float64(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("not an integer")
		}
		return int64(v), nil
	case *big.Int:
		if !v.IsInt64() {
			return 0, fmt.Errorf("out of range")
		}
		return v.Int64(), nil
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return toInt(f)
	}
	return 0, fmt.Errorf("unsupported type %T", raw)
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	case interface{ Float64() float64 }:
		return v.Float64(), nil
	}
	i, err := toInt(raw)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}

func toText(kind typemap.Kind, raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case time.Time:
		return formatTime(kind, v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(raw)
}

func formatTime(kind typemap.Kind, t time.Time) string {
	if kind == typemap.KindDate {
		return t.Format(time.DateOnly)
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999")
	}
	return t.Format(time.DateTime)
}

// FormatRows renders rows for diagnostics, one bracketed row per line.
func FormatRows(rows [][]Value) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(rowKey(row))
	}
	return b.String()
}
