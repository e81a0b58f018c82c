package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumnTypes(t *testing.T) {
	rows := [][]string{
		{"key00", "10.85", "1", "true", "2004-04-15", "2004-04-15", "1972-07-04 00:00:00", "", "12"},
		{"key01", "-3", "", "FALSE", "", "2004-04-15 13:30:00", "1972-07-04T21:00:00", "", "twelve"},
		{"key02", "", "-7", "", "1972-07-04", "", "", " ", "5"},
	}

	got := InferColumnTypes(9, rows)
	assert.Equal(t, []ColumnType{
		ColumnText,
		ColumnFloat,
		ColumnInteger,
		ColumnBoolean,
		ColumnDate,
		ColumnTimestamp,
		ColumnTimestamp,
		ColumnText,
		ColumnText,
	}, got)
}

func TestInferColumnTypes_ShortRows(t *testing.T) {
	got := InferColumnTypes(3, [][]string{{"1"}, {"2", "x"}})
	assert.Equal(t, []ColumnType{ColumnInteger, ColumnText, ColumnText}, got)
}

func TestColumnType_Convert(t *testing.T) {
	tests := []struct {
		name string
		typ  ColumnType
		cell string
		want any
	}{
		{"integer", ColumnInteger, " 42 ", int64(42)},
		{"float", ColumnFloat, "10.85", 10.85},
		{"float from integer cell", ColumnFloat, "-3", -3.0},
		{"boolean", ColumnBoolean, "False", false},
		{"date", ColumnDate, "2004-04-15", "2004-04-15"},
		{"text keeps spacing", ColumnText, " a ", " a "},
		{"empty is null", ColumnFloat, "", nil},
		{"blank numeric is null", ColumnInteger, "  ", nil},
		{"unparsable falls back to the cell", ColumnInteger, "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Convert(tt.cell))
		})
	}
}

func TestTypeNames_DDL(t *testing.T) {
	names := TypeNames{ColumnInteger: "BIGINT", ColumnText: "VARCHAR"}
	assert.Equal(t, "BIGINT", names.DDL(ColumnInteger))
	assert.Equal(t, "VARCHAR", names.DDL(ColumnFloat))
	assert.Equal(t, "TEXT", TypeNames(nil).DDL(ColumnDate))
	assert.Equal(t, "timestamp", ColumnTimestamp.String())
}
