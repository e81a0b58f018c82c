package adapter

import (
	"strconv"
	"strings"
	"time"
)

// ColumnType is the storage type inferred for a seed CSV column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnFloat
	ColumnBoolean
	ColumnDate
	ColumnTimestamp
)

// String returns the lower-case name of the column type.
func (t ColumnType) String() string {
	switch t {
	case ColumnInteger:
		return "integer"
	case ColumnFloat:
		return "float"
	case ColumnBoolean:
		return "boolean"
	case ColumnDate:
		return "date"
	case ColumnTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// TypeNames maps inferred column types to the DDL names of one dialect.
// A missing entry falls back to the ColumnText name, then to TEXT.
type TypeNames map[ColumnType]string

// DDL returns the dialect name for t.
func (n TypeNames) DDL(t ColumnType) string {
	if name, ok := n[t]; ok {
		return name
	}
	if name, ok := n[ColumnText]; ok {
		return name
	}
	return "TEXT"
}

// Checked in order; the first type every non-empty cell parses as wins.
var inferenceOrder = []ColumnType{ColumnInteger, ColumnFloat, ColumnBoolean, ColumnDate, ColumnTimestamp}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// InferColumnTypes infers a type for each of width columns from the data
// rows (header excluded). Empty cells are NULL and match any type; a column
// with no non-empty cell is text. Integer and float columns widen to float,
// date and timestamp columns widen to timestamp, other mixes fall back to
// text.
func InferColumnTypes(width int, rows [][]string) []ColumnType {
	types := make([]ColumnType, width)
	for col := range width {
		candidates := map[ColumnType]bool{}
		for _, t := range inferenceOrder {
			candidates[t] = true
		}
		seen := false
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			seen = true
			for t := range candidates {
				if !parsesAs(t, cell) {
					delete(candidates, t)
				}
			}
			if len(candidates) == 0 {
				break
			}
		}
		if !seen {
			continue
		}
		for _, t := range inferenceOrder {
			if candidates[t] {
				types[col] = t
				break
			}
		}
	}
	return types
}

func parsesAs(t ColumnType, cell string) bool {
	switch t {
	case ColumnInteger:
		_, err := strconv.ParseInt(cell, 10, 64)
		return err == nil
	case ColumnFloat:
		_, err := strconv.ParseFloat(cell, 64)
		return err == nil
	case ColumnBoolean:
		_, ok := parseSeedBool(cell)
		return ok
	case ColumnDate:
		_, err := time.Parse(time.DateOnly, cell)
		return err == nil
	case ColumnTimestamp:
		for _, layout := range timestampLayouts {
			if _, err := time.Parse(layout, cell); err == nil {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func parseSeedBool(cell string) (bool, bool) {
	switch strings.ToLower(cell) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Convert turns a CSV cell into a bind argument for a column of type t. An
// empty cell is nil. Text cells keep their spacing; date and timestamp cells
// stay strings in ISO form.
func (t ColumnType) Convert(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if cell == "" || (t != ColumnText && trimmed == "") {
		return nil
	}
	switch t {
	case ColumnInteger:
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return i
		}
	case ColumnFloat:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case ColumnBoolean:
		if b, ok := parseSeedBool(trimmed); ok {
			return b
		}
	case ColumnDate, ColumnTimestamp:
		return trimmed
	}
	return cell
}
