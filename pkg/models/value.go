package models

import (
	"strconv"
	"time"
)

// ValueKind tags the type of a single cell value.
type ValueKind string

const (
	ValueKindNumeric ValueKind = "numeric"
	ValueKindText    ValueKind = "text"
	ValueKindDate    ValueKind = "date"
	ValueKindMissing ValueKind = "missing"
)

// Value is a tagged cell value. Exactly one payload field is meaningful,
// selected by Kind. Using an explicit tag instead of interface{} keeps type
// inference and comparisons exhaustive.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
	Date time.Time
}

// NumericValue creates a numeric cell.
func NumericValue(f float64) Value {
	return Value{Kind: ValueKindNumeric, Num: f}
}

// TextValue creates a text cell.
func TextValue(s string) Value {
	return Value{Kind: ValueKindText, Text: s}
}

// DateValue creates a date cell.
func DateValue(t time.Time) Value {
	return Value{Kind: ValueKindDate, Date: t}
}

// MissingValue creates a missing cell.
func MissingValue() Value {
	return Value{Kind: ValueKindMissing}
}

// IsMissing reports whether the cell has no value.
func (v Value) IsMissing() bool {
	return v.Kind == ValueKindMissing
}

// Key returns a canonical string for equality comparison across rows and
// tables. The kind prefix prevents cross-kind collisions (numeric 5 never
// equals text "5"). Missing values have no key.
func (v Value) Key() (string, bool) {
	switch v.Kind {
	case ValueKindNumeric:
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64), true
	case ValueKindText:
		return "t:" + v.Text, true
	case ValueKindDate:
		return "d:" + v.Date.UTC().Format(time.RFC3339), true
	default:
		return "", false
	}
}

// String renders the value for display and CSV export.
// Missing values render as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case ValueKindNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueKindText:
		return v.Text
	case ValueKindDate:
		if v.Date.Hour() == 0 && v.Date.Minute() == 0 && v.Date.Second() == 0 {
			return v.Date.Format("2006-01-02")
		}
		return v.Date.Format(time.RFC3339)
	default:
		return ""
	}
}
