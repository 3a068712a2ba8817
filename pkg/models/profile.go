package models

import (
	"time"

	"github.com/google/uuid"
)

// ColumnType is the inferred type of a profiled column.
type ColumnType string

const (
	ColumnTypeNumeric    ColumnType = "numeric"
	ColumnTypeText       ColumnType = "text"
	ColumnTypeDate       ColumnType = "date"
	ColumnTypeIdentifier ColumnType = "identifier"
)

// ValidColumnTypes contains all valid column type values.
var ValidColumnTypes = []ColumnType{
	ColumnTypeNumeric,
	ColumnTypeText,
	ColumnTypeDate,
	ColumnTypeIdentifier,
}

// IsValidColumnType checks if the given type is valid.
func IsValidColumnType(t ColumnType) bool {
	for _, v := range ValidColumnTypes {
		if v == t {
			return true
		}
	}
	return false
}

// NumericClass is the decimal precision class of a numeric column.
// Columns only pair as numeric join keys when their classes match.
type NumericClass string

const (
	NumericClassInteger NumericClass = "integer"
	NumericClassDecimal NumericClass = "decimal"
	NumericClassNone    NumericClass = ""
)

// ColumnProfile holds per-column statistics computed by the profiler.
// Immutable once computed; recomputed whenever the source table changes.
type ColumnProfile struct {
	Name              string       `json:"name"`
	Type              ColumnType   `json:"type"`
	DistinctCount     int          `json:"distinct_count"`
	NullRate          float64      `json:"null_rate"`
	SampleCardinality int          `json:"sample_cardinality"`
	NumericClass      NumericClass `json:"numeric_class,omitempty"`

	// Min/max are set only for numeric and date columns.
	MinNumeric *float64   `json:"min_numeric,omitempty"`
	MaxNumeric *float64   `json:"max_numeric,omitempty"`
	MinDate    *time.Time `json:"min_date,omitempty"`
	MaxDate    *time.Time `json:"max_date,omitempty"`
}

// TableSnapshot is the profiled view of one uploaded table. A new snapshot
// replaces the old one on reload; snapshots are never mutated in place.
type TableSnapshot struct {
	ID       uuid.UUID       `json:"id"`
	SourceID string          `json:"source_id"`
	RowCount int             `json:"row_count"`
	Columns  []ColumnProfile `json:"columns"`
}

// Column returns the profile for the named column, or false if absent.
func (s *TableSnapshot) Column(name string) (*ColumnProfile, bool) {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i], true
		}
	}
	return nil, false
}
