package models

// Column is a named, ordered sequence of cell values.
type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered sequence of named columns plus a source identifier.
// All columns have the same length. Tables are produced by the data-loader
// collaborator and are never mutated by the engine.
type Table struct {
	Source  string
	Columns []Column
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column returns the named column, or false if absent.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
