// Package export writes tables back out as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// WriteCSV writes the table as CSV: header row first, then one record per
// row. Missing values render as empty cells.
func WriteCSV(w io.Writer, table *models.Table) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Name
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for row := 0; row < table.RowCount(); row++ {
		for i := range table.Columns {
			record[i] = table.Columns[i].Values[row].String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the table to a CSV file at path.
func WriteCSVFile(path string, table *models.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, table); err != nil {
		return err
	}
	return f.Close()
}
