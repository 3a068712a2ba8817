// Package loader reads CSV files into tables of tagged values. It is the
// only place raw strings are interpreted; everything downstream works on
// typed cells.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// naMarkers are cell spellings treated as missing, compared after trimming
// and lowercasing.
var naMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
	"nan":  true,
}

// dateLayouts are tried in order when parsing a cell as a date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// Loader reads CSV sources into Tables.
type Loader struct {
	logger *zap.Logger
}

// New creates a Loader.
func New(logger *zap.Logger) *Loader {
	return &Loader{logger: logger.Named("loader")}
}

// LoadFile reads a CSV file into a Table. The table's source identifier is
// the file path.
func (l *Loader) LoadFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return l.Load(f, path)
}

// Load reads CSV data into a Table. The first record is the header; every
// cell is tagged as numeric, date, text, or missing.
func (l *Loader) Load(r io.Reader, source string) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read %s: no header row", source)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", source, err)
	}

	seen := make(map[string]bool, len(header))
	columns := make([]models.Column, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("read %s: empty column name at position %d", source, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("read %s: duplicate column name %q", source, name)
		}
		seen[name] = true
		columns[i] = models.Column{Name: name}
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", source, rows+1, err)
		}
		for i := range columns {
			columns[i].Values = append(columns[i].Values, parseCell(record[i]))
		}
		rows++
	}

	l.logger.Info("table loaded from csv",
		zap.String("source", source),
		zap.Int("rows", rows),
		zap.Int("columns", len(columns)))

	return &models.Table{Source: source, Columns: columns}, nil
}

// parseCell tags one raw cell. Dates are tried before numerics so layouts
// like 2006/01/02 never parse as arithmetic.
func parseCell(raw string) models.Value {
	trimmed := strings.TrimSpace(raw)
	if naMarkers[strings.ToLower(trimmed)] {
		return models.MissingValue()
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return models.DateValue(t)
		}
	}

	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return models.NumericValue(n)
	}

	return models.TextValue(trimmed)
}
