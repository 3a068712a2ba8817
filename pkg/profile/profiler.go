// Package profile computes per-column statistics for a single table.
package profile

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// decimalPattern disqualifies a text column from identifier classification:
// values that look like decimal numbers are measurements, not identifiers.
var decimalPattern = regexp.MustCompile(`^-?\d+\.\d+$`)

// Profiler computes a TableSnapshot from a table. Profiling is a pure
// function of the table: identical input yields identical profiles.
type Profiler struct {
	sampleSize      int
	identifierRatio float64
	logger          *zap.Logger
}

// New creates a Profiler.
func New(cfg config.ProfilerConfig, logger *zap.Logger) *Profiler {
	return &Profiler{
		sampleSize:      cfg.SampleSize,
		identifierRatio: cfg.IdentifierCardinalityRatio,
		logger:          logger.Named("profiler"),
	}
}

// Profile computes column statistics for the table. Profiling requires at
// least one row to infer types, so an empty or column-less table fails with
// a profiling error rather than yielding a silently empty profile.
func (p *Profiler) Profile(table *models.Table) (*models.TableSnapshot, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: table %q has no columns", apperrors.ErrProfiling, table.Source)
	}
	rows := table.RowCount()
	if rows == 0 {
		return nil, fmt.Errorf("%w: table %q has no rows", apperrors.ErrProfiling, table.Source)
	}

	profiles := make([]models.ColumnProfile, 0, len(table.Columns))
	for i := range table.Columns {
		profiles = append(profiles, p.profileColumn(&table.Columns[i]))
	}

	p.logger.Info("table profiled",
		zap.String("source", table.Source),
		zap.Int("rows", rows),
		zap.Int("columns", len(profiles)))

	return &models.TableSnapshot{
		ID:       uuid.New(),
		SourceID: table.Source,
		RowCount: rows,
		Columns:  profiles,
	}, nil
}

func (p *Profiler) profileColumn(col *models.Column) models.ColumnProfile {
	total := len(col.Values)

	var missing, numericCount, dateCount, textCount int
	distinct := make(map[string]struct{}, total)
	sampleDistinct := make(map[string]struct{})

	var minNum, maxNum float64
	var minDate, maxDate time.Time
	allIntegers := true
	anyDecimalText := false

	for i, v := range col.Values {
		if v.IsMissing() {
			missing++
			continue
		}

		key, _ := v.Key()
		distinct[key] = struct{}{}
		if i < p.sampleSize {
			sampleDistinct[key] = struct{}{}
		}

		switch v.Kind {
		case models.ValueKindNumeric:
			if numericCount == 0 || v.Num < minNum {
				minNum = v.Num
			}
			if numericCount == 0 || v.Num > maxNum {
				maxNum = v.Num
			}
			if v.Num != math.Trunc(v.Num) {
				allIntegers = false
			}
			numericCount++
		case models.ValueKindDate:
			if dateCount == 0 || v.Date.Before(minDate) {
				minDate = v.Date
			}
			if dateCount == 0 || v.Date.After(maxDate) {
				maxDate = v.Date
			}
			dateCount++
		case models.ValueKindText:
			if decimalPattern.MatchString(v.Text) {
				anyDecimalText = true
			}
			textCount++
		}
	}

	profile := models.ColumnProfile{
		Name:              col.Name,
		DistinctCount:     len(distinct),
		NullRate:          float64(missing) / float64(total),
		SampleCardinality: len(sampleDistinct),
	}

	nonMissing := total - missing
	profile.Type = p.inferType(nonMissing, numericCount, dateCount, textCount, len(distinct), anyDecimalText)

	// Min/max only for numeric and date columns; undefined otherwise.
	switch profile.Type {
	case models.ColumnTypeNumeric:
		mn, mx := minNum, maxNum
		profile.MinNumeric = &mn
		profile.MaxNumeric = &mx
		if allIntegers {
			profile.NumericClass = models.NumericClassInteger
		} else {
			profile.NumericClass = models.NumericClassDecimal
		}
	case models.ColumnTypeDate:
		mnd, mxd := minDate, maxDate
		profile.MinDate = &mnd
		profile.MaxDate = &mxd
	}

	return profile
}

// inferType applies the type priority order: date-parseable > pure-numeric >
// identifier-like > generic text. A column qualifies for date or numeric only
// when every non-missing value carries that kind; mixed columns fall through
// to text. Identifier classification requires a string column with high
// cardinality and no decimal-looking values.
func (p *Profiler) inferType(nonMissing, numericCount, dateCount, textCount, distinctCount int, anyDecimalText bool) models.ColumnType {
	if nonMissing == 0 {
		return models.ColumnTypeText
	}
	if dateCount == nonMissing {
		return models.ColumnTypeDate
	}
	if numericCount == nonMissing {
		return models.ColumnTypeNumeric
	}
	if textCount == nonMissing && !anyDecimalText {
		ratio := float64(distinctCount) / float64(nonMissing)
		if ratio >= p.identifierRatio {
			return models.ColumnTypeIdentifier
		}
	}
	return models.ColumnTypeText
}
