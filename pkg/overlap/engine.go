// Package overlap computes match-rate, date-range, and duplication
// statistics for a candidate key against the two full tables.
package overlap

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// Engine computes OverlapStats for candidate keys. All statistics are
// set-based, so row order in either table never affects the result.
type Engine struct {
	logger *zap.Logger
}

// New creates an Engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("overlap")}
}

// sideStats holds the per-side key aggregation.
type sideStats struct {
	keyCounts  map[string]int // distinct key -> occurrence count
	keyedRows  int            // rows with a complete (non-missing) key
	totalRows  int
	maxFanOut  int
	minDate    *time.Time
	maxDate    *time.Time
}

// Compute evaluates one candidate key. An empty table yields a defined
// OverlapStats with match rate 0 and an INSUFFICIENT_DATA flag rather than
// a numeric error. A key referencing a missing column, or a composite whose
// fields contain the key delimiter, fails with a type mismatch fatal to
// this candidate only.
func (e *Engine) Compute(candidate models.CandidateKey, left, right *models.Table) (*models.OverlapStats, error) {
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTypeMismatch, err)
	}

	leftCols, rightCols, err := resolveColumns(candidate, left, right)
	if err != nil {
		return nil, err
	}

	if left.RowCount() == 0 || right.RowCount() == 0 {
		return &models.OverlapStats{
			MatchRate:      0,
			LeftUnmatched:  left.RowCount(),
			RightUnmatched: right.RowCount(),
			Flags:          []models.HealthFlag{models.FlagInsufficientData},
		}, nil
	}

	ls, err := aggregateSide(candidate, leftCols)
	if err != nil {
		return nil, err
	}
	rs, err := aggregateSide(candidate, rightCols)
	if err != nil {
		return nil, err
	}

	stats := &models.OverlapStats{}

	// Match rate: distinct key values present on both sides, relative to
	// the side with more distinct values (a subset key matching every value
	// of a superset side is not a perfect join).
	shared := 0
	for key := range ls.keyCounts {
		if _, ok := rs.keyCounts[key]; ok {
			shared++
		}
	}
	larger := len(ls.keyCounts)
	if len(rs.keyCounts) > larger {
		larger = len(rs.keyCounts)
	}
	if larger == 0 {
		stats.Flags = append(stats.Flags, models.FlagInsufficientData)
	} else {
		stats.MatchRate = clamp01(float64(shared) / float64(larger))
	}

	// Unmatched row counts. Rows with a missing key component can never
	// match and count as unmatched.
	stats.LeftUnmatched = unmatchedRows(ls, rs)
	stats.RightUnmatched = unmatchedRows(rs, ls)

	// Duplicate-key rate: worst side wins.
	stats.DuplicateKeyRate = clamp01(maxFloat(duplicateRate(ls), duplicateRate(rs)))

	// Date-range overlap: defined only when the key carries a date field on
	// both sides.
	stats.DateOverlapRatio = dateOverlapRatio(ls, rs)

	stats.Cardinality, stats.MaxFanOut = classifyCardinality(ls, rs)

	e.logger.Debug("overlap computed",
		zap.String("candidate", candidate.ID()),
		zap.Float64("match_rate", stats.MatchRate),
		zap.Float64("duplicate_key_rate", stats.DuplicateKeyRate))

	return stats, nil
}

// resolveColumns locates every key column in both tables. A missing column
// means the schema drifted since profiling; the candidate is rejected
// explicitly instead of silently producing wrong statistics.
func resolveColumns(candidate models.CandidateKey, left, right *models.Table) ([]*models.Column, []*models.Column, error) {
	leftCols := make([]*models.Column, 0, len(candidate.Pairs))
	rightCols := make([]*models.Column, 0, len(candidate.Pairs))
	for _, pair := range candidate.Pairs {
		lc, ok := left.Column(pair.Left)
		if !ok {
			return nil, nil, fmt.Errorf("%w: column %q not found in left table", apperrors.ErrTypeMismatch, pair.Left)
		}
		rc, ok := right.Column(pair.Right)
		if !ok {
			return nil, nil, fmt.Errorf("%w: column %q not found in right table", apperrors.ErrTypeMismatch, pair.Right)
		}
		leftCols = append(leftCols, lc)
		rightCols = append(rightCols, rc)
	}
	return leftCols, rightCols, nil
}

// aggregateSide builds the key-count map and date range for one side.
func aggregateSide(candidate models.CandidateKey, cols []*models.Column) (*sideStats, error) {
	s := &sideStats{
		keyCounts: make(map[string]int),
		totalRows: len(cols[0].Values),
	}

	for row := 0; row < s.totalRows; row++ {
		key, ok, err := models.RowKey(cols, row)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTypeMismatch, err)
		}
		if !ok {
			continue
		}
		s.keyCounts[key]++
		s.keyedRows++
		if s.keyCounts[key] > s.maxFanOut {
			s.maxFanOut = s.keyCounts[key]
		}
	}

	// Track the [min,max] date range of the first date column in the key.
	for _, col := range cols {
		mn, mx, ok := dateRange(col)
		if ok {
			s.minDate, s.maxDate = mn, mx
			break
		}
	}

	return s, nil
}

// dateRange returns the [min,max] of a column that holds only date values
// (missing cells aside). ok is false for non-date columns.
func dateRange(col *models.Column) (*time.Time, *time.Time, bool) {
	var mn, mx time.Time
	dates := 0
	for _, v := range col.Values {
		switch v.Kind {
		case models.ValueKindDate:
			if dates == 0 || v.Date.Before(mn) {
				mn = v.Date
			}
			if dates == 0 || v.Date.After(mx) {
				mx = v.Date
			}
			dates++
		case models.ValueKindMissing:
			// ignored
		default:
			return nil, nil, false
		}
	}
	if dates == 0 {
		return nil, nil, false
	}
	return &mn, &mx, true
}

// unmatchedRows counts rows on side a whose key does not appear on side b.
// Rows without a complete key are unmatched by definition.
func unmatchedRows(a, b *sideStats) int {
	unmatched := a.totalRows - a.keyedRows
	for key, count := range a.keyCounts {
		if _, ok := b.keyCounts[key]; !ok {
			unmatched += count
		}
	}
	return unmatched
}

// duplicateRate is 1 - distinct/rows for one side. Rows with a missing key
// component still count in the denominator: a half-empty key column joins no
// better than a duplicated one.
func duplicateRate(s *sideStats) float64 {
	if s.totalRows == 0 {
		return 0
	}
	return 1 - float64(len(s.keyCounts))/float64(s.totalRows)
}

// dateOverlapRatio is intersection-over-union of the two sides' [min,max]
// date ranges. Nil when either side has no date field in the key; undefined
// is not the same as zero overlap.
func dateOverlapRatio(ls, rs *sideStats) *float64 {
	if ls.minDate == nil || rs.minDate == nil {
		return nil
	}

	interStart := maxTime(*ls.minDate, *rs.minDate)
	interEnd := minTime(*ls.maxDate, *rs.maxDate)
	unionStart := minTime(*ls.minDate, *rs.minDate)
	unionEnd := maxTime(*ls.maxDate, *rs.maxDate)

	union := unionEnd.Sub(unionStart)
	if union <= 0 {
		// Both ranges collapse to the same instant.
		ratio := 1.0
		return &ratio
	}

	inter := interEnd.Sub(interStart)
	if inter < 0 {
		inter = 0
	}
	ratio := clamp01(float64(inter) / float64(union))
	return &ratio
}

// classifyCardinality mirrors the advisor's relationship classification:
// a side is the "one" side when no key value repeats within it.
func classifyCardinality(ls, rs *sideStats) (models.Cardinality, int) {
	maxFan := ls.maxFanOut
	if rs.maxFanOut > maxFan {
		maxFan = rs.maxFanOut
	}

	leftUnique := ls.maxFanOut <= 1
	rightUnique := rs.maxFanOut <= 1
	switch {
	case leftUnique && rightUnique:
		return models.CardinalityOneToOne, maxFan
	case leftUnique:
		return models.CardinalityOneToMany, maxFan
	case rightUnique:
		return models.CardinalityManyToOne, maxFan
	default:
		return models.CardinalityManyToMany, maxFan
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
