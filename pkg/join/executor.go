// Package join executes a chosen candidate key as an actual join and
// reports before/after row accounting.
package join

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// Executor runs equality joins on the (possibly composite) key over the
// in-memory tables. Input tables are never mutated.
type Executor struct {
	logger *zap.Logger
}

// New creates an Executor.
func New(logger *zap.Logger) *Executor {
	return &Executor{logger: logger.Named("join")}
}

// Execute joins left and right on the candidate key. The default join type
// is left-outer, preserving every row of the primary table. A key column
// absent from either table at execution time (schema drift since profiling)
// fails explicitly with a join execution error before any row is produced.
func (e *Executor) Execute(left, right *models.Table, key models.CandidateKey, joinType models.JoinType) (*models.JoinResult, error) {
	if joinType == "" {
		joinType = models.JoinTypeLeftOuter
	}
	if !models.IsValidJoinType(joinType) {
		return nil, fmt.Errorf("%w: unknown join type %q", apperrors.ErrJoinExecution, joinType)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrJoinExecution, err)
	}

	leftCols := make([]*models.Column, 0, len(key.Pairs))
	rightCols := make([]*models.Column, 0, len(key.Pairs))
	for _, pair := range key.Pairs {
		lc, ok := left.Column(pair.Left)
		if !ok {
			return nil, fmt.Errorf("%w: column %q no longer exists in left table %q", apperrors.ErrJoinExecution, pair.Left, left.Source)
		}
		rc, ok := right.Column(pair.Right)
		if !ok {
			return nil, fmt.Errorf("%w: column %q no longer exists in right table %q", apperrors.ErrJoinExecution, pair.Right, right.Source)
		}
		leftCols = append(leftCols, lc)
		rightCols = append(rightCols, rc)
	}

	// Hash the right side: key -> row indices, in row order.
	rightIndex := make(map[string][]int)
	for row := 0; row < right.RowCount(); row++ {
		k, ok, err := models.RowKey(rightCols, row)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTypeMismatch, err)
		}
		if !ok {
			continue
		}
		rightIndex[k] = append(rightIndex[k], row)
	}

	out := newOutputTable(left, right)
	matchedRight := make(map[int]bool)
	unmatchedLeft := 0

	for row := 0; row < left.RowCount(); row++ {
		k, ok, err := models.RowKey(leftCols, row)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTypeMismatch, err)
		}

		var matches []int
		if ok {
			matches = rightIndex[k]
		}
		if len(matches) == 0 {
			unmatchedLeft++
			if joinType == models.JoinTypeLeftOuter {
				out.appendOuterRow(left, row)
			}
			continue
		}
		for _, rrow := range matches {
			matchedRight[rrow] = true
			out.appendMatchedRow(left, right, row, rrow)
		}
	}

	result := &models.JoinResult{
		JoinType:       joinType,
		JoinedRowCount: out.table.RowCount(),
		LeftRowCount:   left.RowCount(),
		RightRowCount:  right.RowCount(),
		UnmatchedLeft:  unmatchedLeft,
		UnmatchedRight: right.RowCount() - len(matchedRight),
		Table:          out.table,
	}

	e.logger.Info("join executed",
		zap.String("key", key.ID()),
		zap.String("join_type", string(joinType)),
		zap.Int("joined_rows", result.JoinedRowCount),
		zap.Int("unmatched_left", result.UnmatchedLeft),
		zap.Int("unmatched_right", result.UnmatchedRight))

	return result, nil
}

// outputTable accumulates joined rows: all left columns followed by all
// right columns, right column names renamed with a "_right" suffix when
// they collide with a left column name.
type outputTable struct {
	table     *models.Table
	leftWidth int
}

func newOutputTable(left, right *models.Table) *outputTable {
	leftNames := make(map[string]bool, len(left.Columns))
	cols := make([]models.Column, 0, len(left.Columns)+len(right.Columns))
	for _, c := range left.Columns {
		leftNames[c.Name] = true
		cols = append(cols, models.Column{Name: c.Name})
	}
	for _, c := range right.Columns {
		name := c.Name
		if leftNames[name] {
			name += "_right"
		}
		cols = append(cols, models.Column{Name: name})
	}
	return &outputTable{
		table: &models.Table{
			Source:  fmt.Sprintf("%s_joined_%s", left.Source, right.Source),
			Columns: cols,
		},
		leftWidth: len(left.Columns),
	}
}

func (o *outputTable) appendMatchedRow(left, right *models.Table, lrow, rrow int) {
	for i := range left.Columns {
		o.table.Columns[i].Values = append(o.table.Columns[i].Values, left.Columns[i].Values[lrow])
	}
	for i := range right.Columns {
		o.table.Columns[o.leftWidth+i].Values = append(o.table.Columns[o.leftWidth+i].Values, right.Columns[i].Values[rrow])
	}
}

// appendOuterRow emits a left row with the right side padded with missing
// values.
func (o *outputTable) appendOuterRow(left *models.Table, lrow int) {
	for i := range left.Columns {
		o.table.Columns[i].Values = append(o.table.Columns[i].Values, left.Columns[i].Values[lrow])
	}
	for i := o.leftWidth; i < len(o.table.Columns); i++ {
		o.table.Columns[i].Values = append(o.table.Columns[i].Values, models.MissingValue())
	}
}
