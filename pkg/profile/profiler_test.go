package profile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

func newProfiler() *Profiler {
	return New(config.Default().Profiler, zap.NewNop())
}

func TestProfileRejectsDegenerateTables(t *testing.T) {
	p := newProfiler()

	_, err := p.Profile(&models.Table{Source: "empty"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProfiling))

	_, err = p.Profile(&models.Table{
		Source:  "headers_only",
		Columns: []models.Column{{Name: "id"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProfiling))
}

func TestProfileTypeInference(t *testing.T) {
	p := newProfiler()

	day := func(d int) models.Value {
		return models.DateValue(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
	}

	table := &models.Table{
		Source: "orders",
		Columns: []models.Column{
			{Name: "customer_id", Values: []models.Value{
				models.TextValue("C001"), models.TextValue("C002"), models.TextValue("C003"),
			}},
			{Name: "amount", Values: []models.Value{
				models.NumericValue(10.5), models.NumericValue(20), models.NumericValue(7.25),
			}},
			{Name: "quantity", Values: []models.Value{
				models.NumericValue(1), models.NumericValue(2), models.NumericValue(3),
			}},
			{Name: "order_date", Values: []models.Value{
				day(1), day(15), day(31),
			}},
			{Name: "status", Values: []models.Value{
				models.TextValue("open"), models.TextValue("open"), models.TextValue("closed"),
			}},
			{Name: "note", Values: []models.Value{
				models.TextValue("3.50"), models.TextValue("1.25"), models.TextValue("9.99"),
			}},
		},
	}

	snap, err := p.Profile(table)
	require.NoError(t, err)
	require.Len(t, snap.Columns, 6)

	byName := make(map[string]models.ColumnProfile)
	for _, c := range snap.Columns {
		byName[c.Name] = c
	}

	assert.Equal(t, models.ColumnTypeIdentifier, byName["customer_id"].Type)
	assert.Equal(t, models.ColumnTypeNumeric, byName["amount"].Type)
	assert.Equal(t, models.NumericClassDecimal, byName["amount"].NumericClass)
	assert.Equal(t, models.ColumnTypeNumeric, byName["quantity"].Type)
	assert.Equal(t, models.NumericClassInteger, byName["quantity"].NumericClass)
	assert.Equal(t, models.ColumnTypeDate, byName["order_date"].Type)

	// Low-cardinality text stays text.
	assert.Equal(t, models.ColumnTypeText, byName["status"].Type)
	// Decimal-looking strings disqualify identifier classification.
	assert.Equal(t, models.ColumnTypeText, byName["note"].Type)
}

func TestProfileStatistics(t *testing.T) {
	p := newProfiler()

	table := &models.Table{
		Source: "t",
		Columns: []models.Column{
			{Name: "v", Values: []models.Value{
				models.NumericValue(5),
				models.NumericValue(1),
				models.NumericValue(5),
				models.MissingValue(),
			}},
		},
	}

	snap, err := p.Profile(table)
	require.NoError(t, err)

	col := snap.Columns[0]
	assert.Equal(t, 2, col.DistinctCount)
	assert.InDelta(t, 0.25, col.NullRate, 1e-9)
	require.NotNil(t, col.MinNumeric)
	require.NotNil(t, col.MaxNumeric)
	assert.Equal(t, 1.0, *col.MinNumeric)
	assert.Equal(t, 5.0, *col.MaxNumeric)
	assert.Equal(t, 4, snap.RowCount)
}

func TestProfileIdempotent(t *testing.T) {
	p := newProfiler()

	table := &models.Table{
		Source: "t",
		Columns: []models.Column{
			{Name: "id", Values: []models.Value{
				models.TextValue("a"), models.TextValue("b"), models.TextValue("c"),
			}},
		},
	}

	first, err := p.Profile(table)
	require.NoError(t, err)
	second, err := p.Profile(table)
	require.NoError(t, err)

	// Snapshot identity differs per run; the profiles do not.
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.RowCount, second.RowCount)
	assert.NotEqual(t, first.ID, second.ID)
}
