package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKey(t *testing.T) {
	t.Run("kind prefixes prevent cross-kind collisions", func(t *testing.T) {
		numKey, ok := NumericValue(5).Key()
		require.True(t, ok)
		textKey, ok := TextValue("5").Key()
		require.True(t, ok)
		assert.NotEqual(t, numKey, textKey)
	})

	t.Run("missing value has no key", func(t *testing.T) {
		_, ok := MissingValue().Key()
		assert.False(t, ok)
	})

	t.Run("equal values share a key", func(t *testing.T) {
		a, _ := NumericValue(42).Key()
		b, _ := NumericValue(42).Key()
		assert.Equal(t, a, b)

		d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		da, _ := DateValue(d).Key()
		db, _ := DateValue(d).Key()
		assert.Equal(t, da, db)
	})
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", NumericValue(42).String())
	assert.Equal(t, "3.5", NumericValue(3.5).String())
	assert.Equal(t, "widget", TextValue("widget").String())
	assert.Equal(t, "", MissingValue().String())

	midnight := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", DateValue(midnight).String())

	withTime := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T14:30:00Z", DateValue(withTime).String())
}

func TestCandidateKeyID(t *testing.T) {
	key := CandidateKey{Pairs: []ColumnPair{
		{Left: "customer_id", Right: "CustomerID"},
		{Left: "order_date", Right: "date"},
	}}
	assert.Equal(t, "customer_id=CustomerID|order_date=date", key.ID())
	assert.True(t, key.IsComposite())
}

func TestCandidateKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     CandidateKey
		wantErr bool
	}{
		{
			name:    "no pairs",
			key:     CandidateKey{},
			wantErr: true,
		},
		{
			name:    "empty column name",
			key:     CandidateKey{Pairs: []ColumnPair{{Left: "", Right: "id"}}},
			wantErr: true,
		},
		{
			name: "left column reused",
			key: CandidateKey{Pairs: []ColumnPair{
				{Left: "id", Right: "a"},
				{Left: "id", Right: "b"},
			}},
			wantErr: true,
		},
		{
			name: "right column reused",
			key: CandidateKey{Pairs: []ColumnPair{
				{Left: "a", Right: "id"},
				{Left: "b", Right: "id"},
			}},
			wantErr: true,
		},
		{
			name: "valid composite",
			key: CandidateKey{Pairs: []ColumnPair{
				{Left: "customer_id", Right: "cust"},
				{Left: "date", Right: "order_date"},
			}},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRowKey(t *testing.T) {
	t.Run("single column passes the value key through", func(t *testing.T) {
		col := &Column{Name: "id", Values: []Value{TextValue("a" + KeyDelimiter + "b")}}
		key, ok, err := RowKey([]*Column{col}, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, key, KeyDelimiter)
	})

	t.Run("composite joins with the delimiter", func(t *testing.T) {
		a := &Column{Name: "a", Values: []Value{TextValue("x")}}
		b := &Column{Name: "b", Values: []Value{NumericValue(1)}}
		key, ok, err := RowKey([]*Column{a, b}, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "t:x"+KeyDelimiter+"n:1", key)
	})

	t.Run("missing component yields no key", func(t *testing.T) {
		a := &Column{Name: "a", Values: []Value{TextValue("x")}}
		b := &Column{Name: "b", Values: []Value{MissingValue()}}
		_, ok, err := RowKey([]*Column{a, b}, 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delimiter inside a composite component is rejected", func(t *testing.T) {
		a := &Column{Name: "a", Values: []Value{TextValue("x" + KeyDelimiter)}}
		b := &Column{Name: "b", Values: []Value{TextValue("y")}}
		_, _, err := RowKey([]*Column{a, b}, 0)
		assert.Error(t, err)
	})
}

func TestSortFlags(t *testing.T) {
	flags := SortFlags([]HealthFlag{
		FlagDuplicateKeys,
		FlagLowMatchRate,
		FlagDuplicateKeys,
		FlagInsufficientData,
	})
	assert.Equal(t, []HealthFlag{FlagInsufficientData, FlagLowMatchRate, FlagDuplicateKeys}, flags)
}
