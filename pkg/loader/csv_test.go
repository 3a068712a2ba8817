package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/models"
)

func newLoader() *Loader {
	return New(zap.NewNop())
}

func TestLoadTagsCells(t *testing.T) {
	csv := strings.Join([]string{
		"customer_id,amount,order_date,note",
		"C001,10.5,2024-03-01,first",
		"C002,20,2024-03-02,",
		"C003,NA,n/a,null",
	}, "\n")

	table, err := newLoader().Load(strings.NewReader(csv), "orders")
	require.NoError(t, err)

	assert.Equal(t, "orders", table.Source)
	assert.Equal(t, 3, table.RowCount())
	require.Len(t, table.Columns, 4)

	id, _ := table.Column("customer_id")
	assert.Equal(t, models.ValueKindText, id.Values[0].Kind)
	assert.Equal(t, "C001", id.Values[0].Text)

	amount, _ := table.Column("amount")
	assert.Equal(t, models.ValueKindNumeric, amount.Values[0].Kind)
	assert.Equal(t, 10.5, amount.Values[0].Num)
	assert.Equal(t, models.ValueKindMissing, amount.Values[2].Kind)

	date, _ := table.Column("order_date")
	assert.Equal(t, models.ValueKindDate, date.Values[0].Kind)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), date.Values[0].Date)
	assert.Equal(t, models.ValueKindMissing, date.Values[2].Kind)

	note, _ := table.Column("note")
	assert.Equal(t, models.ValueKindMissing, note.Values[1].Kind)
	assert.Equal(t, models.ValueKindMissing, note.Values[2].Kind)
}

func TestLoadDateLayouts(t *testing.T) {
	csv := "d\n2024-03-01\n2024-03-01 14:30:00\n03/15/2024\n2024/03/16"

	table, err := newLoader().Load(strings.NewReader(csv), "t")
	require.NoError(t, err)

	col, _ := table.Column("d")
	for i, v := range col.Values {
		assert.Equal(t, models.ValueKindDate, v.Kind, "row %d", i)
	}
}

func TestLoadHeaderValidation(t *testing.T) {
	_, err := newLoader().Load(strings.NewReader(""), "t")
	assert.Error(t, err)

	_, err = newLoader().Load(strings.NewReader("id,id\n1,2"), "t")
	assert.Error(t, err)

	_, err = newLoader().Load(strings.NewReader("id,\n1,2"), "t")
	assert.Error(t, err)
}

func TestLoadHeaderOnly(t *testing.T) {
	table, err := newLoader().Load(strings.NewReader("id,name"), "t")
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
	assert.Equal(t, []string{"id", "name"}, table.ColumnNames())
}
