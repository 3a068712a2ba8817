package detect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

func newDetector() *Detector {
	return New(config.Default().Detector, zap.NewNop())
}

func snapshot(source string, cols ...models.ColumnProfile) *models.TableSnapshot {
	return &models.TableSnapshot{SourceID: source, RowCount: 100, Columns: cols}
}

func identifier(name string) models.ColumnProfile {
	return models.ColumnProfile{Name: name, Type: models.ColumnTypeIdentifier}
}

func dateCol(name string) models.ColumnProfile {
	return models.ColumnProfile{Name: name, Type: models.ColumnTypeDate}
}

func numeric(name string, class models.NumericClass) models.ColumnProfile {
	return models.ColumnProfile{Name: name, Type: models.ColumnTypeNumeric, NumericClass: class}
}

func TestDetectNameVariants(t *testing.T) {
	d := newDetector()

	left := snapshot("orders", identifier("CustomerID"))
	right := snapshot("customers", identifier("customer_id"))

	candidates := d.Detect(left, right)
	require.Len(t, candidates, 1)
	assert.Equal(t, "CustomerID=customer_id", candidates[0].ID())
	assert.Equal(t, models.DetectionMethodNameMatch, candidates[0].Method)
	assert.Equal(t, 1.0, candidates[0].NameSimilarity)
	assert.Equal(t, 0, candidates[0].DetectionOrder)
}

func TestDetectTypeCompatibility(t *testing.T) {
	d := newDetector()

	t.Run("mismatched types never pair", func(t *testing.T) {
		left := snapshot("l", identifier("customer_id"))
		right := snapshot("r", dateCol("customer_id"))
		assert.Empty(t, d.Detect(left, right))
	})

	t.Run("numeric pairs require the same precision class", func(t *testing.T) {
		left := snapshot("l", numeric("amount", models.NumericClassInteger))
		right := snapshot("r", numeric("amount", models.NumericClassDecimal))
		assert.Empty(t, d.Detect(left, right))

		right = snapshot("r", numeric("amount", models.NumericClassInteger))
		assert.Len(t, d.Detect(left, right), 1)
	})

	t.Run("plain text columns never pair", func(t *testing.T) {
		left := snapshot("l", models.ColumnProfile{Name: "status", Type: models.ColumnTypeText})
		right := snapshot("r", models.ColumnProfile{Name: "status", Type: models.ColumnTypeText})
		assert.Empty(t, d.Detect(left, right))
	})
}

func TestDetectComposite(t *testing.T) {
	d := newDetector()

	left := snapshot("orders",
		identifier("customer_id"),
		dateCol("order_date"),
		identifier("product_id"),
	)
	right := snapshot("shipments",
		identifier("customer_id"),
		dateCol("order_date"),
		identifier("product_id"),
	)

	candidates := d.Detect(left, right)

	var composite *models.CandidateKey
	for i := range candidates {
		if candidates[i].Method == models.DetectionMethodComposite {
			composite = &candidates[i]
		}
	}
	require.NotNil(t, composite, "expected a composite candidate")
	require.Len(t, composite.Pairs, 3)
	assert.Equal(t, "customer_id", composite.Pairs[0].Left)
	assert.Equal(t, "order_date", composite.Pairs[1].Left)
	assert.Equal(t, "product_id", composite.Pairs[2].Left)
	assert.True(t, composite.IsComposite())
}

func TestDetectNoCompositeWithoutDate(t *testing.T) {
	d := newDetector()

	left := snapshot("l", identifier("customer_id"))
	right := snapshot("r", identifier("customer_id"))

	for _, c := range d.Detect(left, right) {
		assert.NotEqual(t, models.DetectionMethodComposite, c.Method)
	}
}

func TestDetectCapsCandidates(t *testing.T) {
	cfg := config.Default().Detector
	cfg.MaxCandidates = 3
	d := New(cfg, zap.NewNop())

	var leftCols, rightCols []models.ColumnProfile
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("key_%d", i)
		leftCols = append(leftCols, identifier(name))
		rightCols = append(rightCols, identifier(name))
	}

	candidates := d.Detect(snapshot("l", leftCols...), snapshot("r", rightCols...))
	require.Len(t, candidates, 3)
	for i, c := range candidates {
		assert.Equal(t, i, c.DetectionOrder)
	}
}

func TestDetectDeterministicOrder(t *testing.T) {
	d := newDetector()

	left := snapshot("l", identifier("customer_id"), identifier("account_id"))
	right := snapshot("r", identifier("customer_id"), identifier("account_id"))

	first := d.Detect(left, right)
	second := d.Detect(left, right)
	assert.Equal(t, first, second)

	// Equal similarity resolves by left declaration order.
	require.GreaterOrEqual(t, len(first), 2)
	assert.Equal(t, "customer_id=customer_id", first[0].ID())
	assert.Equal(t, "account_id=account_id", first[1].ID())
}
