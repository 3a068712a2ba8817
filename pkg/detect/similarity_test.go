package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		want  float64
	}{
		{"case and punctuation ignored", "CustomerID", "customer_id", similarityExact},
		{"identical", "order_date", "order_date", similarityExact},
		{"singular vs plural", "orders", "order", similarityStemmed},
		{"substring containment", "customer_id", "customer", similaritySubstring},
		{"short names never match by substring", "id", "idx", 0},
		{"unrelated", "amount", "customer_id", 0},
		{"empty", "", "customer_id", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameSimilarity(tt.left, tt.right))
		})
	}
}

func TestIsProductName(t *testing.T) {
	assert.True(t, isProductName("product_id"))
	assert.True(t, isProductName("SKU"))
	assert.True(t, isProductName("ItemCode"))
	assert.False(t, isProductName("customer_id"))
}
