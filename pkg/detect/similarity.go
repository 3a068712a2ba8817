package detect

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"
)

// Similarity grades for normalized column name comparison. Exact matches
// outrank stemmed matches, which outrank substring containment.
const (
	similarityExact     = 1.0
	similarityStemmed   = 0.9
	similaritySubstring = 0.7
)

var punctuationPattern = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeName lowercases a column name and strips punctuation, so
// "customer_id" and "CustomerID" compare equal.
func normalizeName(name string) string {
	return punctuationPattern.ReplaceAllString(strings.ToLower(name), "")
}

// stemName reduces a normalized name to its singular form, so "orders"
// matches "order".
func stemName(name string) string {
	return inflection.Singular(name)
}

// nameSimilarity scores two column names in [0,1]. Zero means the names are
// unrelated and the pair should not become a candidate.
func nameSimilarity(left, right string) float64 {
	nl, nr := normalizeName(left), normalizeName(right)
	if nl == "" || nr == "" {
		return 0
	}
	if nl == nr {
		return similarityExact
	}
	if stemName(nl) == stemName(nr) {
		return similarityStemmed
	}
	// Substring containment only counts for stems long enough to be
	// meaningful ("id" alone matches everything).
	const minSubstringLen = 3
	if len(nl) >= minSubstringLen && len(nr) >= minSubstringLen {
		if strings.Contains(nl, nr) || strings.Contains(nr, nl) {
			return similaritySubstring
		}
	}
	return 0
}

// productNameTokens mark identifier columns that refer to a product rather
// than a customer, used when assembling composite keys.
var productNameTokens = []string{"product", "item", "sku"}

// isProductName reports whether a column name refers to a product identifier.
func isProductName(name string) bool {
	normalized := normalizeName(name)
	for _, token := range productNameTokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}
