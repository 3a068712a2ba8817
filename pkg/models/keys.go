package models

import (
	"fmt"
	"strings"
)

// KeyDelimiter separates the components of a composite row key. The ASCII
// unit separator cannot occur in well-formed tabular text; any field value
// containing it would corrupt the synthetic key, so key construction rejects
// such values instead of computing a wrong key.
const KeyDelimiter = "\x1f"

// RowKey builds the (possibly composite) join key for one row. The second
// return is false when any key component is missing; such rows never match.
// An error is returned when a component value contains the delimiter; callers
// surface it as a type mismatch for the candidate.
func RowKey(cols []*Column, row int) (string, bool, error) {
	if len(cols) == 1 {
		key, ok := cols[0].Values[row].Key()
		return key, ok, nil
	}

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		key, ok := col.Values[row].Key()
		if !ok {
			return "", false, nil
		}
		if strings.Contains(key, KeyDelimiter) {
			return "", false, fmt.Errorf("column %q value contains the reserved key delimiter", col.Name)
		}
		parts = append(parts, key)
	}
	return strings.Join(parts, KeyDelimiter), true, nil
}
