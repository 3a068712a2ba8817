package models

import (
	"fmt"
	"strings"
)

// DetectionMethod represents how a candidate key was detected.
type DetectionMethod string

const (
	DetectionMethodNameMatch DetectionMethod = "name_match"
	DetectionMethodComposite DetectionMethod = "composite"
	DetectionMethodHint      DetectionMethod = "hint"
)

// ValidDetectionMethods contains all valid detection method values.
var ValidDetectionMethods = []DetectionMethod{
	DetectionMethodNameMatch,
	DetectionMethodComposite,
	DetectionMethodHint,
}

// IsValidDetectionMethod checks if the given method is valid.
func IsValidDetectionMethod(m DetectionMethod) bool {
	for _, v := range ValidDetectionMethods {
		if v == m {
			return true
		}
	}
	return false
}

// ColumnPair maps a left-table column to a right-table column.
type ColumnPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// CandidateKey is an ordered set of column pairs hypothesized to join the
// two tables. Pair order is preserved so composite keys compare
// deterministically.
type CandidateKey struct {
	Pairs          []ColumnPair    `json:"pairs"`
	Method         DetectionMethod `json:"method"`
	NameSimilarity float64         `json:"name_similarity"`
	DetectionOrder int             `json:"detection_order"`
}

// ID returns a canonical identifier for the candidate, stable across runs.
// Used to merge parallel overlap results deterministically and to address
// candidates from the session API.
func (k CandidateKey) ID() string {
	parts := make([]string, len(k.Pairs))
	for i, p := range k.Pairs {
		parts[i] = p.Left + "=" + p.Right
	}
	return strings.Join(parts, "|")
}

// Validate checks the candidate key invariants: at least one pair, and no
// column used twice on either side.
func (k CandidateKey) Validate() error {
	if len(k.Pairs) == 0 {
		return fmt.Errorf("candidate key has no column pairs")
	}
	seenLeft := make(map[string]bool, len(k.Pairs))
	seenRight := make(map[string]bool, len(k.Pairs))
	for _, p := range k.Pairs {
		if p.Left == "" || p.Right == "" {
			return fmt.Errorf("candidate key has an empty column name")
		}
		if seenLeft[p.Left] {
			return fmt.Errorf("column %q used twice on the left side", p.Left)
		}
		if seenRight[p.Right] {
			return fmt.Errorf("column %q used twice on the right side", p.Right)
		}
		seenLeft[p.Left] = true
		seenRight[p.Right] = true
	}
	return nil
}

// IsComposite reports whether the key spans more than one column pair.
func (k CandidateKey) IsComposite() bool {
	return len(k.Pairs) > 1
}
