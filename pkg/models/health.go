package models

// HealthFlag is a categorical warning raised during candidate evaluation.
// Flags drive user warnings independently of the aggregate score: a high
// score can mask one severe issue.
type HealthFlag string

const (
	FlagInsufficientData HealthFlag = "INSUFFICIENT_DATA"
	FlagTypeMismatch     HealthFlag = "TYPE_MISMATCH"
	FlagLowMatchRate     HealthFlag = "LOW_MATCH_RATE"
	FlagDateRangePartial HealthFlag = "DATE_RANGE_PARTIAL"
	FlagDuplicateKeys    HealthFlag = "DUPLICATE_KEYS"
)

// flagOrder fixes the reporting order of flags so report output is
// reproducible regardless of the order flags were raised in.
var flagOrder = map[HealthFlag]int{
	FlagInsufficientData: 0,
	FlagTypeMismatch:     1,
	FlagLowMatchRate:     2,
	FlagDateRangePartial: 3,
	FlagDuplicateKeys:    4,
}

// SortFlags returns the flags deduplicated and in canonical order.
func SortFlags(flags []HealthFlag) []HealthFlag {
	seen := make(map[HealthFlag]bool, len(flags))
	for _, f := range flags {
		seen[f] = true
	}
	out := make([]HealthFlag, 0, len(seen))
	for _, f := range []HealthFlag{
		FlagInsufficientData,
		FlagTypeMismatch,
		FlagLowMatchRate,
		FlagDateRangePartial,
		FlagDuplicateKeys,
	} {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out
}

// Cardinality classifies the relationship between the two key columns.
type Cardinality string

const (
	CardinalityOneToOne   Cardinality = "one_to_one"
	CardinalityOneToMany  Cardinality = "one_to_many"
	CardinalityManyToOne  Cardinality = "many_to_one"
	CardinalityManyToMany Cardinality = "many_to_many"
)

// OverlapStats holds the derived metrics for one candidate key.
// Immutable; recomputed per candidate.
type OverlapStats struct {
	// MatchRate is the fraction of distinct key values present on both
	// sides, relative to the side with more distinct values. In [0,1].
	MatchRate float64 `json:"match_rate"`

	// LeftUnmatched and RightUnmatched count rows whose key value has no
	// counterpart on the other side (rows with a missing key component
	// count as unmatched).
	LeftUnmatched  int `json:"left_unmatched"`
	RightUnmatched int `json:"right_unmatched"`

	// DateOverlapRatio is the intersection-over-union of the two sides'
	// [min,max] date ranges. Nil (not zero) when the key has no date field.
	DateOverlapRatio *float64 `json:"date_overlap_ratio"`

	// DuplicateKeyRate is max over both sides of 1 - distinct/rows. In [0,1].
	DuplicateKeyRate float64 `json:"duplicate_key_rate"`

	// Cardinality and MaxFanOut describe the relationship shape.
	Cardinality Cardinality `json:"cardinality"`
	MaxFanOut   int         `json:"max_fan_out"`

	// Flags raised during computation (e.g. INSUFFICIENT_DATA for an empty
	// table). Merged into the health report's flags by the scorer.
	Flags []HealthFlag `json:"flags,omitempty"`
}

// HealthReport aggregates the statistics for one evaluated candidate into a
// bounded score plus categorical flags.
type HealthReport struct {
	Candidate CandidateKey `json:"candidate"`
	Stats     OverlapStats `json:"stats"`
	Score     float64      `json:"score"`
	Flags     []HealthFlag `json:"flags"`
}

// JoinType selects the join semantics for execution.
type JoinType string

const (
	JoinTypeInner     JoinType = "inner"
	JoinTypeLeftOuter JoinType = "left_outer"
)

// IsValidJoinType checks if the given join type is valid.
func IsValidJoinType(t JoinType) bool {
	return t == JoinTypeInner || t == JoinTypeLeftOuter
}

// JoinResult reports the outcome of an executed join. Immutable; a re-run
// with a different key supersedes (never mutates) the previous result.
type JoinResult struct {
	JoinType       JoinType `json:"join_type"`
	JoinedRowCount int      `json:"joined_row_count"`
	LeftRowCount   int      `json:"left_row_count"`
	RightRowCount  int      `json:"right_row_count"`
	UnmatchedLeft  int      `json:"unmatched_left"`
	UnmatchedRight int      `json:"unmatched_right"`

	// Table is the joined table, consumed by the export collaborator.
	Table *Table `json:"-"`
}
