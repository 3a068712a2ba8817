// Package score turns overlap statistics into a bounded health score plus
// categorical flags.
package score

import (
	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// Scorer computes health reports with a deterministic weighted combination
// of match rate, date alignment, and duplication.
type Scorer struct {
	cfg config.ScoringConfig
}

// New creates a Scorer.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score builds the health report for one evaluated candidate.
//
//	score = wMatch*match_rate + wDate*(date_overlap or 1 if undefined)
//	      + wDup*(1 - duplicate_key_rate)
//
// Flags are threshold-triggered independently of the score; a flag raised
// during overlap computation (INSUFFICIENT_DATA, TYPE_MISMATCH) passes
// through. Flags are reported in canonical order.
func (s *Scorer) Score(candidate models.CandidateKey, stats models.OverlapStats) *models.HealthReport {
	dateComponent := 1.0
	if stats.DateOverlapRatio != nil {
		dateComponent = *stats.DateOverlapRatio
	}

	score := s.cfg.MatchRateWeight*stats.MatchRate +
		s.cfg.DateOverlapWeight*dateComponent +
		s.cfg.DuplicationWeight*(1-stats.DuplicateKeyRate)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	flags := append([]models.HealthFlag{}, stats.Flags...)
	if stats.MatchRate < s.cfg.LowMatchRateThreshold {
		flags = append(flags, models.FlagLowMatchRate)
	}
	if stats.DateOverlapRatio != nil && *stats.DateOverlapRatio < s.cfg.DateRangePartialThreshold {
		flags = append(flags, models.FlagDateRangePartial)
	}
	if stats.DuplicateKeyRate > s.cfg.DuplicateKeysThreshold {
		flags = append(flags, models.FlagDuplicateKeys)
	}

	return &models.HealthReport{
		Candidate: candidate,
		Stats:     stats,
		Score:     score,
		Flags:     models.SortFlags(flags),
	}
}
