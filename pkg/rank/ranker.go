// Package rank orders health reports into the suggestion list shown to the
// user, optionally nudged by untrusted hints.
package rank

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// Evaluator scores a candidate that has not been evaluated yet. The session
// provides one backed by the overlap engine and scorer so hinted keys go
// through the same validation and statistics as detected ones.
type Evaluator func(candidate models.CandidateKey) (*models.HealthReport, error)

// Ranker orders health reports deterministically and applies hint
// promotions within a bounded distance.
type Ranker struct {
	maxHintPromotion int
	logger           *zap.Logger
}

// New creates a Ranker.
func New(cfg config.RankerConfig, logger *zap.Logger) *Ranker {
	return &Ranker{
		maxHintPromotion: cfg.MaxHintPromotion,
		logger:           logger.Named("ranker"),
	}
}

// Rank returns a new slice ordered by score descending, ties broken by
// fewer flags, then by detection order. The ordering is total, so repeated
// runs over the same reports produce the same list.
func (r *Ranker) Rank(reports []*models.HealthReport) []*models.HealthReport {
	ranked := make([]*models.HealthReport, len(reports))
	copy(ranked, reports)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if len(ranked[i].Flags) != len(ranked[j].Flags) {
			return len(ranked[i].Flags) < len(ranked[j].Flags)
		}
		return ranked[i].Candidate.DetectionOrder < ranked[j].Candidate.DetectionOrder
	})

	return ranked
}

// ApplyHints folds hinted candidate keys into the ranking. A hinted key that
// matches an already evaluated candidate keeps its computed statistics and is
// promoted at most maxHintPromotion positions. A hinted key not seen before
// is evaluated from scratch and takes whatever rank its own score earns.
// Hints that fail validation or evaluation are dropped with a warning; they
// never abort the ranking.
func (r *Ranker) ApplyHints(reports []*models.HealthReport, hinted []models.CandidateKey, evaluate Evaluator) ([]*models.HealthReport, error) {
	if evaluate == nil {
		return nil, fmt.Errorf("apply hints: evaluator is required")
	}

	known := make(map[string]bool, len(reports))
	for _, rep := range reports {
		known[rep.Candidate.ID()] = true
	}

	all := make([]*models.HealthReport, len(reports))
	copy(all, reports)

	var promote []string
	for _, key := range hinted {
		if err := key.Validate(); err != nil {
			r.logger.Warn("dropping invalid hinted key", zap.String("error", err.Error()))
			continue
		}
		id := key.ID()
		if known[id] {
			promote = append(promote, id)
			continue
		}
		rep, err := evaluate(key)
		if err != nil {
			r.logger.Warn("dropping unevaluable hinted key",
				zap.String("key", id),
				zap.String("error", err.Error()))
			continue
		}
		known[id] = true
		all = append(all, rep)
	}

	ranked := r.Rank(all)

	for _, id := range promote {
		ranked = promoteByID(ranked, id, r.maxHintPromotion)
	}

	return ranked, nil
}

// promoteByID moves the report with the given candidate ID up to maxSteps
// positions toward the front.
func promoteByID(ranked []*models.HealthReport, id string, maxSteps int) []*models.HealthReport {
	idx := -1
	for i, rep := range ranked {
		if rep.Candidate.ID() == id {
			idx = i
			break
		}
	}
	if idx <= 0 || maxSteps <= 0 {
		return ranked
	}

	target := idx - maxSteps
	if target < 0 {
		target = 0
	}

	rep := ranked[idx]
	copy(ranked[target+1:idx+1], ranked[target:idx])
	ranked[target] = rep
	return ranked
}
