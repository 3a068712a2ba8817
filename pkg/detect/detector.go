// Package detect pairs columns across two profiled tables into candidate
// join keys, single-field and composite.
package detect

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

// Detector generates candidate join keys from two table snapshots.
type Detector struct {
	maxCandidates     int
	minNameSimilarity float64
	logger            *zap.Logger
}

// New creates a Detector.
func New(cfg config.DetectorConfig, logger *zap.Logger) *Detector {
	return &Detector{
		maxCandidates:     cfg.MaxCandidates,
		minNameSimilarity: cfg.MinNameSimilarity,
		logger:            logger.Named("detector"),
	}
}

// scoredPair is a compatible column pair with its similarity score and the
// left column's declaration position (the tie-breaker).
type scoredPair struct {
	pair       models.ColumnPair
	similarity float64
	leftIndex  int
	isDate     bool
	isProduct  bool
}

// Detect returns candidate keys ordered by name similarity, capped at the
// configured maximum. An empty result is a valid terminal outcome meaning no
// automatic suggestion is possible; it is not an error here.
func (d *Detector) Detect(left, right *models.TableSnapshot) []models.CandidateKey {
	pairs := d.compatiblePairs(left, right)

	// Rank by similarity, ties broken by declaration order in the left table.
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].similarity != pairs[j].similarity {
			return pairs[i].similarity > pairs[j].similarity
		}
		return pairs[i].leftIndex < pairs[j].leftIndex
	})

	candidates := make([]models.CandidateKey, 0, len(pairs)+1)
	for _, p := range pairs {
		candidates = append(candidates, models.CandidateKey{
			Pairs:          []models.ColumnPair{p.pair},
			Method:         models.DetectionMethodNameMatch,
			NameSimilarity: p.similarity,
		})
	}

	if composite, ok := d.buildComposite(pairs); ok {
		candidates = append(candidates, composite)
		// Re-rank so the composite takes its similarity-ordered place.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].NameSimilarity > candidates[j].NameSimilarity
		})
	}

	if len(candidates) > d.maxCandidates {
		candidates = candidates[:d.maxCandidates]
	}
	for i := range candidates {
		candidates[i].DetectionOrder = i
	}

	d.logger.Info("candidate detection completed",
		zap.String("left", left.SourceID),
		zap.String("right", right.SourceID),
		zap.Int("pairs", len(pairs)),
		zap.Int("candidates", len(candidates)))

	return candidates
}

// compatiblePairs enumerates column pairs whose inferred types are
// compatible and whose names clear the similarity threshold.
func (d *Detector) compatiblePairs(left, right *models.TableSnapshot) []scoredPair {
	var pairs []scoredPair
	for li, lcol := range left.Columns {
		for _, rcol := range right.Columns {
			if !typeCompatible(&lcol, &rcol) {
				continue
			}
			sim := nameSimilarity(lcol.Name, rcol.Name)
			if sim < d.minNameSimilarity {
				continue
			}
			pairs = append(pairs, scoredPair{
				pair:       models.ColumnPair{Left: lcol.Name, Right: rcol.Name},
				similarity: sim,
				leftIndex:  li,
				isDate:     lcol.Type == models.ColumnTypeDate,
				isProduct:  isProductName(lcol.Name) && isProductName(rcol.Name),
			})
		}
	}
	return pairs
}

// buildComposite combines the best non-product identifier-like pair with the
// best date pair, plus a product identifier pair when one exists on both
// sides. Requires both core components to clear the similarity threshold
// individually (guaranteed here since sub-threshold pairs never enter the
// list). pairs must already be sorted by rank.
func (d *Detector) buildComposite(pairs []scoredPair) (models.CandidateKey, bool) {
	var entity, date, product *scoredPair
	for i := range pairs {
		p := &pairs[i]
		switch {
		case p.isDate:
			if date == nil {
				date = p
			}
		case p.isProduct:
			if product == nil {
				product = p
			}
		default:
			if entity == nil {
				entity = p
			}
		}
	}
	if entity == nil || date == nil {
		return models.CandidateKey{}, false
	}

	key := models.CandidateKey{
		Pairs:          []models.ColumnPair{entity.pair, date.pair},
		Method:         models.DetectionMethodComposite,
		NameSimilarity: (entity.similarity + date.similarity) / 2,
	}
	if product != nil {
		key.Pairs = append(key.Pairs, product.pair)
		key.NameSimilarity = (entity.similarity + date.similarity + product.similarity) / 3
	}
	if err := key.Validate(); err != nil {
		// A column shared between components would violate the key
		// invariant; drop the composite rather than emit an invalid key.
		d.logger.Warn("dropping invalid composite candidate", zap.Error(err))
		return models.CandidateKey{}, false
	}
	return key, true
}

// typeCompatible reports whether two profiled columns can form a join pair:
// date with date, identifier with identifier, numeric with numeric of the
// same decimal precision class.
func typeCompatible(left, right *models.ColumnProfile) bool {
	if left.Type != right.Type {
		return false
	}
	switch left.Type {
	case models.ColumnTypeDate, models.ColumnTypeIdentifier:
		return true
	case models.ColumnTypeNumeric:
		return left.NumericClass == right.NumericClass
	default:
		return false
	}
}
