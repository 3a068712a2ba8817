// Package session orchestrates one analysis: load both tables, detect
// candidate keys, score them, optionally fold in hints, select a key, and
// execute the join. All state for an analysis lives on the Session; there
// are no package globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/detect"
	"github.com/ekaya-inc/join-advisor/pkg/hints"
	"github.com/ekaya-inc/join-advisor/pkg/join"
	"github.com/ekaya-inc/join-advisor/pkg/models"
	"github.com/ekaya-inc/join-advisor/pkg/overlap"
	"github.com/ekaya-inc/join-advisor/pkg/profile"
	"github.com/ekaya-inc/join-advisor/pkg/rank"
	"github.com/ekaya-inc/join-advisor/pkg/score"
	"github.com/ekaya-inc/join-advisor/pkg/workqueue"
)

// ErrOutOfOrder reports a pipeline operation invoked before its
// prerequisites completed.
var ErrOutOfOrder = errors.New("session operation out of order")

// ErrHintsDisabled reports a hint request on a session without a suggester.
var ErrHintsDisabled = errors.New("hints are not enabled")

// stage tracks pipeline progress. Loading a table resets the session to the
// loading stage; selection and execution may repeat.
type stage int

const (
	stageLoading stage = iota
	stageDetected
	stageScored
	stageSelected
	stageExecuted
)

// SkippedCandidate records a candidate that could not be evaluated.
type SkippedCandidate struct {
	Candidate models.CandidateKey `json:"candidate"`
	Reason    string              `json:"reason"`
}

// Session owns the full state of one analysis.
type Session struct {
	ID uuid.UUID

	mu    sync.Mutex
	stage stage

	cfg    *config.Config
	logger *zap.Logger

	profiler  *profile.Profiler
	detector  *detect.Detector
	engine    *overlap.Engine
	scorer    *score.Scorer
	executor  *join.Executor
	ranker    *rank.Ranker
	suggester *hints.Suggester // nil when hints are disabled

	leftTable  *models.Table
	rightTable *models.Table
	leftSnap   *models.TableSnapshot
	rightSnap  *models.TableSnapshot

	candidates []models.CandidateKey
	reports    []*models.HealthReport
	skipped    []SkippedCandidate
	hinted     []hints.Hint
	selected   *models.CandidateKey
	result     *models.JoinResult
}

// New creates a session. suggester may be nil, in which case ApplyHints
// returns ErrHintsDisabled.
func New(cfg *config.Config, suggester *hints.Suggester, logger *zap.Logger) *Session {
	id := uuid.New()
	logger = logger.Named("session").With(zap.String("session_id", id.String()))
	return &Session{
		ID:        id,
		cfg:       cfg,
		logger:    logger,
		profiler:  profile.New(cfg.Profiler, logger),
		detector:  detect.New(cfg.Detector, logger),
		engine:    overlap.New(logger),
		scorer:    score.New(cfg.Scoring),
		executor:  join.New(logger),
		ranker:    rank.New(cfg.Ranker, logger),
		suggester: suggester,
	}
}

// LoadLeft profiles and stores the left (primary) table. Loading either
// side discards candidates, reports, selection, and results.
func (s *Session) LoadLeft(table *models.Table) (*models.TableSnapshot, error) {
	return s.load(table, true)
}

// LoadRight profiles and stores the right table.
func (s *Session) LoadRight(table *models.Table) (*models.TableSnapshot, error) {
	return s.load(table, false)
}

func (s *Session) load(table *models.Table, left bool) (*models.TableSnapshot, error) {
	snap, err := s.profiler.Profile(table)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if left {
		s.leftTable = table
		s.leftSnap = snap
	} else {
		s.rightTable = table
		s.rightSnap = snap
	}

	// Downstream artifacts are stale once a side changes.
	s.candidates = nil
	s.reports = nil
	s.skipped = nil
	s.hinted = nil
	s.selected = nil
	s.result = nil
	s.stage = stageLoading

	s.logger.Info("table loaded",
		zap.Bool("left", left),
		zap.String("source", table.Source),
		zap.Int("rows", table.RowCount()),
		zap.Int("columns", len(table.Columns)))

	return snap, nil
}

// DetectCandidates runs key detection over both snapshots. An empty result
// is reported as a wrapped insufficient-data error alongside the empty
// slice; callers decide whether that ends the analysis.
func (s *Session) DetectCandidates() ([]models.CandidateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leftSnap == nil || s.rightSnap == nil {
		return nil, fmt.Errorf("%w: both tables must be loaded before detection", ErrOutOfOrder)
	}

	s.candidates = s.detector.Detect(s.leftSnap, s.rightSnap)
	s.reports = nil
	s.skipped = nil
	s.hinted = nil
	s.selected = nil
	s.result = nil
	s.stage = stageDetected

	if len(s.candidates) == 0 {
		return nil, fmt.Errorf("%w: no compatible column pairs between %q and %q",
			apperrors.ErrInsufficientData, s.leftSnap.SourceID, s.rightSnap.SourceID)
	}
	return s.candidates, nil
}

// ScoreAll computes overlap statistics and health reports for every
// detected candidate. Candidates fan out as data tasks bounded by the
// configured worker count; results merge by candidate identity in detection
// order, so the report list is reproducible regardless of completion order.
// A candidate that fails evaluation (type mismatch, delimiter collision)
// yields a zero-score TYPE_MISMATCH report and a skipped record instead of
// aborting the batch.
func (s *Session) ScoreAll(ctx context.Context) ([]*models.HealthReport, error) {
	s.mu.Lock()
	if s.stage < stageDetected {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: detect candidates before scoring", ErrOutOfOrder)
	}
	candidates := s.candidates
	left, right := s.leftTable, s.rightTable
	s.mu.Unlock()

	slots := make([]overlapResult, len(candidates))
	queue := workqueue.New(s.logger,
		workqueue.WithStrategy(workqueue.NewThrottledDataStrategy(s.cfg.Overlap.Workers)))

	for i, candidate := range candidates {
		queue.Enqueue(newOverlapTask(s.engine, candidate, left, right, &slots[i]))
	}

	if err := queue.Wait(ctx); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	reports := make([]*models.HealthReport, 0, len(candidates))
	var skipped []SkippedCandidate
	for i, candidate := range candidates {
		if slots[i].err != nil {
			skipped = append(skipped, SkippedCandidate{
				Candidate: candidate,
				Reason:    slots[i].err.Error(),
			})
			reports = append(reports, mismatchReport(candidate))
			continue
		}
		reports = append(reports, s.scorer.Score(candidate, *slots[i].stats))
	}

	ranked := s.ranker.Rank(reports)

	s.mu.Lock()
	s.reports = ranked
	s.skipped = skipped
	s.selected = nil
	s.result = nil
	s.stage = stageScored
	s.mu.Unlock()

	progress := queue.Progress()
	s.logger.Info("candidates scored",
		zap.Int("candidates", len(candidates)),
		zap.Int("skipped", len(skipped)),
		zap.Int("tasks_completed", progress.Completed),
		zap.Int("percent", progress.Percentage()))

	return ranked, nil
}

// mismatchReport is the degenerate report for a candidate whose statistics
// could not be computed.
func mismatchReport(candidate models.CandidateKey) *models.HealthReport {
	flags := []models.HealthFlag{models.FlagTypeMismatch}
	return &models.HealthReport{
		Candidate: candidate,
		Stats:     models.OverlapStats{Flags: flags},
		Score:     0,
		Flags:     flags,
	}
}

// ApplyHints asks the suggester for field pairings and folds them into the
// ranking. The provider call runs as the queue's single hint task. Hinted
// keys already scored are promoted a bounded number of positions; unseen
// hinted keys are evaluated like any detected candidate.
func (s *Session) ApplyHints(ctx context.Context) ([]*models.HealthReport, error) {
	s.mu.Lock()
	if s.suggester == nil {
		s.mu.Unlock()
		return nil, ErrHintsDisabled
	}
	if s.stage < stageScored {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: score candidates before applying hints", ErrOutOfOrder)
	}
	leftSnap, rightSnap := s.leftSnap, s.rightSnap
	left, right := s.leftTable, s.rightTable
	reports := s.reports
	s.mu.Unlock()

	var slot suggestResult
	queue := workqueue.New(s.logger)
	queue.Enqueue(newSuggestTask(s.suggester, leftSnap, rightSnap, &slot))
	if err := queue.Wait(ctx); err != nil {
		for _, snap := range queue.GetTasks() {
			if snap.Status == workqueue.TaskStatusFailed {
				s.logger.Warn("hint task failed",
					zap.String("task", snap.Name),
					zap.Int("retries", snap.RetryCount),
					zap.String("error", snap.Error))
			}
		}
		return nil, fmt.Errorf("apply hints: %w", err)
	}
	if slot.err != nil {
		return nil, fmt.Errorf("apply hints: %w", slot.err)
	}

	hinted := make([]models.CandidateKey, 0, len(slot.hints))
	for i, h := range slot.hints {
		hinted = append(hinted, models.CandidateKey{
			Pairs:          []models.ColumnPair{{Left: h.LeftColumn, Right: h.RightColumn}},
			Method:         models.DetectionMethodHint,
			DetectionOrder: len(reports) + i,
		})
	}

	evaluate := func(key models.CandidateKey) (*models.HealthReport, error) {
		stats, err := s.engine.Compute(key, left, right)
		if err != nil {
			return nil, err
		}
		return s.scorer.Score(key, *stats), nil
	}

	ranked, err := s.ranker.ApplyHints(reports, hinted, evaluate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.reports = ranked
	s.hinted = slot.hints
	s.mu.Unlock()

	s.logger.Info("hints applied", zap.Int("hints", len(slot.hints)))

	return ranked, nil
}

// SelectKey chooses the candidate to join on, by candidate ID. Selection is
// allowed any time after scoring, including after execution (re-selection).
func (s *Session) SelectKey(candidateID string) (*models.CandidateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage < stageScored {
		return nil, fmt.Errorf("%w: score candidates before selecting a key", ErrOutOfOrder)
	}

	for _, rep := range s.reports {
		if rep.Candidate.ID() == candidateID {
			key := rep.Candidate
			s.selected = &key
			s.result = nil
			s.stage = stageSelected
			s.logger.Info("key selected", zap.String("key", candidateID))
			return &key, nil
		}
	}

	return nil, fmt.Errorf("%w: unknown candidate %q", apperrors.ErrJoinExecution, candidateID)
}

// Execute runs the join on the selected key. Each execution replaces the
// previous result.
func (s *Session) Execute(joinType models.JoinType) (*models.JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage < stageSelected || s.selected == nil {
		return nil, fmt.Errorf("%w: select a key before executing the join", ErrOutOfOrder)
	}

	result, err := s.executor.Execute(s.leftTable, s.rightTable, *s.selected, joinType)
	if err != nil {
		return nil, err
	}

	s.result = result
	s.stage = stageExecuted
	return result, nil
}

// Snapshots returns the left and right snapshots (either may be nil).
func (s *Session) Snapshots() (*models.TableSnapshot, *models.TableSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leftSnap, s.rightSnap
}

// Candidates returns the detected candidates in detection order.
func (s *Session) Candidates() []models.CandidateKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// Reports returns the ranked health reports.
func (s *Session) Reports() []*models.HealthReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports
}

// Skipped returns candidates that failed evaluation, with reasons.
func (s *Session) Skipped() []SkippedCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Hints returns the accepted hint suggestions from the last ApplyHints.
func (s *Session) Hints() []hints.Hint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hinted
}

// Selected returns the selected key, or nil.
func (s *Session) Selected() *models.CandidateKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Result returns the last join result, or nil.
func (s *Session) Result() *models.JoinResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
