package session

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/join-advisor/pkg/hints"
	"github.com/ekaya-inc/join-advisor/pkg/models"
	"github.com/ekaya-inc/join-advisor/pkg/overlap"
	"github.com/ekaya-inc/join-advisor/pkg/workqueue"
)

// overlapResult is the per-candidate output slot. Each task writes only its
// own slot, so the merge needs no synchronization beyond queue completion.
type overlapResult struct {
	stats *models.OverlapStats
	err   error
}

// overlapTask computes overlap statistics for one candidate. Evaluation
// failures are recorded in the slot rather than failing the task: a bad
// candidate must not stop the rest of the batch.
type overlapTask struct {
	workqueue.BaseTask
	engine      *overlap.Engine
	candidate   models.CandidateKey
	left, right *models.Table
	slot        *overlapResult
}

func newOverlapTask(engine *overlap.Engine, candidate models.CandidateKey, left, right *models.Table, slot *overlapResult) *overlapTask {
	return &overlapTask{
		BaseTask:  workqueue.NewBaseTask(fmt.Sprintf("overlap %s", candidate.ID()), workqueue.ClassData),
		engine:    engine,
		candidate: candidate,
		left:      left,
		right:     right,
		slot:      slot,
	}
}

// Execute implements workqueue.Task.
func (t *overlapTask) Execute(ctx context.Context, _ workqueue.TaskEnqueuer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.slot.stats, t.slot.err = t.engine.Compute(t.candidate, t.left, t.right)
	return nil
}

// suggestResult is the output slot for the hint task.
type suggestResult struct {
	hints []hints.Hint
	err   error
}

// suggestTask calls the hint provider. It runs in the hint concurrency
// class so provider calls never overlap. Provider errors fail the task so
// the queue's retry policy applies to transient failures.
type suggestTask struct {
	workqueue.BaseTask
	suggester   *hints.Suggester
	left, right *models.TableSnapshot
	slot        *suggestResult
}

func newSuggestTask(suggester *hints.Suggester, left, right *models.TableSnapshot, slot *suggestResult) *suggestTask {
	return &suggestTask{
		BaseTask:  workqueue.NewBaseTask("suggest join keys", workqueue.ClassHint),
		suggester: suggester,
		left:      left,
		right:     right,
		slot:      slot,
	}
}

// Execute implements workqueue.Task.
func (t *suggestTask) Execute(ctx context.Context, _ workqueue.TaskEnqueuer) error {
	suggestions, err := t.suggester.Suggest(ctx, t.left, t.right)
	if err != nil {
		return err
	}
	t.slot.hints = suggestions
	return nil
}
