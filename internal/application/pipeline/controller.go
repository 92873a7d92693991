package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

var (
	errResetRequested  = errors.New("reset requested")
	errCancelRequested = errors.New("cancel requested")
)

// Controller owns the run lifecycle for a single document. It advances the
// catalog stages in order, invokes the evaluator once per stage and keeps a
// RunState that presentation layers read through snapshots.
//
// All exported methods are safe for concurrent use. Start blocks for the
// whole run; Reset and Cancel may be called from any goroutine while it does.
type Controller struct {
	evaluator    ports.Evaluator
	catalog      evaluation.Catalog
	logger       ports.Logger
	events       ports.EventPublisher
	stageTimeout time.Duration
	now          func() time.Time
	newRunID     func() string

	mu         sync.Mutex
	state      evaluation.RunState
	version    uint64
	generation uint64
	cancelRun  context.CancelCauseFunc

	listenersMu  sync.Mutex
	listeners    map[int]func(evaluation.RunState)
	nextListener int
}

type outcome struct {
	payload ports.Payload
	err     error
}

// NewController builds a controller around the given evaluator.
func NewController(evaluator ports.Evaluator, opts ...Option) (*Controller, error) {
	if evaluator == nil {
		return nil, evaluation.NewEvaluationError("", errors.New("evaluator is required"))
	}
	c := &Controller{
		evaluator: evaluator,
		catalog:   evaluation.DefaultCatalog(),
		logger:    nopLogger{},
		now:       time.Now,
		newRunID:  newULID,
		listeners: make(map[int]func(evaluation.RunState)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.catalog.Validate(); err != nil {
		return nil, err
	}
	c.logger = c.logger.With("component", "controller", "layer", "application")
	c.state = evaluation.NewRunState(c.catalog, evaluation.Document{})
	return c, nil
}

// Catalog returns a copy of the stages this controller evaluates.
func (c *Controller) Catalog() evaluation.Catalog {
	return c.catalog.Clone()
}

// State returns a snapshot of the current run. Callers may keep or modify it.
func (c *Controller) State() evaluation.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Summary aggregates the results recorded so far.
func (c *Controller) Summary() evaluation.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return evaluation.Summarize(c.state.Results, len(c.state.Stages))
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned function removes the listener. Snapshots from concurrent commands
// may arrive out of order; compare RunState.Version to discard stale ones.
func (c *Controller) Subscribe(fn func(evaluation.RunState)) func() {
	if fn == nil {
		return func() {}
	}
	c.listenersMu.Lock()
	c.nextListener++
	id := c.nextListener
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, id)
			c.listenersMu.Unlock()
		})
	}
}

// SelectDocument makes doc the active document and resets the run state.
func (c *Controller) SelectDocument(ctx context.Context, doc evaluation.Document) error {
	if doc.IsZero() {
		return evaluation.NewMissingDocumentError("select_document")
	}

	c.mu.Lock()
	if c.state.Phase == evaluation.PhaseRunning {
		phase := c.state.Phase
		c.mu.Unlock()
		return evaluation.NewInvalidStateError("select_document", phase, "cannot change document while a run is in progress")
	}
	c.state = evaluation.NewRunState(c.catalog, doc)
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "document selected", "document", doc.Name(), "size", doc.Size())
	c.notify(snapshot)
	c.publish(ctx, ports.EventDocumentSelected, map[string]interface{}{
		"document": doc.Name(),
		"size":     doc.Size(),
	})
	return nil
}

// RemoveDocument clears the active document and resets the run state.
func (c *Controller) RemoveDocument(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase == evaluation.PhaseRunning {
		phase := c.state.Phase
		c.mu.Unlock()
		return evaluation.NewInvalidStateError("remove_document", phase, "cannot remove document while a run is in progress")
	}
	previous := c.state.Document.Name()
	c.state = evaluation.NewRunState(c.catalog, evaluation.Document{})
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "document removed", "document", previous)
	c.notify(snapshot)
	c.publish(ctx, ports.EventDocumentRemoved, map[string]interface{}{
		"document": previous,
	})
	return nil
}

// Start evaluates the selected document against every stage and returns once
// the run completes. A run discarded by Reset, Cancel or ctx returns an error
// matching evaluation.ErrRunCancelled. Stage failures never surface here;
// they are recorded as error results.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.HasDocument() {
		phase := c.state.Phase
		c.mu.Unlock()
		return evaluation.NewInvalidStateError("start", phase, "no document selected")
	}
	if c.state.Phase != evaluation.PhaseIdle {
		phase := c.state.Phase
		c.mu.Unlock()
		reason := "a run is already in progress"
		if phase == evaluation.PhaseCompleted {
			reason = "run already completed; reset or select a document first"
		}
		return evaluation.NewInvalidStateError("start", phase, reason)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	c.generation++
	gen := c.generation
	c.cancelRun = cancel
	runID := c.newRunID()
	doc := c.state.Document
	c.state = evaluation.NewRunState(c.catalog, doc)
	c.state.Phase = evaluation.PhaseRunning
	c.state.RunID = runID
	c.state.StartedAt = c.now()
	snapshot := c.commitLocked()
	c.mu.Unlock()
	defer cancel(nil)

	logger := c.logger.With("run_id", runID)
	logger.Info(ctx, "run started", "document", doc.Name(), "stages", len(c.catalog))
	c.notify(snapshot)
	c.publish(ctx, ports.EventRunStarted, map[string]interface{}{
		"run_id":   runID,
		"document": doc.Name(),
		"stages":   len(c.catalog),
	})

	for i, stage := range c.catalog {
		if err := c.beginStage(ctx, gen, runID, i, stage); err != nil {
			return c.discard(ctx, gen, runID, runCtx, err)
		}

		result, ok := c.evaluateStage(runCtx, logger, doc, stage)
		if !ok {
			return c.discard(ctx, gen, runID, runCtx, nil)
		}

		if err := c.finishStage(ctx, gen, runID, result); err != nil {
			return c.discard(ctx, gen, runID, runCtx, err)
		}
	}

	return c.complete(ctx, gen, runID)
}

// Reset discards the document and any in-flight run, returning to the
// initial idle state. It is valid in every phase.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	wasRunning := c.state.Phase == evaluation.PhaseRunning
	runID := c.state.RunID
	c.stopRunLocked(errResetRequested)
	c.state = evaluation.NewRunState(c.catalog, evaluation.Document{})
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "state reset", "interrupted_run", wasRunning)
	c.notify(snapshot)
	if wasRunning {
		c.publish(ctx, ports.EventRunCancelled, map[string]interface{}{
			"run_id": runID,
			"reason": errResetRequested.Error(),
		})
	}
	c.publish(ctx, ports.EventRunReset, map[string]interface{}{})
}

// Cancel stops the in-flight run but keeps the selected document, leaving the
// controller idle and ready to start again.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != evaluation.PhaseRunning {
		phase := c.state.Phase
		c.mu.Unlock()
		return evaluation.NewInvalidStateError("cancel", phase, "no run in progress")
	}
	runID := c.state.RunID
	c.stopRunLocked(errCancelRequested)
	c.state = evaluation.NewRunState(c.catalog, c.state.Document)
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "run cancelled", "run_id", runID)
	c.notify(snapshot)
	c.publish(ctx, ports.EventRunCancelled, map[string]interface{}{
		"run_id": runID,
		"reason": errCancelRequested.Error(),
	})
	return nil
}

func (c *Controller) beginStage(ctx context.Context, gen uint64, runID string, position int, stage evaluation.Stage) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return evaluation.NewCancellationError(runID, nil)
	}
	if err := c.state.BeginStage(stage.ID); err != nil {
		c.mu.Unlock()
		return err
	}
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.notify(snapshot)
	c.publish(ctx, ports.EventStageStarted, map[string]interface{}{
		"run_id":   runID,
		"stage_id": stage.ID,
		"position": position + 1,
		"total":    len(c.catalog),
	})
	return nil
}

// evaluateStage runs one Evaluate call on its own goroutine. It returns false
// when the run was cancelled before an outcome was accepted.
func (c *Controller) evaluateStage(runCtx context.Context, logger ports.Logger, doc evaluation.Document, stage evaluation.Stage) (evaluation.EvaluationResult, bool) {
	stageCtx, stop := runCtx, context.CancelFunc(func() {})
	if c.stageTimeout > 0 {
		stageCtx, stop = context.WithTimeout(runCtx, c.stageTimeout)
	}
	defer stop()

	started := c.now()
	outcomes := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcomes <- outcome{err: fmt.Errorf("evaluator panicked: %v", r)}
			}
		}()
		payload, err := c.evaluator.Evaluate(stageCtx, doc, stage)
		outcomes <- outcome{payload: payload, err: err}
	}()

	var out outcome
	timedOut := false
	select {
	case out = <-outcomes:
	case <-stageCtx.Done():
		timedOut = true
	}
	if runCtx.Err() != nil {
		return evaluation.EvaluationResult{}, false
	}

	elapsed := c.now().Sub(started)
	if out.err != nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		timedOut = true
	}
	if timedOut {
		logger.Warn(runCtx, "stage timed out", "stage_id", stage.ID, "timeout", c.stageTimeout,
			"error", evaluation.NewTimeoutError(stage.ID, stageCtx.Err()))
		return evaluation.NewErrorResult(stage, fmt.Errorf("timed out after %s", c.stageTimeout), elapsed), true
	}
	if out.err != nil {
		logger.Warn(runCtx, "stage failed", "stage_id", stage.ID, "error", evaluation.NewEvaluationError(stage.ID, out.err))
		return evaluation.NewErrorResult(stage, out.err, elapsed), true
	}
	if err := evaluation.ValidateScore(stage.ID, out.payload.Score); err != nil {
		logger.Warn(runCtx, "stage returned invalid score", "stage_id", stage.ID, "error", err)
		return evaluation.NewErrorResult(stage, err, elapsed), true
	}
	logger.Debug(runCtx, "stage evaluated", "stage_id", stage.ID, "score", out.payload.Score, "duration_ms", elapsed.Milliseconds())
	return evaluation.NewCompletedResult(stage, out.payload.Content, out.payload.Score, elapsed), true
}

func (c *Controller) finishStage(ctx context.Context, gen uint64, runID string, result evaluation.EvaluationResult) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return evaluation.NewCancellationError(runID, nil)
	}
	if err := c.state.FinishStage(result); err != nil {
		c.mu.Unlock()
		return err
	}
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.notify(snapshot)
	payload := map[string]interface{}{
		"run_id":      runID,
		"stage_id":    result.StageID,
		"duration_ms": result.Duration.Milliseconds(),
		"progress":    snapshot.OverallProgress,
	}
	eventType := ports.EventStageCompleted
	if result.IsCompleted() {
		payload["score"] = result.ScoreValue()
	} else {
		eventType = ports.EventStageFailed
		payload["error"] = result.Error
	}
	c.publish(ctx, eventType, payload)
	return nil
}

func (c *Controller) complete(ctx context.Context, gen uint64, runID string) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return evaluation.NewCancellationError(runID, nil)
	}
	c.state.Phase = evaluation.PhaseCompleted
	c.state.CurrentStageID = ""
	c.state.CompletedAt = c.now()
	c.cancelRun = nil
	summary := evaluation.Summarize(c.state.Results, len(c.state.Stages))
	snapshot := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "run completed",
		"run_id", runID,
		"completed", summary.Completed,
		"errored", summary.Errored,
		"average_score", summary.AverageScore,
		"duration_ms", snapshot.CompletedAt.Sub(snapshot.StartedAt).Milliseconds(),
	)
	c.notify(snapshot)
	c.publish(ctx, ports.EventRunCompleted, map[string]interface{}{
		"run_id":        runID,
		"completed":     summary.Completed,
		"errored":       summary.Errored,
		"average_score": summary.AverageScore,
	})
	return nil
}

// discard ends a run that can no longer record results. When nobody else has
// already moved the controller on (the caller's ctx was cancelled, or a state
// transition failed), the document is kept and the phase returns to idle.
func (c *Controller) discard(ctx context.Context, gen uint64, runID string, runCtx context.Context, cause error) error {
	if cause == nil {
		cause = context.Cause(runCtx)
	}
	if evaluation.CodeOf(cause) == evaluation.ErrCodeCancelled {
		return cause
	}

	c.mu.Lock()
	owned := gen == c.generation
	var snapshot evaluation.RunState
	if owned {
		c.stopRunLocked(cause)
		c.state = evaluation.NewRunState(c.catalog, c.state.Document)
		snapshot = c.commitLocked()
	}
	c.mu.Unlock()

	if owned {
		c.logger.Warn(ctx, "run aborted", "run_id", runID, "error", cause)
		c.notify(snapshot)
		c.publish(ctx, ports.EventRunCancelled, map[string]interface{}{
			"run_id": runID,
			"reason": fmt.Sprint(cause),
		})
	}
	return evaluation.NewCancellationError(runID, cause)
}

func (c *Controller) stopRunLocked(cause error) {
	c.generation++
	if c.cancelRun != nil {
		c.cancelRun(cause)
		c.cancelRun = nil
	}
}

func (c *Controller) commitLocked() evaluation.RunState {
	c.version++
	c.state.Version = c.version
	return c.state.Clone()
}

func (c *Controller) notify(snapshot evaluation.RunState) {
	c.listenersMu.Lock()
	listeners := make([]func(evaluation.RunState), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
}
