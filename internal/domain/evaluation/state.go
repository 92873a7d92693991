package evaluation

import (
	"fmt"
	"time"
)

// Phase is the pipeline-level lifecycle of a run.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
)

// RunState describes the single active document and its evaluation progress.
// Values handed to callers are snapshots; mutate only through the controller.
type RunState struct {
	Document        Document
	Stages          []StageRunState
	Results         []EvaluationResult
	OverallProgress float64
	CurrentStageID  string
	Phase           Phase
	RunID           string
	StartedAt       time.Time
	CompletedAt     time.Time
	Version         uint64
}

// NewRunState returns an idle state with every catalog stage pending.
func NewRunState(catalog Catalog, doc Document) RunState {
	stages := make([]StageRunState, len(catalog))
	for i, stage := range catalog {
		stages[i] = StageRunState{StageID: stage.ID, Status: StagePending}
	}
	return RunState{
		Document: doc,
		Stages:   stages,
		Results:  []EvaluationResult{},
		Phase:    PhaseIdle,
	}
}

// Clone returns a deep copy so snapshots never alias controller memory.
func (s RunState) Clone() RunState {
	out := s
	out.Stages = append([]StageRunState(nil), s.Stages...)
	out.Results = make([]EvaluationResult, len(s.Results))
	for i, r := range s.Results {
		out.Results[i] = r.clone()
	}
	return out
}

// HasDocument reports whether a document is selected.
func (s RunState) HasDocument() bool {
	return !s.Document.IsZero()
}

// FinishedCount returns how many stages reached completed or error.
func (s RunState) FinishedCount() int {
	n := 0
	for _, st := range s.Stages {
		if st.Status.IsTerminal() {
			n++
		}
	}
	return n
}

// StatusOf returns the status of the given stage, or "" if unknown.
func (s RunState) StatusOf(stageID string) StageStatus {
	for _, st := range s.Stages {
		if st.StageID == stageID {
			return st.Status
		}
	}
	return ""
}

// BeginStage moves a pending stage to processing and makes it current.
func (s *RunState) BeginStage(stageID string) error {
	idx := s.indexOf(stageID)
	if idx < 0 {
		return newDomainError(ErrCodeNotFound, "stage not found", nil, map[string]interface{}{"stage_id": stageID})
	}
	if s.CurrentStageID != "" {
		return NewInvalidStateError("begin_stage", s.Phase, fmt.Sprintf("stage %s is still processing", s.CurrentStageID))
	}
	if !s.Stages[idx].Status.CanTransitionTo(StageProcessing) {
		return NewInvalidStateError("begin_stage", s.Phase, fmt.Sprintf("stage %s cannot move from %s to processing", stageID, s.Stages[idx].Status))
	}
	s.Stages[idx].Status = StageProcessing
	s.CurrentStageID = stageID
	return nil
}

// FinishStage records the result of the processing stage, appends it to the
// result list and recomputes overall progress.
func (s *RunState) FinishStage(result EvaluationResult) error {
	idx := s.indexOf(result.StageID)
	if idx < 0 {
		return newDomainError(ErrCodeNotFound, "stage not found", nil, map[string]interface{}{"stage_id": result.StageID})
	}
	next := StageCompleted
	if result.Status == ResultError {
		next = StageError
	}
	if !s.Stages[idx].Status.CanTransitionTo(next) {
		return NewInvalidStateError("finish_stage", s.Phase, fmt.Sprintf("stage %s cannot move from %s to %s", result.StageID, s.Stages[idx].Status, next))
	}
	s.Stages[idx].Status = next
	s.Results = append(s.Results, result.clone())
	s.CurrentStageID = ""
	s.OverallProgress = Progress(s.FinishedCount(), len(s.Stages))
	return nil
}

// CheckInvariants verifies the result/stage bookkeeping rules.
func (s RunState) CheckInvariants() error {
	finished := s.FinishedCount()
	if len(s.Results) != finished {
		return newValidationError("result count does not match finished stages", map[string]interface{}{
			"results":  len(s.Results),
			"finished": finished,
		})
	}
	if want := Progress(finished, len(s.Stages)); s.OverallProgress != want {
		return newValidationError("overall progress out of sync", map[string]interface{}{
			"progress": s.OverallProgress,
			"expected": want,
		})
	}
	processing := 0
	for _, st := range s.Stages {
		if st.Status == StageProcessing {
			processing++
		}
	}
	if processing > 1 {
		return newValidationError("more than one stage processing", map[string]interface{}{"processing": processing})
	}
	return nil
}

// Progress returns 100 * finished / total, or 0 for an empty catalog.
func Progress(finished, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(finished) / float64(total)
}

func (s RunState) indexOf(stageID string) int {
	for i, st := range s.Stages {
		if st.StageID == stageID {
			return i
		}
	}
	return -1
}
