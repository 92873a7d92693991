package components

import (
	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

// StageEntry represents a single catalog stage for rendering.
type StageEntry struct {
	Stage   evaluation.Stage
	Status  evaluation.StageStatus
	Current bool
	// Result is nil until the stage finishes.
	Result *evaluation.EvaluationResult
}

// StageList pairs every catalog stage with its status in a run.
type StageList struct {
	entries []StageEntry
}

// NewStageList builds entries in catalog order. Stages unknown to the
// state are shown as pending.
func NewStageList(catalog evaluation.Catalog, state evaluation.RunState) StageList {
	results := make(map[string]evaluation.EvaluationResult, len(state.Results))
	for _, r := range state.Results {
		results[r.StageID] = r
	}

	entries := make([]StageEntry, 0, len(catalog))
	for _, stage := range catalog {
		entry := StageEntry{
			Stage:   stage,
			Status:  state.StatusOf(stage.ID),
			Current: stage.ID == state.CurrentStageID,
		}
		if entry.Status == "" {
			entry.Status = evaluation.StagePending
		}
		if r, ok := results[stage.ID]; ok {
			entry.Result = &r
		}
		entries = append(entries, entry)
	}
	return StageList{entries: entries}
}

// Entries returns the ordered stage entries.
func (s StageList) Entries() []StageEntry {
	clone := make([]StageEntry, len(s.entries))
	copy(clone, s.entries)
	return clone
}
