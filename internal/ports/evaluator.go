package ports

import (
	"context"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

// Evaluator produces scored feedback for one (document, stage) pair. The
// pipeline is agnostic to how: a rules engine, an external program, a human
// reviewer.
//
// Implementations must:
//   - Honour ctx cancellation and deadlines; the controller cancels ctx on
//     reset and on per-stage timeout.
//   - Return a Payload whose Score lies within [evaluation.MinScore,
//     evaluation.MaxScore]; out-of-range scores are recorded as stage errors.
//   - Be safe to call again for the next stage once the previous call has
//     returned. The controller never calls Evaluate concurrently for the same
//     run.
type Evaluator interface {
	Evaluate(ctx context.Context, doc evaluation.Document, stage evaluation.Stage) (Payload, error)
}

// Payload is the scored feedback for a single stage.
type Payload struct {
	Content string  `json:"content" yaml:"content"`
	Score   float64 `json:"score" yaml:"score"`
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, doc evaluation.Document, stage evaluation.Stage) (Payload, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, doc evaluation.Document, stage evaluation.Stage) (Payload, error) {
	return f(ctx, doc, stage)
}
