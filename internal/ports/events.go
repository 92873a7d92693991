package ports

import (
	"context"
	"time"
)

const (
	// EventDocumentSelected is emitted when a document replaces the current selection.
	EventDocumentSelected = "document.selected"
	// EventDocumentRemoved is emitted when the selection is cleared.
	EventDocumentRemoved = "document.removed"
	// EventRunStarted is emitted when a run leaves the idle phase.
	EventRunStarted = "run.started"
	// EventRunCompleted is emitted after the last stage records its result.
	EventRunCompleted = "run.completed"
	// EventRunCancelled is emitted when reset or cancel discards an in-flight run.
	EventRunCancelled = "run.cancelled"
	// EventRunReset is emitted when the state returns to its initial form.
	EventRunReset = "run.reset"
	// EventStageStarted is emitted before a stage is handed to the evaluator.
	EventStageStarted = "stage.started"
	// EventStageCompleted is emitted when a stage records a scored result.
	EventStageCompleted = "stage.completed"
	// EventStageFailed is emitted when a stage records an error result.
	EventStageFailed = "stage.failed"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// DomainEvent is a run lifecycle notification. Payloads are flat
// key/value maps so publishers can log them as structured fields.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run. Implementations must be
// thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Failures should be
// surfaced via returned errors so publishers can log diagnostics and continue
// delivering to remaining subscribers.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events.
type Subscription interface {
	Unsubscribe()
}
