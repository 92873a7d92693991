package pipeline

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// runEvent is the DomainEvent published for controller transitions.
type runEvent struct {
	eventType  string
	occurredAt time.Time
	payload    map[string]interface{}
}

func (e runEvent) EventType() string     { return e.eventType }
func (e runEvent) OccurredAt() time.Time { return e.occurredAt }
func (e runEvent) Payload() interface{}  { return e.payload }

// publish sends an event when a publisher is configured. Publisher failures
// are logged and never affect the run.
func (c *Controller) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if c.events == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	event := runEvent{
		eventType:  eventType,
		occurredAt: c.now(),
		payload:    payload,
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn(ctx, "failed to publish event", "event_type", eventType, "error", err)
	}
}

var _ ports.DomainEvent = runEvent{}
