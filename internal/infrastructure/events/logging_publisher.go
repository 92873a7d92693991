package events

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// messages maps run lifecycle events to log messages.
var messages = map[string]string{
	ports.EventDocumentSelected: "document selected",
	ports.EventDocumentRemoved:  "document removed",
	ports.EventRunStarted:       "evaluation started",
	ports.EventRunCompleted:     "evaluation completed",
	ports.EventRunCancelled:     "evaluation cancelled",
	ports.EventRunReset:         "evaluation reset",
	ports.EventStageStarted:     "stage started",
	ports.EventStageCompleted:   "stage completed",
	ports.EventStageFailed:      "stage failed",
}

// LoggingPublisher writes every event as a structured log entry and fans it
// out to in-process subscribers. Handlers registered for ports.AllEvents
// receive every event after the type-specific handlers.
type LoggingPublisher struct {
	logger ports.Logger

	mu     sync.RWMutex
	subs   map[string][]subscriptionEntry
	nextID int
}

// NewLoggingPublisher creates a publisher logging through logger.
func NewLoggingPublisher(logger ports.Logger) *LoggingPublisher {
	return &LoggingPublisher{
		logger: logger,
		subs:   make(map[string][]subscriptionEntry),
	}
}

// Publish logs event and runs its handlers synchronously. Handler errors are
// logged and do not stop delivery.
func (p *LoggingPublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	if p == nil || event == nil {
		return nil
	}
	eventType := event.EventType()

	p.mu.RLock()
	handlers := append(append([]subscriptionEntry(nil), p.subs[eventType]...), p.subs[ports.AllEvents]...)
	p.mu.RUnlock()

	if p.logger != nil {
		p.log(ctx, event)
	}

	for _, entry := range handlers {
		if err := entry.handler(ctx, event); err != nil && p.logger != nil {
			p.logger.Warn(ctx, "event handler failed", "event_type", eventType, "error", err)
		}
	}
	return nil
}

func (p *LoggingPublisher) log(ctx context.Context, event ports.DomainEvent) {
	eventType := event.EventType()
	fields := []interface{}{"event_type", eventType}
	if at := event.OccurredAt(); !at.IsZero() {
		fields = append(fields, "occurred_at", at.UTC().Format(time.RFC3339Nano))
	}

	switch payload := event.Payload().(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(payload))
		for key := range payload {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fields = append(fields, key, payload[key])
		}
	case nil:
	default:
		fields = append(fields, "payload", payload)
	}

	msg, ok := messages[eventType]
	if !ok {
		msg = strings.ReplaceAll(eventType, ".", " ")
	}

	switch eventType {
	case ports.EventStageStarted, ports.EventDocumentSelected, ports.EventDocumentRemoved:
		p.logger.Debug(ctx, msg, fields...)
	case ports.EventStageFailed, ports.EventRunCancelled:
		p.logger.Warn(ctx, msg, fields...)
	default:
		p.logger.Info(ctx, msg, fields...)
	}
}

// Subscribe registers handler for eventType, or for every event when
// eventType is ports.AllEvents.
func (p *LoggingPublisher) Subscribe(eventType string, handler ports.EventHandler) (ports.Subscription, error) {
	if p == nil || handler == nil {
		return noopSubscription{}, nil
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs[eventType] = append(p.subs[eventType], subscriptionEntry{id: id, handler: handler})
	p.mu.Unlock()

	return &subscription{unsubscribe: func() { p.remove(eventType, id) }}, nil
}

func (p *LoggingPublisher) remove(eventType string, id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.subs[eventType]
	for i, entry := range entries {
		if entry.id == id {
			p.subs[eventType] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(p.subs[eventType]) == 0 {
		delete(p.subs, eventType)
	}
}

type subscriptionEntry struct {
	id      int
	handler ports.EventHandler
}

type subscription struct {
	once        sync.Once
	unsubscribe func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.unsubscribe)
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
