package pipeline

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// Option customises a Controller.
type Option func(*Controller)

// WithCatalog replaces the default six-stage catalog.
func WithCatalog(catalog evaluation.Catalog) Option {
	return func(c *Controller) {
		c.catalog = catalog.Clone()
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger ports.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventPublisher sets the publisher receiving lifecycle events.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(c *Controller) {
		c.events = publisher
	}
}

// WithStageTimeout bounds each Evaluate call. Zero disables the limit.
func WithStageTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.stageTimeout = timeout
		}
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRunIDGenerator overrides how run identifiers are minted.
func WithRunIDGenerator(next func() string) Option {
	return func(c *Controller) {
		if next != nil {
			c.newRunID = next
		}
	}
}

func newULID() string {
	return ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...interface{}) {}
func (nopLogger) Info(context.Context, string, ...interface{})  {}
func (nopLogger) Warn(context.Context, string, ...interface{})  {}
func (nopLogger) Error(context.Context, string, ...interface{}) {}
func (n nopLogger) With(...interface{}) ports.Logger            { return n }
