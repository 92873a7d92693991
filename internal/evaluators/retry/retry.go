// Package retry decorates an evaluator with exponential backoff for
// transient failures.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// Evaluator retries the wrapped evaluator up to a fixed number of times.
// Errors wrapped with backoff.Permanent, and any failure after ctx is done,
// are returned immediately.
type Evaluator struct {
	next            ports.Evaluator
	retries         uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          ports.Logger
}

// Option customises the retry policy.
type Option func(*Evaluator)

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.initialInterval = d
		}
	}
}

// WithMaxInterval caps a single backoff delay.
func WithMaxInterval(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.maxInterval = d
		}
	}
}

// WithLogger reports each retried failure.
func WithLogger(logger ports.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// Wrap returns next unchanged when retries is not positive.
func Wrap(next ports.Evaluator, retries int, opts ...Option) ports.Evaluator {
	if retries <= 0 || next == nil {
		return next
	}
	e := &Evaluator{
		next:            next,
		retries:         uint64(retries),
		initialInterval: backoff.DefaultInitialInterval,
		maxInterval:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate implements ports.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, doc evaluation.Document, stage evaluation.Stage) (ports.Payload, error) {
	var payload ports.Payload
	attempt := 0
	op := func() error {
		attempt++
		p, err := e.next.Evaluate(ctx, doc, stage)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		payload = p
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.initialInterval
	policy.MaxInterval = e.maxInterval
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		if e.logger != nil {
			e.logger.Warn(ctx, "evaluator failed, retrying",
				"stage_id", stage.ID,
				"attempt", attempt,
				"wait", wait,
				"error", err,
			)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, e.retries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return ports.Payload{}, err
	}
	return payload, nil
}

var _ ports.Evaluator = (*Evaluator)(nil)
