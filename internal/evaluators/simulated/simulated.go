// Package simulated provides an evaluator that fabricates plausible feedback
// after a random delay. It stands in for a real review backend in demos and
// when no provider is configured.
package simulated

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// Options tunes delay, score range and failure injection.
type Options struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	MinScore    int
	MaxScore    int
	FailureRate float64
	// Seed makes runs reproducible. Zero picks a random seed.
	Seed uint64
}

// DefaultOptions matches the hosted evaluator: 2-5 seconds per stage and an
// integer score between 6 and 9.
func DefaultOptions() Options {
	return Options{
		MinDelay: 2 * time.Second,
		MaxDelay: 5 * time.Second,
		MinScore: 6,
		MaxScore: 9,
	}
}

// Evaluator implements ports.Evaluator without inspecting the document.
type Evaluator struct {
	opts Options

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a simulated evaluator. Out-of-order bounds are swapped and
// scores are clamped to the valid range.
func New(opts Options) *Evaluator {
	if opts.MaxDelay < opts.MinDelay {
		opts.MinDelay, opts.MaxDelay = opts.MaxDelay, opts.MinDelay
	}
	if opts.MaxScore < opts.MinScore {
		opts.MinScore, opts.MaxScore = opts.MaxScore, opts.MinScore
	}
	opts.MinScore = clamp(opts.MinScore, evaluation.MinScore, evaluation.MaxScore)
	opts.MaxScore = clamp(opts.MaxScore, evaluation.MinScore, evaluation.MaxScore)

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Evaluator{
		opts: opts,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Evaluate waits for the simulated delay, then returns templated feedback.
func (e *Evaluator) Evaluate(ctx context.Context, _ evaluation.Document, stage evaluation.Stage) (ports.Payload, error) {
	delay, fail, score := e.draw()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ports.Payload{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return ports.Payload{}, err
	}

	if fail {
		return ports.Payload{}, fmt.Errorf("simulated failure while evaluating %s", strings.ToLower(stage.Name))
	}

	return ports.Payload{
		Content: Feedback(stage),
		Score:   float64(score),
	}, nil
}

// Feedback renders the canned feedback paragraph for a stage.
func Feedback(stage evaluation.Stage) string {
	return fmt.Sprintf("This is a comprehensive evaluation of the %s aspect of your document. "+
		"The analysis reveals several strengths and areas for improvement. "+
		"Overall, the document demonstrates good potential with room for enhancement in specific areas.",
		strings.ToLower(stage.Name))
}

func (e *Evaluator) draw() (time.Duration, bool, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delay := e.opts.MinDelay
	if span := e.opts.MaxDelay - e.opts.MinDelay; span > 0 {
		delay += time.Duration(e.rng.Int64N(int64(span) + 1))
	}
	fail := e.opts.FailureRate > 0 && e.rng.Float64() < e.opts.FailureRate
	score := e.opts.MinScore + e.rng.IntN(e.opts.MaxScore-e.opts.MinScore+1)
	return delay, fail, score
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ ports.Evaluator = (*Evaluator)(nil)
