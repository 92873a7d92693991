// Package internalexec runs evaluator subprocesses and captures their output
// without forwarding anything to the terminal.
package internalexec

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultLimit caps how many bytes of each stream are kept.
const DefaultLimit = 1 << 20

// Result describes a finished command.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// Diagnostic returns the most useful text for an error message: stderr when
// present, otherwise stdout.
func (r Result) Diagnostic() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Option tweaks Run.
type Option func(*runner)

// WithLimit caps captured bytes per stream. Values <= 0 keep DefaultLimit.
func WithLimit(n int) Option {
	return func(r *runner) {
		if n > 0 {
			r.limit = n
		}
	}
}

type runner struct {
	limit int
	now   func() time.Time
}

// Run executes cmd and collects stdout and stderr. Writers already attached
// to cmd still receive the full streams. ExitCode is -1 when the process
// never started or was killed by a signal.
func Run(cmd *exec.Cmd, opts ...Option) (Result, error) {
	r := runner{limit: DefaultLimit, now: time.Now}
	for _, opt := range opts {
		opt(&r)
	}

	stdout := &cappedBuffer{limit: r.limit}
	stderr := &cappedBuffer{limit: r.limit}
	cmd.Stdout = tee(cmd.Stdout, stdout)
	cmd.Stderr = tee(cmd.Stderr, stderr)

	started := r.now()
	err := cmd.Run()

	res := Result{
		Stdout:    strings.TrimSpace(stdout.String()),
		Stderr:    strings.TrimSpace(stderr.String()),
		ExitCode:  exitCode(cmd, err),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  r.now().Sub(started),
	}
	return res, err
}

func tee(existing io.Writer, capture io.Writer) io.Writer {
	if existing == nil {
		return capture
	}
	return io.MultiWriter(existing, capture)
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

// cappedBuffer keeps the first limit bytes and silently discards the rest so
// a chatty child never blocks on a full pipe.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - len(b.buf)
	switch {
	case room <= 0:
		b.truncated = b.truncated || len(p) > 0
	case len(p) > room:
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
	default:
		b.buf = append(b.buf, p...)
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
