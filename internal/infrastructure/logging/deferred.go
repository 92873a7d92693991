package logging

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

const defaultDeferredLimit = 1000

type deferredEntry struct {
	ctx    context.Context
	level  zerolog.Level
	at     time.Time
	msg    string
	fields []interface{}
}

// Deferred holds log entries while the interactive view owns the terminal
// and replays them through a real logger once it is released. When full,
// the oldest entries are dropped.
type Deferred struct {
	mu      sync.Mutex
	limit   int
	entries []deferredEntry
	dropped int
	now     func() time.Time
}

// NewDeferred creates a buffer holding at most limit entries (default 1000).
func NewDeferred(limit int) *Deferred {
	if limit <= 0 {
		limit = defaultDeferredLimit
	}
	return &Deferred{
		limit:   limit,
		entries: make([]deferredEntry, 0, min(limit, 64)),
		now:     time.Now,
	}
}

// Logger returns a ports.Logger recording into d.
func (d *Deferred) Logger() ports.Logger {
	return &deferredLogger{sink: d}
}

// Len reports how many entries are waiting.
func (d *Deferred) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Flush replays pending entries through delegate in the order they were
// recorded. Each entry carries the original time as "logged_at".
func (d *Deferred) Flush(ctx context.Context, delegate ports.Logger) {
	if delegate == nil {
		return
	}

	d.mu.Lock()
	entries := d.entries
	dropped := d.dropped
	d.entries = make([]deferredEntry, 0, cap(entries))
	d.dropped = 0
	d.mu.Unlock()

	if dropped > 0 {
		delegate.Warn(ctx, "log entries dropped while output was deferred", "dropped", dropped)
	}

	for _, e := range entries {
		fields := append(e.fields, "logged_at", e.at.Format(time.RFC3339Nano))
		switch e.level {
		case zerolog.DebugLevel:
			delegate.Debug(e.ctx, e.msg, fields...)
		case zerolog.WarnLevel:
			delegate.Warn(e.ctx, e.msg, fields...)
		case zerolog.ErrorLevel:
			delegate.Error(e.ctx, e.msg, fields...)
		default:
			delegate.Info(e.ctx, e.msg, fields...)
		}
	}
}

func (d *Deferred) record(e deferredEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e.at = d.now()
	if len(d.entries) == d.limit {
		copy(d.entries, d.entries[1:])
		d.entries[len(d.entries)-1] = e
		d.dropped++
		return
	}
	d.entries = append(d.entries, e)
}

type deferredLogger struct {
	sink   *Deferred
	fields []interface{}
}

func (l *deferredLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.DebugLevel, msg, fields)
}

func (l *deferredLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.InfoLevel, msg, fields)
}

func (l *deferredLogger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.WarnLevel, msg, fields)
}

func (l *deferredLogger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.ErrorLevel, msg, fields)
}

func (l *deferredLogger) With(fields ...interface{}) ports.Logger {
	return &deferredLogger{sink: l.sink, fields: concat(l.fields, fields)}
}

func (l *deferredLogger) log(ctx context.Context, level zerolog.Level, msg string, fields []interface{}) {
	l.sink.record(deferredEntry{
		ctx:    ctx,
		level:  level,
		msg:    msg,
		fields: concat(l.fields, fields),
	})
}

func concat(a, b []interface{}) []interface{} {
	out := make([]interface{}, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
