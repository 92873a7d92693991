// Package logging adapts zerolog to ports.Logger and provides a deferred
// logger for when the terminal is owned by the interactive view.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

const defaultLayer = "infrastructure"

// Options configures New.
type Options struct {
	Writer        io.Writer
	Level         string
	HumanReadable bool
	TimeFormat    string
	Layer         string
	Component     string
	Fields        map[string]interface{}
}

type field struct {
	key   string
	value interface{}
}

// Logger is a ports.Logger backed by zerolog. Every entry carries "layer",
// the fields attached through With, and the correlation ID found in ctx.
// A key given to a call replaces the same key attached earlier.
type Logger struct {
	zl     zerolog.Logger
	layer  string
	fields []field
}

// New builds a Logger. Level defaults to info and Writer to stderr.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if opts.HumanReadable {
		format := opts.TimeFormat
		if format == "" {
			format = time.RFC3339
		}
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: format}
	}

	zctx := zerolog.New(out).Level(level).With().Timestamp()
	keys := make([]string, 0, len(opts.Fields))
	for k := range opts.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		zctx = zctx.Interface(k, opts.Fields[k])
	}

	l := &Logger{zl: zctx.Logger(), layer: opts.Layer}
	if l.layer == "" {
		l.layer = defaultLayer
	}
	if opts.Component != "" {
		l.fields = []field{{key: "component", value: opts.Component}}
	}
	return l, nil
}

// Nop returns a Logger that discards every entry.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), layer: defaultLayer}
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...interface{}) {
	l.write(ctx, zerolog.DebugLevel, msg, kv)
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...interface{}) {
	l.write(ctx, zerolog.InfoLevel, msg, kv)
}

func (l *Logger) Warn(ctx context.Context, msg string, kv ...interface{}) {
	l.write(ctx, zerolog.WarnLevel, msg, kv)
}

func (l *Logger) Error(ctx context.Context, msg string, kv ...interface{}) {
	l.write(ctx, zerolog.ErrorLevel, msg, kv)
}

// With returns a child logger carrying kv on every entry.
func (l *Logger) With(kv ...interface{}) ports.Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{zl: l.zl, layer: l.layer, fields: merge(l.fields, kv)}
}

func (l *Logger) write(ctx context.Context, level zerolog.Level, msg string, kv []interface{}) {
	if l == nil {
		return
	}
	ev := l.zl.WithLevel(level)
	if ev == nil {
		return
	}

	fields := merge(append([]field{{key: "layer", value: l.layer}}, l.fields...), kv)
	if id := ports.GetCorrelationID(ctx); id != "" {
		fields = merge(fields, []interface{}{"correlation_id", id})
	}
	for _, f := range fields {
		switch v := f.value.(type) {
		case error:
			if f.key == "error" {
				ev = ev.Err(v)
			} else {
				ev = ev.AnErr(f.key, v)
			}
		case time.Duration:
			ev = ev.Dur(f.key, v)
		default:
			ev = ev.Interface(f.key, v)
		}
	}
	ev.Msg(msg)
}

// merge appends key/value pairs to base, replacing keys already present.
// Pairs with a non-string or empty key are skipped.
func merge(base []field, kv []interface{}) []field {
	out := append(make([]field, 0, len(base)+len(kv)/2), base...)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "" {
			continue
		}
		replaced := false
		for j := range out {
			if out[j].key == key {
				out[j].value = kv[i+1]
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, field{key: key, value: kv[i+1]})
		}
	}
	return out
}

var _ ports.Logger = (*Logger)(nil)
