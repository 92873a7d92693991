package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/inkwell/internal/config"
	"github.com/alexisbeaulieu97/inkwell/internal/evaluators"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// testApp builds an AppContext with an instant, deterministic simulated
// evaluator and JSON logs captured in logBuf.
func testApp(t *testing.T, logBuf *bytes.Buffer) *AppContext {
	t.Helper()

	cfg := config.Default()
	cfg.Evaluator.Simulated.MinDelayMS = 0
	cfg.Evaluator.Simulated.MaxDelayMS = 0
	cfg.Evaluator.Simulated.MinScore = 8
	cfg.Evaluator.Simulated.MaxScore = 8
	cfg.Evaluator.Simulated.Seed = 42

	logger, err := logging.New(logging.Options{
		Writer:    logBuf,
		Level:     "debug",
		Layer:     "cli",
		Component: "inkwell",
	})
	require.NoError(t, err)

	return &AppContext{
		Config:     &cfg,
		Logger:     logger,
		Evaluators: evaluators.DefaultRegistry(),
	}
}

func writeDocument(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func executeCommand(t *testing.T, app *AppContext, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd(app)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func filterLines(output string) []string {
	raw := strings.Split(output, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

type eventsRecordingPublisher struct {
	mu     sync.Mutex
	events []eventRecord
}

type eventRecord struct {
	eventType     string
	correlationID string
}

func (e *eventsRecordingPublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventRecord{
		eventType:     event.EventType(),
		correlationID: ports.GetCorrelationID(ctx),
	})
	return nil
}

func (e *eventsRecordingPublisher) Subscribe(string, ports.EventHandler) (ports.Subscription, error) {
	return noopSubscription{}, nil
}

func (e *eventsRecordingPublisher) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.eventType)
	}
	return out
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
