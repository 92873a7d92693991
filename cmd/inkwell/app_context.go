package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/inkwell/internal/config"
	"github.com/alexisbeaulieu97/inkwell/internal/evaluators"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

// AppContext bundles long-lived services created at startup. Fields that
// are already set are kept by Init, which lets tests inject fakes.
type AppContext struct {
	Config     *config.Config
	Logger     ports.Logger
	Events     ports.EventPublisher
	Evaluators *evaluators.Registry

	logWriter io.Writer
}

func newAppContext() *AppContext {
	return &AppContext{
		Evaluators: evaluators.DefaultRegistry(),
		logWriter:  os.Stderr,
	}
}

// Init loads configuration and builds the logger.
func (a *AppContext) Init(flags *rootFlags) error {
	if a.Config == nil {
		cfg, err := config.Load(flags.configPath)
		if err != nil {
			return newCommandError("load configuration", flags.configPath, err, "Fix the reported field or run without --config to use defaults.")
		}
		a.Config = cfg
	}

	if a.Evaluators == nil {
		a.Evaluators = evaluators.DefaultRegistry()
	}

	if a.Logger == nil {
		level := a.Config.Log.Level
		if flags.verbose {
			level = "debug"
		}
		if level == "" {
			level = "info"
		}
		writer := a.logWriter
		if writer == nil {
			writer = os.Stderr
		}
		logger, err := logging.New(logging.Options{
			Writer:        writer,
			Level:         level,
			HumanReadable: a.Config.Log.HumanReadable,
			Layer:         "cli",
			Component:     "inkwell",
		})
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		a.Logger = logger
	}

	return nil
}

// CommandContext returns the command's context carrying a correlation ID,
// and a logger scoped to the command.
func (a *AppContext) CommandContext(cmd *cobra.Command, name string) (context.Context, ports.Logger) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if ports.GetCorrelationID(ctx) == "" {
		ctx = ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())
	}

	logger := a.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return ctx, logger.With("command", name)
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func (e *commandError) Error() string {
	msg := fmt.Sprintf("Failed to %s", e.operation)
	if e.context != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.context)
	}
	msg = fmt.Sprintf("%s\n\nError: %v", msg, e.cause)
	if e.suggestion != "" {
		msg = fmt.Sprintf("%s\n\nSuggestion: %s", msg, e.suggestion)
	}
	return msg
}

func (e *commandError) Unwrap() error {
	return e.cause
}
