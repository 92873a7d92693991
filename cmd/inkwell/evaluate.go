package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/inkwell/internal/application/pipeline"
	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/document"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/watch"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
	"github.com/alexisbeaulieu97/inkwell/internal/report"
	"github.com/alexisbeaulieu97/inkwell/internal/tui"
)

// Entries logged while the TUI owns the terminal are held here and flushed
// once it exits.
const logBufferSize = 500

type evaluateOptions struct {
	output         string
	provider       string
	stageTimeout   time.Duration
	watch          bool
	nonInteractive bool
}

func newEvaluateCmd(root *rootFlags, app *AppContext) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:     "evaluate <document>",
		Aliases: []string{"eval"},
		Short:   "Evaluate a manuscript through every stage",
		Long: `Evaluate runs the document through each editorial stage in order and
reports a score and feedback per stage. A stage that fails or times out is
recorded as failed and the remaining stages still run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Init(root); err != nil {
				return err
			}
			if !cmd.Flags().Changed("non-interactive") {
				opts.nonInteractive = !isTerminal(cmd.OutOrStdout())
			}
			// Watch mode re-runs indefinitely and reports in plain text.
			if opts.watch {
				opts.nonInteractive = true
			}

			ctx, logger := app.CommandContext(cmd, "command.evaluate")
			logger.Info(ctx, "evaluating document", "path", args[0], "interactive", !opts.nonInteractive)
			err := runEvaluate(ctx, app, cmd.OutOrStdout(), args[0], *opts)
			if err != nil && !errors.Is(err, evaluation.ErrRunCancelled) {
				logger.Error(ctx, "evaluate command failed", "path", args[0], "error", err)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the results as YAML to this file")
	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "Override the configured evaluator provider")
	cmd.Flags().DurationVar(&opts.stageTimeout, "stage-timeout", 0, "Fail a stage that runs longer than this (overrides settings.stage_timeout)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-evaluate whenever the document changes")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Print plain text instead of the interactive view")

	return cmd
}

func runEvaluate(ctx context.Context, app *AppContext, out io.Writer, path string, opts evaluateOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLogger := app.Logger
	if !opts.nonInteractive {
		deferred := logging.NewDeferred(logBufferSize)
		runLogger = deferred.Logger()
		defer deferred.Flush(ctx, app.Logger)
	}

	settings := app.Config.Settings
	policy := document.Policy{Extensions: settings.Extensions(), MaxSize: int64(settings.MaxFileSize)}
	loader := document.NewLoader(policy, runLogger.With("component", "document_loader"))

	doc, err := loader.Load(ctx, path)
	if err != nil {
		return newCommandError("load document", path, err, fmt.Sprintf("Accepted documents: %s.", policy.Describe()))
	}

	evalCfg := app.Config.Evaluator
	if opts.provider != "" {
		evalCfg.Provider = opts.provider
	}
	evaluator, err := app.Evaluators.Build(evalCfg, runLogger.With("component", "evaluator", "provider", evalCfg.Provider))
	if err != nil {
		return newCommandError("prepare evaluator", evalCfg.Provider, err,
			fmt.Sprintf("Available providers: %s.", strings.Join(app.Evaluators.Providers(), ", ")))
	}

	timeout := settings.StageTimeoutDuration()
	if opts.stageTimeout > 0 {
		timeout = opts.stageTimeout
	}

	publisher := app.Events
	if publisher == nil {
		publisher = events.NewLoggingPublisher(runLogger.With("component", "events"))
	}

	ctrl, err := pipeline.NewController(evaluator,
		pipeline.WithLogger(runLogger),
		pipeline.WithEventPublisher(publisher),
		pipeline.WithStageTimeout(timeout),
	)
	if err != nil {
		return err
	}
	if err := ctrl.SelectDocument(ctx, doc); err != nil {
		return err
	}

	session := &evaluationSession{
		ctrl:   ctrl,
		out:    out,
		opts:   opts,
		logger: runLogger,
	}
	if opts.watch {
		return session.watch(ctx, loader, path)
	}
	return session.runOnce(ctx)
}

type evaluationSession struct {
	ctrl   *pipeline.Controller
	out    io.Writer
	opts   evaluateOptions
	logger ports.Logger
}

// runOnce evaluates the selected document, then renders and exports the
// results. A cancelled run returns an error matching ErrRunCancelled.
func (s *evaluationSession) runOnce(ctx context.Context) error {
	var (
		state evaluation.RunState
		err   error
	)
	if s.opts.nonInteractive {
		err = s.ctrl.Start(ctx)
		state = s.ctrl.State()
	} else {
		state, err = s.runInteractive(ctx)
	}

	if err != nil {
		if errors.Is(err, evaluation.ErrRunCancelled) && s.opts.nonInteractive {
			fmt.Fprintln(s.out, "Evaluation cancelled")
		}
		return err
	}

	if s.opts.nonInteractive {
		if err := report.RenderText(s.out, report.Build(state)); err != nil {
			return err
		}
	}
	return s.export(ctx, state)
}

func (s *evaluationSession) runInteractive(ctx context.Context) (evaluation.RunState, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(runCtx, s.ctrl, s.ctrl.Catalog(), s.ctrl.State(), tui.WithAutoStart())
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(s.out))

	unsubscribe := s.ctrl.Subscribe(func(state evaluation.RunState) {
		program.Send(tui.SnapshotMsg{State: state})
	})
	defer unsubscribe()

	final, err := program.Run()
	// Quitting mid-run leaves Start blocked on runCtx.
	cancel()

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return s.ctrl.State(), evaluation.NewCancellationError(s.ctrl.State().RunID, context.Cause(ctx))
		}
		return s.ctrl.State(), fmt.Errorf("run interactive view: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return s.ctrl.State(), nil
	}
	if m.Err() != nil {
		return m.State(), m.Err()
	}
	if m.Cancelled() {
		return m.State(), evaluation.NewCancellationError(m.State().RunID, context.Canceled)
	}
	return s.ctrl.State(), nil
}

func (s *evaluationSession) export(ctx context.Context, state evaluation.RunState) error {
	if s.opts.output == "" {
		return nil
	}
	if !report.Exportable(state) {
		s.logger.Warn(ctx, "no completed stages; skipping export", "output", s.opts.output)
		return nil
	}

	f, err := os.Create(s.opts.output)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := report.WriteYAML(f, report.Build(state)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	s.logger.Info(ctx, "report exported", "output", s.opts.output, "run_id", state.RunID)
	return nil
}

func (s *evaluationSession) watch(ctx context.Context, loader *document.Loader, path string) error {
	if err := s.runOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	w, err := watch.New(path, watch.WithLogger(s.logger.With("component", "watcher")))
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\nWatching %s for changes (Ctrl+C to stop)\n", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Error != nil {
				s.logger.Warn(ctx, "watcher error", "error", ev.Error)
				continue
			}
			doc, err := loader.Load(ctx, path)
			if err != nil {
				fmt.Fprintf(s.out, "Skipping change: %v\n", err)
				continue
			}
			if err := s.ctrl.SelectDocument(ctx, doc); err != nil {
				return err
			}
			if err := s.runOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
