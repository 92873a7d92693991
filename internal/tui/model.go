package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

// Controls is the part of the pipeline controller the TUI drives.
type Controls interface {
	Start(ctx context.Context) error
	Cancel(ctx context.Context) error
	SelectDocument(ctx context.Context, doc evaluation.Document) error
}

// SnapshotMsg delivers a controller snapshot to the program.
type SnapshotMsg struct {
	State evaluation.RunState
}

// RunFinishedMsg reports that a Start call returned.
type RunFinishedMsg struct {
	Err error
}

// Model contains the Bubbletea state for the evaluation TUI.
type Model struct {
	ctx      context.Context
	controls Controls
	catalog  evaluation.Catalog
	document evaluation.Document
	state    evaluation.RunState

	autoStart bool
	running   bool
	cancelled bool
	quitting  bool
	err       error
	width     int
}

// Option customises a Model.
type Option func(*Model)

// WithAutoStart starts a run as soon as the program initialises.
func WithAutoStart() Option {
	return func(m *Model) { m.autoStart = true }
}

// NewModel builds a model around controls. initial is the controller
// snapshot taken after the document was selected.
func NewModel(ctx context.Context, controls Controls, catalog evaluation.Catalog, initial evaluation.RunState, opts ...Option) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:      ctx,
		controls: controls,
		catalog:  catalog.Clone(),
		document: initial.Document,
		state:    initial,
		width:    defaultWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.autoStart {
		m.autoStart = m.canStart()
		m.running = m.autoStart
	}
	return m
}

// Init starts the run when auto start is enabled.
func (m Model) Init() tea.Cmd {
	if m.autoStart {
		return m.startCmd()
	}
	return nil
}

// State returns the latest snapshot seen by the model.
func (m Model) State() evaluation.RunState {
	return m.state
}

// Cancelled reports whether the user cancelled the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Err returns the error a run failed with, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) canStart() bool {
	return m.controls != nil && !m.running && m.state.Phase == evaluation.PhaseIdle && m.state.HasDocument()
}

// Controller calls run inside commands: listeners forward snapshots with
// program.Send, which blocks when called from Update.
func (m Model) startCmd() tea.Cmd {
	ctx, controls := m.ctx, m.controls
	return func() tea.Msg {
		return RunFinishedMsg{Err: controls.Start(ctx)}
	}
}

func (m Model) rerunCmd() tea.Cmd {
	ctx, controls, doc := m.ctx, m.controls, m.document
	return func() tea.Msg {
		if err := controls.SelectDocument(ctx, doc); err != nil {
			return RunFinishedMsg{Err: err}
		}
		return RunFinishedMsg{Err: controls.Start(ctx)}
	}
}

func (m Model) cancelCmd() tea.Cmd {
	ctx, controls := m.ctx, m.controls
	return func() tea.Msg {
		if err := controls.Cancel(ctx); err != nil {
			return controlErrMsg{err: err}
		}
		return nil
	}
}

type controlErrMsg struct {
	err error
}
