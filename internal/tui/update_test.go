package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

func runningState(version uint64) evaluation.RunState {
	s := idleState()
	s.Phase = evaluation.PhaseRunning
	s.Version = version
	return s
}

func TestUpdateAppliesSnapshots(t *testing.T) {
	t.Parallel()

	m := NewModel(context.Background(), &fakeControls{}, testCatalog(), idleState())
	m, _ = update(t, m, SnapshotMsg{State: runningState(3)})
	require.Equal(t, evaluation.PhaseRunning, m.State().Phase)

	stale := idleState()
	stale.Version = 2
	m, _ = update(t, m, SnapshotMsg{State: stale})
	require.Equal(t, evaluation.PhaseRunning, m.State().Phase, "older snapshots are dropped")
}

func TestUpdateRunFinished(t *testing.T) {
	t.Parallel()

	t.Run("cancellation marks the run cancelled", func(t *testing.T) {
		t.Parallel()
		m := NewModel(context.Background(), &fakeControls{}, testCatalog(), idleState(), WithAutoStart())
		m, _ = update(t, m, RunFinishedMsg{Err: evaluation.NewCancellationError("run", context.Canceled)})
		require.False(t, m.running)
		require.True(t, m.Cancelled())
		require.NoError(t, m.Err())
	})

	t.Run("other errors are surfaced", func(t *testing.T) {
		t.Parallel()
		m := NewModel(context.Background(), &fakeControls{}, testCatalog(), idleState(), WithAutoStart())
		m, _ = update(t, m, RunFinishedMsg{Err: errors.New("boom")})
		require.EqualError(t, m.Err(), "boom")
		require.False(t, m.Cancelled())
	})
}

func TestUpdateStartKey(t *testing.T) {
	t.Parallel()

	controls := &fakeControls{}
	m := NewModel(context.Background(), controls, testCatalog(), idleState())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.running)
	cmd()
	require.Equal(t, 1, controls.starts)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd, "a second start is ignored while running")
}

func TestUpdateCancelKey(t *testing.T) {
	t.Parallel()

	controls := &fakeControls{}
	m := NewModel(context.Background(), controls, testCatalog(), idleState(), WithAutoStart())

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	require.Nil(t, cmd())
	require.Equal(t, 1, controls.cancels)

	idle := NewModel(context.Background(), controls, testCatalog(), idleState())
	_, cmd = update(t, idle, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.Nil(t, cmd)
}

func TestUpdateCancelRace(t *testing.T) {
	t.Parallel()

	controls := &fakeControls{cancelErr: evaluation.NewInvalidStateError("cancel", evaluation.PhaseCompleted, "no run in progress")}
	m := NewModel(context.Background(), controls, testCatalog(), idleState(), WithAutoStart())

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	msg := cmd()
	m, _ = update(t, m, msg)
	require.NoError(t, m.Err(), "cancel after completion is not an error")
}

func TestUpdateRerunKey(t *testing.T) {
	t.Parallel()

	controls := &fakeControls{}
	m := NewModel(context.Background(), controls, testCatalog(), idleState())

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.Nil(t, cmd, "rerun needs a completed run")

	done := idleState()
	done.Phase = evaluation.PhaseCompleted
	done.Version = 9
	m, _ = update(t, m, SnapshotMsg{State: done})

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	require.True(t, m.running)
	require.Equal(t, RunFinishedMsg{}, cmd())
	require.Len(t, controls.selected, 1)
	require.Equal(t, "draft.docx", controls.selected[0].Name())
	require.Equal(t, 1, controls.starts)
}

func TestUpdateQuit(t *testing.T) {
	t.Parallel()

	m := NewModel(context.Background(), &fakeControls{}, testCatalog(), idleState(), WithAutoStart())
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
	require.True(t, m.quitting)
	require.True(t, m.Cancelled(), "quitting mid-run counts as a cancel")

	idle := NewModel(context.Background(), &fakeControls{}, testCatalog(), idleState())
	idle, _ = update(t, idle, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.True(t, idle.quitting)
	require.False(t, idle.Cancelled())
}

func TestUpdateWindowSize(t *testing.T) {
	t.Parallel()

	m := NewModel(context.Background(), &fakeControls{}, testCatalog(), idleState())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Equal(t, 120, m.width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 0})
	require.Equal(t, 120, m.width)
}
