package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		if msg.State.Version < m.state.Version {
			return m, nil
		}
		m.state = msg.State
		return m, nil
	case RunFinishedMsg:
		m.running = false
		if msg.Err != nil {
			if errors.Is(msg.Err, evaluation.ErrRunCancelled) {
				m.cancelled = true
			} else {
				m.err = msg.Err
			}
		}
		return m, nil
	case controlErrMsg:
		// The run finished before the cancel landed.
		if !errors.Is(msg.err, evaluation.ErrInvalidState) {
			m.err = msg.err
		}
		return m, nil
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.QuitMsg:
		m.quitting = true
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		// The caller cancels the run context once the program exits.
		if m.running {
			m.cancelled = true
		}
		m.quitting = true
		return m, tea.Quit
	case "c":
		if !m.running || m.controls == nil {
			return m, nil
		}
		return m, m.cancelCmd()
	case "enter", "s":
		if !m.canStart() {
			return m, nil
		}
		m.begin()
		return m, m.startCmd()
	case "r":
		if m.controls == nil || m.running || m.state.Phase != evaluation.PhaseCompleted {
			return m, nil
		}
		m.begin()
		return m, m.rerunCmd()
	}
	return m, nil
}

func (m *Model) begin() {
	m.running = true
	m.cancelled = false
	m.err = nil
}
