package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgallego/crewplan/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commands.BoardLoadedMsg:
		m.board = NewBoard(msg.WeekStart, msg.Employees, msg.Tasks, msg.Leaves)
		m.loading = false
		m.clampCursor()
		return m, nil

	case commands.MutationDoneMsg:
		m.setStatus(msg.Status)
		m.loading = true
		return m, tea.Batch(
			commands.LoadBoard(m.repo, m.weekStart),
			tea.Tick(3*time.Second, func(time.Time) tea.Msg {
				return commands.ClearStatusMsg{}
			}),
		)

	case commands.ErrMsg:
		m.err = msg.Err
		m.setStatus(fmt.Sprintf("Error: %v", msg.Err))
		m.statusTime = time.Now().Add(5 * time.Second)
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return commands.ClearStatusMsg{}
		})

	case commands.StatusMsgCmd:
		m.setStatus(msg.Msg)
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return commands.ClearStatusMsg{}
		})

	case commands.ClearStatusMsg:
		if time.Now().After(m.statusTime) {
			m.statusMsg = ""
			m.err = nil
		}
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	return m, nil
}
