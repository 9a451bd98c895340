// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgallego/crewplan/internal/roster"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/summary"
	"github.com/mgallego/crewplan/internal/task"
)

// BoardLoadedMsg is sent when a week of board data is loaded.
type BoardLoadedMsg struct {
	WeekStart time.Time
	Employees []*task.Employee
	Tasks     []*task.Task
	Leaves    []*task.Leave
}

// MutationDoneMsg is sent after a successful board mutation. The model
// responds by reloading the board.
type MutationDoneMsg struct {
	Status string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadBoard loads employees, tasks, and leaves for the week starting
// at weekStart (Monday).
func LoadBoard(repo task.Repository, weekStart time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		weekEnd := weekStart.AddDate(0, 0, 6)

		employees, err := repo.ListEmployees(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading employees: %w", err)}
		}
		tasks, err := repo.ListTasksByDateRange(ctx, weekStart, weekEnd)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading tasks: %w", err)}
		}
		leaves, err := repo.ListLeaves(ctx, weekStart, weekEnd)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading leaves: %w", err)}
		}

		return BoardLoadedMsg{
			WeekStart: weekStart,
			Employees: employees,
			Tasks:     tasks,
			Leaves:    leaves,
		}
	}
}

// AddTask creates a task in the given slot.
func AddTask(r *roster.Roster, employeeID int64, title string, date time.Time, period task.Period, hours int) tea.Cmd {
	return func() tea.Msg {
		t, err := r.Add(context.Background(), employeeID, title, date, period, hours)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MutationDoneMsg{Status: fmt.Sprintf("Added %q (%dh)", t.Title, t.Hours)}
	}
}

// DropTask moves a task to the target column in the destination slot.
func DropTask(r *roster.Roster, taskID, employeeID int64, date time.Time, period task.Period, target int) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Drop(context.Background(), taskID, employeeID, date, period, target)
		if err != nil {
			return ErrMsg{Err: err}
		}
		status := fmt.Sprintf("Moved task #%d", out.Task.ID)
		if n := len(out.Moved); n > 0 {
			status = fmt.Sprintf("%s (%d shifted)", status, n)
		}
		return MutationDoneMsg{Status: status}
	}
}

// ResizeTask drags one edge of a task by delta columns.
func ResizeTask(r *roster.Roster, taskID int64, edge slot.Edge, delta int) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Resize(context.Background(), taskID, edge, delta)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MutationDoneMsg{Status: fmt.Sprintf("Task #%d is now %dh", out.Task.ID, out.Task.Hours)}
	}
}

// DeleteTask removes a task and compacts its slot.
func DeleteTask(r *roster.Roster, taskID int64) tea.Cmd {
	return func() tea.Msg {
		if err := r.Remove(context.Background(), taskID); err != nil {
			return ErrMsg{Err: err}
		}
		return MutationDoneMsg{Status: fmt.Sprintf("Removed task #%d", taskID)}
	}
}

// CopyWeekSummary renders the week summary and puts it on the system
// clipboard.
func CopyWeekSummary(repo task.Repository, weekStart time.Time, workdays []string) tea.Cmd {
	return func() tea.Msg {
		week, err := summary.BuildWeekSummary(context.Background(), repo, summary.BuildWeekSummaryOptions{
			WeekStart: weekStart,
			Workdays:  workdays,
		})
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("building week summary: %w", err)}
		}
		if err := clipboard.WriteAll(week.FormatText()); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Week summary copied to clipboard"}
	}
}

// Status returns a command that shows a temporary status message.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}

// Err returns a command that surfaces an error.
func Err(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrMsg{Err: err}
	}
}
