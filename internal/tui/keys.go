package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
	"github.com/mgallego/crewplan/internal/tui/commands"
)

// handleKeyMsg dispatches a key press to the handler for the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeMove:
		return m.handleMoveKey(msg)
	case ModeResize:
		return m.handleResizeKey(msg)
	case ModePrompt:
		return m.handlePromptKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "h", "left":
		m.moveCursorDay(-1)
	case "l", "right":
		m.moveCursorDay(1)
	case "k", "up":
		m.moveCursorEmployee(-1)
	case "j", "down":
		m.moveCursorEmployee(1)
	case "tab":
		m.togglePeriod()
	case "[":
		m.cycleTask(-1)
	case "]":
		m.cycleTask(1)

	case "t":
		m.cursor.Day = weekdayIndex(m.now())
		m.clampCursor()
		if !m.weekStart.Equal(weekStartOf(m.now())) {
			m.weekStart = weekStartOf(m.now())
			m.loading = true
			return m, commands.LoadBoard(m.repo, m.weekStart)
		}

	case "n":
		m.weekStart = m.weekStart.AddDate(0, 0, 7)
		m.loading = true
		return m, commands.LoadBoard(m.repo, m.weekStart)
	case "p":
		m.weekStart = m.weekStart.AddDate(0, 0, -7)
		m.loading = true
		return m, commands.LoadBoard(m.repo, m.weekStart)

	case "a":
		emp := m.cursorEmployee()
		if emp == nil {
			m.setStatus("No employee selected")
			return m, nil
		}
		if m.board.Blocked(emp.ID, m.cursorDate(), m.cursor.Period) {
			m.setStatus("Slot is blocked by leave")
			return m, nil
		}
		LogModeChange(m.mode, ModePrompt, "add task")
		m.mode = ModePrompt
		m.prompt.SetValue("")
		m.prompt.Focus()

	case "m":
		t := m.cursorTask()
		if t == nil {
			m.setStatus("No task under cursor")
			return m, nil
		}
		LogModeChange(m.mode, ModeMove, "grab task")
		m.mode = ModeMove
		m.moveTaskID = t.ID
		m.moveFrom = m.cursor
		m.moveColumn = 0
		if t.Column != nil {
			m.moveColumn = *t.Column
		}

	case "r":
		t := m.cursorTask()
		if t == nil {
			m.setStatus("No task under cursor")
			return m, nil
		}
		LogModeChange(m.mode, ModeResize, "select task")
		m.mode = ModeResize
		m.resizeTaskID = t.ID

	case "d":
		t := m.cursorTask()
		if t == nil {
			m.setStatus("No task under cursor")
			return m, nil
		}
		emp := m.cursorEmployee()
		rec := undoRecord{
			desc:    "delete of " + strconv.Quote(t.Title),
			restore: snapshotSlot(m.board, emp.ID, m.cursorDate(), m.cursor.Period),
		}
		// Restoring a deleted task would need the row back; deletion
		// is not undoable, only the sibling compaction is.
		rec.restore = withoutTask(rec.restore, t.ID)
		m.undo.push(rec)
		LogMutation("delete", t.ID, nil)
		return m, commands.DeleteTask(m.roster, t.ID)

	case "u":
		rec, ok := m.undo.pop()
		if !ok {
			m.setStatus("Nothing to undo")
			return m, nil
		}
		return m, m.undoCmd(rec)

	case "y":
		return m, commands.CopyWeekSummary(m.repo, m.weekStart, m.config.Schedule.Workdays)
	}

	return m, nil
}

func (m Model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		LogModeChange(m.mode, ModeNormal, "move cancelled")
		m.mode = ModeNormal
		m.cursor = m.moveFrom
		m.clampCursor()
		return m, nil

	case "h", "left":
		m.moveCursorDay(-1)
	case "l", "right":
		m.moveCursorDay(1)
	case "k", "up":
		m.moveCursorEmployee(-1)
	case "j", "down":
		m.moveCursorEmployee(1)
	case "tab":
		m.togglePeriod()
	case "[":
		if m.moveColumn > 0 {
			m.moveColumn--
		}
	case "]":
		if m.moveColumn < slot.Columns-1 {
			m.moveColumn++
		}

	case "enter", " ":
		emp := m.cursorEmployee()
		if emp == nil {
			m.setStatus("No employee selected")
			return m, nil
		}
		origin := m.moveFrom
		if origin.Employee < len(m.board.Employees) {
			originEmp := m.board.Employees[origin.Employee]
			m.undo.push(m.moveUndoRecord(originEmp, origin, emp))
		}

		LogMutation("move", m.moveTaskID, map[string]any{
			"to_employee": emp.ID,
			"to_date":     m.cursorDate().Format("2006-01-02"),
			"to_period":   string(m.cursor.Period),
			"to_column":   m.moveColumn,
		})
		LogModeChange(m.mode, ModeNormal, "move committed")
		m.mode = ModeNormal
		return m, commands.DropTask(m.roster, m.moveTaskID, emp.ID, m.cursorDate(), m.cursor.Period, m.moveColumn)
	}

	return m, nil
}

func (m Model) handleResizeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		LogModeChange(m.mode, ModeNormal, "resize done")
		m.mode = ModeNormal
		return m, nil

	case "l", "right":
		return m.commitResize(slot.EdgeRight, 1)
	case "h", "left":
		return m.commitResize(slot.EdgeRight, -1)
	case "L":
		return m.commitResize(slot.EdgeLeft, 1)
	case "H":
		return m.commitResize(slot.EdgeLeft, -1)
	}

	return m, nil
}

func (m Model) commitResize(edge slot.Edge, delta int) (tea.Model, tea.Cmd) {
	emp := m.cursorEmployee()
	if emp == nil {
		return m, nil
	}
	m.undo.push(undoRecord{
		desc:    "resize",
		restore: snapshotSlot(m.board, emp.ID, m.cursorDate(), m.cursor.Period),
	})
	LogMutation("resize", m.resizeTaskID, map[string]any{
		"edge":  int(edge),
		"delta": delta,
	})
	return m, commands.ResizeTask(m.roster, m.resizeTaskID, edge, delta)
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		LogModeChange(m.mode, ModeNormal, "prompt cancelled")
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil

	case tea.KeyEnter:
		input := strings.TrimSpace(m.prompt.Value())
		m.mode = ModeNormal
		m.prompt.Blur()
		if input == "" {
			return m, nil
		}
		hours, title := parsePromptInput(input)
		emp := m.cursorEmployee()
		if emp == nil {
			return m, nil
		}
		LogMutation("add", 0, map[string]any{"title": title, "hours": hours})
		return m, commands.AddTask(m.roster, emp.ID, title, m.cursorDate(), m.cursor.Period, hours)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// parsePromptInput splits an optional leading "Nh" hour prefix off the
// task title. "3h Fit skirting" becomes (3, "Fit skirting").
func parsePromptInput(input string) (hours int, title string) {
	hours = 1
	title = input
	fields := strings.SplitN(input, " ", 2)
	if len(fields) == 2 && strings.HasSuffix(fields[0], "h") {
		if n, err := strconv.Atoi(strings.TrimSuffix(fields[0], "h")); err == nil && n >= 1 && n <= slot.Columns {
			hours = n
			title = strings.TrimSpace(fields[1])
		}
	}
	return hours, title
}

// moveUndoRecord snapshots the slots a pending move will touch.
func (m Model) moveUndoRecord(originEmp *task.Employee, origin Position, destEmp *task.Employee) undoRecord {
	originDate := m.weekStart.AddDate(0, 0, origin.Day)
	subject := m.board.TaskAt(originEmp.ID, originDate, origin.Period, origin.Task)

	rec := undoRecord{desc: "move"}
	if subject != nil && subject.Column != nil {
		sameSlot := originEmp.ID == destEmp.ID &&
			origin.Day == m.cursor.Day &&
			origin.Period == m.cursor.Period

		if sameSlot {
			rec.restore = snapshotSlot(m.board, originEmp.ID, originDate, origin.Period)
		} else {
			rec.preRestore = withoutTask(snapshotSlot(m.board, originEmp.ID, originDate, origin.Period), subject.ID)
			rec.moveBack = &moveBack{
				taskID:     subject.ID,
				employeeID: originEmp.ID,
				date:       originDate,
				period:     origin.Period,
				column:     *subject.Column,
				hours:      subject.Hours,
			}
			rec.restore = withoutTask(snapshotSlot(m.board, destEmp.ID, m.cursorDate(), m.cursor.Period), subject.ID)
		}
	}
	return rec
}

// withoutTask filters one task's placement out of a snapshot.
func withoutTask(updates []task.PlacementUpdate, taskID int64) []task.PlacementUpdate {
	filtered := updates[:0]
	for _, u := range updates {
		if u.TaskID != taskID {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func (m *Model) moveCursorDay(delta int) {
	d := m.cursor.Day + delta
	if d < 0 {
		d = 0
	}
	if d > 6 {
		d = 6
	}
	m.cursor.Day = d
	m.clampCursor()
	LogCursorMove(m.cursor, "day")
}

func (m *Model) moveCursorEmployee(delta int) {
	if m.board == nil || len(m.board.Employees) == 0 {
		return
	}
	e := m.cursor.Employee + delta
	if e < 0 {
		e = 0
	}
	if e > len(m.board.Employees)-1 {
		e = len(m.board.Employees) - 1
	}
	m.cursor.Employee = e
	m.clampCursor()
	LogCursorMove(m.cursor, "employee")
}

func (m *Model) togglePeriod() {
	if m.cursor.Period == task.PeriodMorning {
		m.cursor.Period = task.PeriodAfternoon
	} else {
		m.cursor.Period = task.PeriodMorning
	}
	m.clampCursor()
	LogCursorMove(m.cursor, "period")
}

func (m *Model) cycleTask(delta int) {
	emp := m.cursorEmployee()
	if emp == nil {
		return
	}
	n := len(m.board.SlotTasks(emp.ID, m.cursorDate(), m.cursor.Period))
	if n == 0 {
		return
	}
	m.cursor.Task = (m.cursor.Task + delta + n) % n
	LogCursorMove(m.cursor, "task")
}
