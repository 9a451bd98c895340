package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

const (
	nameColWidth = 12
	dayColWidth  = 11
	boardDays    = 7
)

// View renders the board.
func (m Model) View() string {
	if m.board == nil {
		return "Loading schedule..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderDayHeaders())
	b.WriteString("\n")

	if len(m.board.Employees) == 0 {
		b.WriteString("\n  No employees yet. Add one with: crewplan employee add\n")
	} else {
		for i, emp := range m.board.Employees {
			b.WriteString(m.renderEmployeeRow(i, emp))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderSelection())
	b.WriteString("\n")

	if m.mode == ModePrompt {
		b.WriteString(m.styles.PromptStyle.Render("New task: "+m.prompt.View()) + "\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.TitleStyle.Render("crewplan")
	week := fmt.Sprintf("Week of %s", m.weekStart.Format("2006-01-02"))
	header := title + "  " + week
	if m.loading {
		header += "  " + m.styles.KeyHintStyle.Render("(loading)")
	}
	return header
}

func (m Model) renderDayHeaders() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameColWidth+3))
	today := m.now()
	for d := 0; d < boardDays; d++ {
		date := m.board.Day(d)
		label := date.Format("Mon 02")
		style := m.styles.DayHeaderStyle
		if dateutil.SameDay(date, today) {
			style = m.styles.DayHeaderTodayStyle
		}
		b.WriteString(style.Render(padRight(label, dayColWidth)))
	}
	return b.String()
}

func (m Model) renderEmployeeRow(row int, emp *task.Employee) string {
	var b strings.Builder

	name := padRight(truncate(emp.Name, nameColWidth), nameColWidth)
	periods := []task.Period{task.PeriodMorning, task.PeriodAfternoon}

	for pi, period := range periods {
		if pi == 0 {
			b.WriteString(m.styles.EmployeeStyle.Render(name))
		} else {
			b.WriteString(strings.Repeat(" ", nameColWidth))
		}
		b.WriteString(m.styles.PeriodLabelStyle.Render(string(period)) + " ")

		for d := 0; d < boardDays; d++ {
			bar := m.renderSlotBar(row, emp, d, period)
			b.WriteString(padCell(bar, dayColWidth))
		}
		if pi == 0 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderSlotBar draws one slot as four 2-wide hour columns.
func (m Model) renderSlotBar(row int, emp *task.Employee, day int, period task.Period) string {
	date := m.board.Day(day)
	underCursor := row == m.cursor.Employee && day == m.cursor.Day && period == m.cursor.Period

	open, close := " ", " "
	if underCursor {
		open = m.styles.CursorSlotStyle.Render("[")
		close = m.styles.CursorSlotStyle.Render("]")
	}

	if m.board.Blocked(emp.ID, date, period) {
		return open + m.styles.LeaveStyle.Render("  off   ") + close
	}

	placements := m.board.Placements(emp.ID, date, period)
	selected := m.cursorTask()

	cells := make([]string, slot.Columns)
	for c := 0; c < slot.Columns; c++ {
		style := m.styles.FreeStyle
		text := "··"
		for _, p := range placements {
			if c < p.Start || c >= p.End() {
				continue
			}
			text = "██"
			style = m.styles.TaskStyle
			if m.mode == ModeMove && p.TaskID == m.moveTaskID {
				style = m.styles.TaskGrabbedStyle
			} else if underCursor && selected != nil && p.TaskID == selected.ID {
				style = m.styles.TaskSelectedStyle
			}
			break
		}
		cells[c] = style.Render(text)
	}

	// Mark the drop column while choosing a destination.
	if m.mode == ModeMove && underCursor {
		cells[m.moveColumn] = m.styles.TaskGrabbedStyle.Render("▼▼")
	}

	return open + strings.Join(cells, "") + close
}

func (m Model) renderSelection() string {
	t := m.cursorTask()
	emp := m.cursorEmployee()
	if t == nil || emp == nil {
		return m.styles.KeyHintStyle.Render("  (empty slot)")
	}
	col := "-"
	if t.Column != nil {
		col = fmt.Sprintf("%d", *t.Column)
	}
	return fmt.Sprintf("  #%d %s  %s %s  %dh at column %s",
		t.ID, m.styles.TitleStyle.Render(t.Title), t.Date.Format("Mon 2006-01-02"), t.Period.Label(), t.Hours, col)
}

func (m Model) renderFooter() string {
	var parts []string

	switch m.mode {
	case ModeMove:
		parts = append(parts, m.styles.ModeStyle.Render("MOVE"))
		parts = append(parts, m.styles.KeyHintStyle.Render("hjkl/tab: destination  [/]: column  enter: drop  esc: cancel"))
	case ModeResize:
		parts = append(parts, m.styles.ModeStyle.Render("RESIZE"))
		parts = append(parts, m.styles.KeyHintStyle.Render("h/l: right edge  H/L: left edge  esc: done"))
	case ModePrompt:
		parts = append(parts, m.styles.KeyHintStyle.Render("enter: add  esc: cancel"))
	default:
		parts = append(parts, m.styles.KeyHintStyle.Render("hjkl: move  tab: am/pm  [/]: task  a: add  m: move  r: resize  d: delete  u: undo  n/p: week  y: copy  q: quit"))
	}

	if m.statusMsg != "" {
		style := m.styles.StatusStyle
		if m.err != nil {
			style = m.styles.ErrorStyle
		}
		parts = append(parts, style.Render(m.statusMsg))
	}

	line := strings.Join(parts, "  ")
	if m.width > 0 {
		line = ansi.Truncate(line, m.width, "…")
	}
	return line
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// padCell pads a styled cell to the column width using the printable
// width, not the byte length.
func padCell(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, max int) string {
	return ansi.Truncate(s, max, "…")
}
