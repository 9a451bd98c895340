// Package tui provides the terminal user interface for crewplan.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgallego/crewplan/internal/config"
	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/roster"
	"github.com/mgallego/crewplan/internal/task"
	"github.com/mgallego/crewplan/internal/tui/commands"
	"github.com/mgallego/crewplan/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMove        // A task is grabbed; cursor picks the destination
	ModeResize      // Edge drags apply to the selected task
	ModePrompt      // Typing a new task into the prompt
)

// Position is a cursor position on the board.
type Position struct {
	Employee int         // Row index into board.Employees
	Day      int         // 0=Monday .. 6=Sunday
	Period   task.Period // am or pm half of the day cell
	Task     int         // Index into the slot's column-ordered tasks
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo   task.Repository
	roster *roster.Roster
	config *config.Config
	now    func() time.Time

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// State
	board     *Board
	weekStart time.Time // Monday of the visible week
	cursor    Position
	mode      Mode
	loading   bool

	// Move mode
	moveTaskID int64
	moveFrom   Position // Slot the grabbed task came from
	moveColumn int      // Target column in the destination slot

	// Resize mode
	resizeTaskID int64

	// Prompt mode
	prompt textinput.Model

	// Undo
	undo undoStack

	// Terminal dimensions
	width  int
	height int

	// Messages
	statusMsg  string
	statusTime time.Time

	// Error state
	err error
}

// New creates a new TUI model.
func New(repo task.Repository, r *roster.Roster, cfg *config.Config) *Model {
	ti := textinput.New()
	ti.Placeholder = "task title, optionally \"3h title\""
	ti.CharLimit = 120
	ti.Width = 40

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("frappe")
	}

	weekStart := weekStartOf(time.Now())

	return &Model{
		repo:      repo,
		roster:    r,
		config:    cfg,
		now:       time.Now,
		theme:     t,
		styles:    NewStyles(t),
		weekStart: weekStart,
		cursor: Position{
			Day:    weekdayIndex(time.Now()),
			Period: task.PeriodMorning,
		},
		mode:    ModeNormal,
		prompt:  ti,
		loading: true,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return commands.LoadBoard(m.repo, m.weekStart)
}

// weekStartOf returns the Monday of the week containing t.
func weekStartOf(t time.Time) time.Time {
	monday, _ := dateutil.WeekRange(t)
	return monday
}

// weekdayIndex maps a date to its board column (0=Monday .. 6=Sunday).
func weekdayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// cursorDate returns the date under the cursor.
func (m Model) cursorDate() time.Time {
	return m.weekStart.AddDate(0, 0, m.cursor.Day)
}

// cursorEmployee returns the employee under the cursor, or nil when
// the board has no employees yet.
func (m Model) cursorEmployee() *task.Employee {
	if m.board == nil || m.cursor.Employee >= len(m.board.Employees) {
		return nil
	}
	return m.board.Employees[m.cursor.Employee]
}

// cursorTask returns the task under the cursor, or nil.
func (m Model) cursorTask() *task.Task {
	emp := m.cursorEmployee()
	if emp == nil {
		return nil
	}
	return m.board.TaskAt(emp.ID, m.cursorDate(), m.cursor.Period, m.cursor.Task)
}

// clampCursor keeps the task index inside the slot under the cursor.
func (m *Model) clampCursor() {
	emp := m.cursorEmployee()
	if emp == nil {
		m.cursor.Task = 0
		return
	}
	n := len(m.board.SlotTasks(emp.ID, m.cursorDate(), m.cursor.Period))
	if m.cursor.Task >= n {
		m.cursor.Task = n - 1
	}
	if m.cursor.Task < 0 {
		m.cursor.Task = 0
	}
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTime = time.Now().Add(3 * time.Second)
}

// Run starts the TUI.
func Run(repo task.Repository, cfg *config.Config) error {
	return RunWithDebug(repo, cfg, false)
}

// RunWithDebug starts the TUI with optional debug logging.
func RunWithDebug(repo task.Repository, cfg *config.Config, debug bool) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	r := roster.New(repo, cfg.Schedule.Workdays)
	model := New(repo, r, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
