// Package task defines the core domain types for crewplan.
package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/slot"
)

// Validation errors.
var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrInvalidHours  = errors.New("hours must be between 1 and 4")
	ErrInvalidPeriod = errors.New(`period must be "am" or "pm"`)
)

// Domain errors.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrSlotFull         = errors.New("no room left in the slot")
	ErrSlotOverlap      = errors.New("placement overlaps with existing task")
	ErrSlotBlocked      = errors.New("employee is on leave for this slot")
)

// Period identifies the half of a workday a slot belongs to.
type Period string

const (
	PeriodMorning   Period = "am"
	PeriodAfternoon Period = "pm"
)

// ParsePeriod parses a period from user input. It accepts the short
// forms "am"/"pm" and the long forms "morning"/"afternoon".
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "am", "AM", "morning":
		return PeriodMorning, nil
	case "pm", "PM", "afternoon":
		return PeriodAfternoon, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Valid returns true if the period is a recognized value.
func (p Period) Valid() bool {
	return p == PeriodMorning || p == PeriodAfternoon
}

// Label returns the display name of the period.
func (p Period) Label() string {
	if p == PeriodMorning {
		return "Morning"
	}
	return "Afternoon"
}

// Task is a unit of work assigned to one employee's half-day slot.
// Hours is the task's width in hour-columns (1 to 4). Column is the
// stored left edge; nil marks legacy rows created before columns
// existed, which the layout engine migrates on load.
type Task struct {
	ID         int64
	EmployeeID int64
	Title      string
	Date       time.Time
	Period     Period
	Hours      int
	Column     *int
	CreatedAt  time.Time
}

// New creates a Task with validation. date can be empty (defaults to
// today) or in YYYY-MM-DD format.
func New(employeeID int64, title, date, period string, hours int) (*Task, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if hours < 1 || hours > slot.Columns {
		return nil, ErrInvalidHours
	}

	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	d, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	return &Task{
		EmployeeID: employeeID,
		Title:      title,
		Date:       d,
		Period:     p,
		Hours:      hours,
		CreatedAt:  time.Now(),
	}, nil
}

// HasColumn returns true if the task carries an explicit column.
func (t *Task) HasColumn() bool {
	return t.Column != nil
}

// SetColumn stores an explicit column on the task.
func (t *Task) SetColumn(col int) {
	c := col
	t.Column = &c
}

// SlotKey returns a printable identity of the task's slot, used in
// error messages and debug logs.
func (t *Task) SlotKey() string {
	return fmt.Sprintf("%d/%s/%s", t.EmployeeID, t.Date.Format("2006-01-02"), t.Period)
}

// SameSlot reports whether two tasks live in the same half-day slot.
func (t *Task) SameSlot(o *Task) bool {
	if o == nil {
		return false
	}
	return t.EmployeeID == o.EmployeeID &&
		t.Period == o.Period &&
		dateutil.SameDay(t.Date, o.Date)
}

// Items converts slot tasks into the layout engine's input form.
// Tasks without an explicit column are flagged with a negative column
// so Normalize treats them as legacy data.
func Items(tasks []*Task) []slot.Item {
	items := make([]slot.Item, len(tasks))
	for i, t := range tasks {
		col := -1
		if t.Column != nil {
			col = *t.Column
		}
		items[i] = slot.Item{TaskID: t.ID, Hours: t.Hours, Column: col}
	}
	return items
}

// Placements normalizes slot tasks into validated placements.
func Placements(tasks []*Task) []slot.Placement {
	return slot.Normalize(Items(tasks))
}

// Employee is a schedulable person on the board.
type Employee struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NewEmployee creates an Employee with validation.
func NewEmployee(name string) (*Employee, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Employee{Name: name, CreatedAt: time.Now()}, nil
}

// Leave blocks an employee's slot(s) on a date. An empty Period blocks
// the whole day.
type Leave struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
	Period     Period // "" = full day
}

// Covers reports whether the leave blocks the given period.
func (l *Leave) Covers(p Period) bool {
	return l.Period == "" || l.Period == p
}
