package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

// Board holds one week of schedule data for rendering and cursor
// lookups. It is rebuilt from the repository after every mutation.
type Board struct {
	WeekStart time.Time // Monday
	Employees []*task.Employee

	tasks  map[string][]*task.Task
	leaves []*task.Leave
}

// NewBoard indexes a week of tasks and leaves by slot.
func NewBoard(weekStart time.Time, employees []*task.Employee, tasks []*task.Task, leaves []*task.Leave) *Board {
	b := &Board{
		WeekStart: weekStart,
		Employees: employees,
		tasks:     make(map[string][]*task.Task),
		leaves:    leaves,
	}
	for _, t := range tasks {
		key := t.SlotKey()
		b.tasks[key] = append(b.tasks[key], t)
	}
	for _, slotTasks := range b.tasks {
		sort.SliceStable(slotTasks, func(i, j int) bool {
			a, c := slotTasks[i], slotTasks[j]
			switch {
			case a.Column == nil:
				return false
			case c.Column == nil:
				return true
			default:
				return *a.Column < *c.Column
			}
		})
	}
	return b
}

// Day returns the date of the i-th day of the board week (0 = Monday).
func (b *Board) Day(i int) time.Time {
	return b.WeekStart.AddDate(0, 0, i)
}

func boardSlotKey(employeeID int64, date time.Time, period task.Period) string {
	return fmt.Sprintf("%d/%s/%s", employeeID, date.Format("2006-01-02"), period)
}

// SlotTasks returns the tasks in a slot ordered by column.
func (b *Board) SlotTasks(employeeID int64, date time.Time, period task.Period) []*task.Task {
	return b.tasks[boardSlotKey(employeeID, date, period)]
}

// Placements returns the normalized column layout of a slot.
func (b *Board) Placements(employeeID int64, date time.Time, period task.Period) []slot.Placement {
	return task.Placements(b.SlotTasks(employeeID, date, period))
}

// Blocked reports whether a leave covers the slot.
func (b *Board) Blocked(employeeID int64, date time.Time, period task.Period) bool {
	for _, l := range b.leaves {
		if l.EmployeeID == employeeID && dateutil.SameDay(l.Date, date) && l.Covers(period) {
			return true
		}
	}
	return false
}

// TaskAt returns the idx-th task of a slot in column order, or nil.
func (b *Board) TaskAt(employeeID int64, date time.Time, period task.Period, idx int) *task.Task {
	slotTasks := b.SlotTasks(employeeID, date, period)
	if idx < 0 || idx >= len(slotTasks) {
		return nil
	}
	return slotTasks[idx]
}
