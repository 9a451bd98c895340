// Package summary provides shared week summary utilities.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/task"
)

// HoursPerSlot is the bookable hours in one half-day slot.
const HoursPerSlot = 4

// EmployeeStats aggregates one employee's week.
type EmployeeStats struct {
	Employee      *task.Employee
	TaskCount     int
	BookedHours   int
	CapacityHours int // workday slots minus leave
	LeaveSlots    int
}

// Utilization returns booked hours as a percentage of capacity.
// An employee with no capacity left (all leave) reports 0.
func (s EmployeeStats) Utilization() int {
	if s.CapacityHours == 0 {
		return 0
	}
	return s.BookedHours * 100 / s.CapacityHours
}

// WeekSummary holds aggregated week data for all employees.
type WeekSummary struct {
	Start  time.Time
	End    time.Time
	Tasks  []*task.Task
	Leaves []*task.Leave
	Rows   []EmployeeStats
}

// TotalBooked sums booked hours across all employees.
func (w *WeekSummary) TotalBooked() int {
	total := 0
	for _, r := range w.Rows {
		total += r.BookedHours
	}
	return total
}

// BuildWeekSummaryOptions configures the repository-backed summary builder.
type BuildWeekSummaryOptions struct {
	WeekStart time.Time
	Workdays  []string
}

// SummarizeWeek builds per-employee stats from already-loaded data.
// Capacity counts one slot per workday period, minus slots blocked by
// leave; a full-day leave blocks both.
func SummarizeWeek(weekStart time.Time, employees []*task.Employee, tasks []*task.Task, leaves []*task.Leave, workdays []string) *WeekSummary {
	start, end := dateutil.WeekRange(weekStart)

	workdaySet := make(map[time.Weekday]bool)
	for _, name := range workdays {
		if d, ok := dateutil.Weekday(name); ok {
			workdaySet[d] = true
		}
	}
	workdayCount := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if workdaySet[day.Weekday()] {
			workdayCount++
		}
	}

	summary := &WeekSummary{Start: start, End: end}
	for _, t := range tasks {
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		summary.Tasks = append(summary.Tasks, t)
	}
	for _, l := range leaves {
		if l.Date.Before(start) || l.Date.After(end) {
			continue
		}
		summary.Leaves = append(summary.Leaves, l)
	}

	for _, e := range employees {
		row := EmployeeStats{Employee: e}
		for _, t := range summary.Tasks {
			if t.EmployeeID == e.ID {
				row.TaskCount++
				row.BookedHours += t.Hours
			}
		}
		for _, l := range summary.Leaves {
			if l.EmployeeID != e.ID || !workdaySet[l.Date.Weekday()] {
				continue
			}
			if l.Period == "" {
				row.LeaveSlots += 2
			} else {
				row.LeaveSlots++
			}
		}
		row.CapacityHours = (workdayCount*2 - row.LeaveSlots) * HoursPerSlot
		if row.CapacityHours < 0 {
			row.CapacityHours = 0
		}
		summary.Rows = append(summary.Rows, row)
	}

	sort.Slice(summary.Rows, func(i, j int) bool {
		return summary.Rows[i].Employee.Name < summary.Rows[j].Employee.Name
	})

	return summary
}

// BuildWeekSummary loads the week's employees, tasks, and leaves from
// the repository and aggregates them.
func BuildWeekSummary(ctx context.Context, repo task.Repository, opts BuildWeekSummaryOptions) (*WeekSummary, error) {
	weekStart := opts.WeekStart
	if weekStart.IsZero() {
		weekStart = time.Now()
	}

	start, end := dateutil.WeekRange(weekStart)

	employees, err := repo.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching employees: %w", err)
	}
	tasks, err := repo.ListTasksByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	leaves, err := repo.ListLeaves(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching leaves: %w", err)
	}

	return SummarizeWeek(start, employees, tasks, leaves, opts.Workdays), nil
}

// FormatText renders the summary as plain text, one line per employee.
// Used for clipboard export and the week command.
func (w *WeekSummary) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s to %s\n", dateutil.FormatDate(w.Start), dateutil.FormatDate(w.End))
	for _, r := range w.Rows {
		fmt.Fprintf(&b, "%s: %d task(s), %dh booked of %dh (%d%%)",
			r.Employee.Name, r.TaskCount, r.BookedHours, r.CapacityHours, r.Utilization())
		if r.LeaveSlots > 0 {
			fmt.Fprintf(&b, ", %d slot(s) on leave", r.LeaveSlots)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: %dh booked\n", w.TotalBooked())
	return b.String()
}
