package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

// resolveEmployee finds an employee by numeric ID or case-insensitive name.
func (a *App) resolveEmployee(ctx context.Context, ref string) (*task.Employee, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.repo.GetEmployee(ctx, id)
	}

	employees, err := a.repo.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	for _, e := range employees {
		if strings.EqualFold(e.Name, ref) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", task.ErrEmployeeNotFound, ref)
}

// slotBar renders a slot's four hour-columns, marking the given task's
// span with '#', its siblings with '+', and free columns with '.'.
func slotBar(tasks []*task.Task, subjectID int64) string {
	cells := []byte("....")
	for _, p := range slot.Normalize(task.Items(tasks)) {
		mark := byte('+')
		if p.TaskID == subjectID {
			mark = '#'
		}
		for c := p.Start; c < p.End() && c < slot.Columns; c++ {
			cells[c] = mark
		}
	}
	return "[" + string(cells) + "]"
}

// taskLine renders one task row for list output.
func taskLine(t *task.Task, siblings []*task.Task) string {
	return fmt.Sprintf("  #%-3d %s %s %s %dh  %s",
		t.ID,
		t.Date.Format("2006-01-02"),
		t.Period.Label(),
		slotBar(siblings, t.ID),
		t.Hours,
		formatTask(t.Title),
	)
}

// groupBySlot indexes tasks by employee, date, and period.
func groupBySlot(tasks []*task.Task) map[string][]*task.Task {
	bySlot := make(map[string][]*task.Task)
	for _, t := range tasks {
		bySlot[t.SlotKey()] = append(bySlot[t.SlotKey()], t)
	}
	return bySlot
}
