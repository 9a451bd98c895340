// Package roster coordinates slot mutations against the repository.
// Every mutation re-reads the affected slot from storage immediately
// before running the layout engine, so concurrent edits from another
// process are always folded in rather than clobbered.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

// ErrNoOpening means no slot within the search horizon could fit the task.
var ErrNoOpening = errors.New("no opening found")

// searchHorizonDays bounds the forward scan of NextOpening.
const searchHorizonDays = 60

// Roster is the single write path for task placement. UIs never call
// the layout engine directly.
type Roster struct {
	repo     task.Repository
	workdays map[time.Weekday]bool
}

// New creates a Roster over the repository. Workday names that are not
// recognized are ignored.
func New(repo task.Repository, workdays []string) *Roster {
	wd := make(map[time.Weekday]bool)
	for _, name := range workdays {
		if d, ok := dateutil.Weekday(strings.ToLower(name)); ok {
			wd[d] = true
		}
	}
	return &Roster{repo: repo, workdays: wd}
}

// IsWorkday reports whether the date falls on a configured workday.
func (r *Roster) IsWorkday(t time.Time) bool {
	return r.workdays[t.Weekday()]
}

// Outcome describes a committed mutation: the task as persisted and
// the sibling tasks that had to shift to make room.
type Outcome struct {
	Task  *task.Task
	Moved []slot.Delta
}

// Opening is a slot position that can fit a task.
type Opening struct {
	Date   time.Time
	Period task.Period
	Column int
}

// Add places a new task in the given slot at the rightmost free run.
func (r *Roster) Add(ctx context.Context, employeeID int64, title string, date time.Time, period task.Period, hours int) (*task.Task, error) {
	t, err := task.New(employeeID, title, dateutil.FormatDate(date), string(period), hours)
	if err != nil {
		return nil, err
	}
	if err := r.checkBlocked(ctx, employeeID, date, period); err != nil {
		return nil, err
	}

	placements, err := r.authoritative(ctx, employeeID, date, period)
	if err != nil {
		return nil, err
	}

	start, err := slot.FindPlacement(placements, hours, slot.PreferRightmost())
	if err != nil {
		return nil, err
	}
	if start == slot.NoPlacement {
		return nil, fmt.Errorf("%w: %s %s", task.ErrSlotFull, dateutil.FormatDate(date), period.Label())
	}

	t.SetColumn(start)
	if err := r.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddAuto places a new task in the first opening at or after the given
// date, scanning workdays morning before afternoon.
func (r *Roster) AddAuto(ctx context.Context, employeeID int64, title string, from time.Time, hours int) (*task.Task, error) {
	opening, err := r.NextOpening(ctx, employeeID, from, hours)
	if err != nil {
		return nil, err
	}
	return r.Add(ctx, employeeID, title, opening.Date, opening.Period, hours)
}

// NextOpening scans forward from the given date for the first slot
// that can fit hours contiguous columns. Non-workdays and slots
// blocked by leave are skipped.
func (r *Roster) NextOpening(ctx context.Context, employeeID int64, from time.Time, hours int) (Opening, error) {
	day := dateutil.TruncateToDay(from)
	for i := 0; i < searchHorizonDays; i++ {
		if !r.IsWorkday(day) {
			day = day.AddDate(0, 0, 1)
			continue
		}
		for _, period := range []task.Period{task.PeriodMorning, task.PeriodAfternoon} {
			blocked, err := r.repo.IsBlocked(ctx, employeeID, day, period)
			if err != nil {
				return Opening{}, err
			}
			if blocked {
				continue
			}
			placements, err := r.authoritative(ctx, employeeID, day, period)
			if err != nil {
				return Opening{}, err
			}
			start, err := slot.FindPlacement(placements, hours, slot.PreferRightmost())
			if err != nil {
				return Opening{}, err
			}
			if start != slot.NoPlacement {
				return Opening{Date: day, Period: period, Column: start}, nil
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return Opening{}, ErrNoOpening
}

// Drop moves a task into the given slot, aiming at the target column.
// Siblings already in the slot are shifted as little as possible to
// make room; when the task cannot fit the drop is rejected and nothing
// is persisted.
func (r *Roster) Drop(ctx context.Context, taskID, employeeID int64, date time.Time, period task.Period, target int) (Outcome, error) {
	t, err := r.repo.GetTask(ctx, taskID)
	if err != nil {
		return Outcome{}, err
	}
	if err := r.checkBlocked(ctx, employeeID, date, period); err != nil {
		return Outcome{}, err
	}

	sameSlot := t.EmployeeID == employeeID && dateutil.SameDay(t.Date, date) && t.Period == period

	placements, err := r.authoritative(ctx, employeeID, date, period)
	if err != nil {
		return Outcome{}, err
	}

	incoming := slot.Placement{TaskID: t.ID, Start: 0, Span: t.Hours}
	if t.HasColumn() {
		incoming.Start = *t.Column
	}
	result, err := slot.Rearrange(placements, incoming, target)
	if err != nil {
		return Outcome{}, err
	}
	if !result.CanPlace {
		return Outcome{}, fmt.Errorf("%w: %s %s", task.ErrSlotFull, dateutil.FormatDate(date), period.Label())
	}

	subjectStart, siblings := splitArrangement(result.Arrangement, t.ID)

	if sameSlot {
		updates := placementUpdates(result.Arrangement)
		if err := r.repo.BatchUpdatePlacements(ctx, updates); err != nil {
			return Outcome{}, err
		}
	} else {
		// Shift destination siblings first so the slot is open when the
		// subject arrives, then compact the slot it left behind.
		if err := r.repo.BatchUpdatePlacements(ctx, placementUpdates(siblings)); err != nil {
			return Outcome{}, err
		}
		if err := r.repo.MoveTask(ctx, t.ID, employeeID, date, period, subjectStart, t.Hours); err != nil {
			return Outcome{}, err
		}
		if err := r.compact(ctx, t.EmployeeID, t.Date, t.Period); err != nil {
			return Outcome{}, err
		}
	}

	moved, err := r.repo.GetTask(ctx, t.ID)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Task: moved, Moved: result.Moved}, nil
}

// Resize changes a task's hours by dragging one of its edges. The
// preview is clamped to the slot bounds; when growing collides with a
// sibling the sibling is pushed aside, and an impossible resize leaves
// everything untouched.
func (r *Roster) Resize(ctx context.Context, taskID int64, edge slot.Edge, delta int) (Outcome, error) {
	t, err := r.repo.GetTask(ctx, taskID)
	if err != nil {
		return Outcome{}, err
	}

	placements, err := r.authoritative(ctx, t.EmployeeID, t.Date, t.Period)
	if err != nil {
		return Outcome{}, err
	}

	current := slot.Placement{TaskID: t.ID, Start: 0, Span: t.Hours}
	for _, p := range placements {
		if p.TaskID == t.ID {
			current = p
		}
	}

	preview := slot.ProposeResize(current, edge, delta)
	if preview == current {
		return Outcome{Task: t}, nil
	}

	result, err := slot.Rearrange(placements, preview, preview.Start)
	if err != nil {
		return Outcome{}, err
	}
	if !result.CanPlace {
		return Outcome{}, fmt.Errorf("%w: %s %s", task.ErrSlotFull, dateutil.FormatDate(t.Date), t.Period.Label())
	}

	if err := r.repo.BatchUpdatePlacements(ctx, placementUpdates(result.Arrangement)); err != nil {
		return Outcome{}, err
	}

	resized, err := r.repo.GetTask(ctx, t.ID)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Task: resized, Moved: result.Moved}, nil
}

// Remove deletes a task and compacts the slot it occupied.
func (r *Roster) Remove(ctx context.Context, taskID int64) error {
	t, err := r.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := r.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	return r.compact(ctx, t.EmployeeID, t.Date, t.Period)
}

// compact closes gaps in a slot after a task left it.
func (r *Roster) compact(ctx context.Context, employeeID int64, date time.Time, period task.Period) error {
	placements, err := r.authoritative(ctx, employeeID, date, period)
	if err != nil {
		return err
	}
	compacted := slot.Reflow(placements)
	updates := changedUpdates(placements, compacted)
	if len(updates) == 0 {
		return nil
	}
	return r.repo.BatchUpdatePlacements(ctx, updates)
}

// authoritative reads the slot's tasks from storage and normalizes
// them into placements. Tasks stored without a column are assigned one
// here and the assignment is persisted, so legacy rows migrate the
// first time their slot is touched.
func (r *Roster) authoritative(ctx context.Context, employeeID int64, date time.Time, period task.Period) ([]slot.Placement, error) {
	tasks, err := r.repo.ListSlotTasks(ctx, employeeID, date, period)
	if err != nil {
		return nil, err
	}

	placements := slot.Normalize(task.Items(tasks))

	var migrations []task.PlacementUpdate
	byID := make(map[int64]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	for _, p := range placements {
		t := byID[p.TaskID]
		if t == nil {
			continue
		}
		if !t.HasColumn() || *t.Column != p.Start || t.Hours != p.Span {
			migrations = append(migrations, task.PlacementUpdate{TaskID: p.TaskID, Column: p.Start, Hours: p.Span})
		}
	}
	if len(migrations) > 0 {
		if err := r.repo.BatchUpdatePlacements(ctx, migrations); err != nil {
			return nil, fmt.Errorf("migrating legacy columns: %w", err)
		}
	}
	return placements, nil
}

func (r *Roster) checkBlocked(ctx context.Context, employeeID int64, date time.Time, period task.Period) error {
	blocked, err := r.repo.IsBlocked(ctx, employeeID, date, period)
	if err != nil {
		return err
	}
	if blocked {
		return fmt.Errorf("%w: %s %s", task.ErrSlotBlocked, dateutil.FormatDate(date), period.Label())
	}
	return nil
}

// splitArrangement separates the subject's start column from its
// siblings' placements.
func splitArrangement(arrangement []slot.Placement, subjectID int64) (int, []slot.Placement) {
	start := 0
	siblings := make([]slot.Placement, 0, len(arrangement))
	for _, p := range arrangement {
		if p.TaskID == subjectID {
			start = p.Start
			continue
		}
		siblings = append(siblings, p)
	}
	return start, siblings
}

func placementUpdates(placements []slot.Placement) []task.PlacementUpdate {
	updates := make([]task.PlacementUpdate, 0, len(placements))
	for _, p := range placements {
		updates = append(updates, task.PlacementUpdate{TaskID: p.TaskID, Column: p.Start, Hours: p.Span})
	}
	return updates
}

// changedUpdates returns updates only for placements whose position
// differs between before and after.
func changedUpdates(before, after []slot.Placement) []task.PlacementUpdate {
	prev := make(map[int64]slot.Placement, len(before))
	for _, p := range before {
		prev[p.TaskID] = p
	}
	var updates []task.PlacementUpdate
	for _, p := range after {
		if old, ok := prev[p.TaskID]; ok && old == p {
			continue
		}
		updates = append(updates, task.PlacementUpdate{TaskID: p.TaskID, Column: p.Start, Hours: p.Span})
	}
	return updates
}
