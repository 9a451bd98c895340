package roster

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgallego/crewplan/internal/db"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

var allWorkdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func testRoster(t *testing.T) (*Roster, *db.SQLite) {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "roster-test.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, allWorkdays), repo
}

func testEmployee(t *testing.T, repo *db.SQLite, name string) *task.Employee {
	t.Helper()
	e, err := task.NewEmployee(name)
	if err != nil {
		t.Fatalf("NewEmployee() error = %v", err)
	}
	if err := repo.CreateEmployee(context.Background(), e); err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}
	return e
}

// monday is a fixed reference workday.
var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)

func slotColumns(t *testing.T, repo *db.SQLite, employeeID int64, date time.Time, period task.Period) map[string][2]int {
	t.Helper()
	tasks, err := repo.ListSlotTasks(context.Background(), employeeID, date, period)
	if err != nil {
		t.Fatalf("ListSlotTasks() error = %v", err)
	}
	out := make(map[string][2]int, len(tasks))
	for _, tk := range tasks {
		col := -1
		if tk.HasColumn() {
			col = *tk.Column
		}
		out[tk.Title] = [2]int{col, tk.Hours}
	}
	return out
}

func TestAdd_RightmostPlacement(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	first, err := r.Add(ctx, emp.ID, "framing", monday, task.PeriodMorning, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !first.HasColumn() || *first.Column != 2 {
		t.Errorf("first task column = %v, want 2 (rightmost)", first.Column)
	}

	second, err := r.Add(ctx, emp.ID, "wiring", monday, task.PeriodMorning, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if *second.Column != 0 {
		t.Errorf("second task column = %d, want 0", *second.Column)
	}
}

func TestAdd_SlotFull(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	if _, err := r.Add(ctx, emp.ID, "all day", monday, task.PeriodMorning, 4); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, err := r.Add(ctx, emp.ID, "overflow", monday, task.PeriodMorning, 1)
	if !errors.Is(err, task.ErrSlotFull) {
		t.Fatalf("error = %v, want ErrSlotFull", err)
	}
}

func TestAdd_BlockedByLeave(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	leave := &task.Leave{EmployeeID: emp.ID, Date: monday, Period: task.PeriodMorning}
	if err := repo.AddLeave(ctx, leave); err != nil {
		t.Fatalf("AddLeave() error = %v", err)
	}

	if _, err := r.Add(ctx, emp.ID, "blocked", monday, task.PeriodMorning, 1); !errors.Is(err, task.ErrSlotBlocked) {
		t.Fatalf("error = %v, want ErrSlotBlocked", err)
	}
	if _, err := r.Add(ctx, emp.ID, "fine", monday, task.PeriodAfternoon, 1); err != nil {
		t.Fatalf("afternoon Add() error = %v", err)
	}
}

func TestNextOpening_SkipsFullAndBlocked(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	// Monday AM full, Monday PM blocked: first opening is Tuesday AM.
	if _, err := r.Add(ctx, emp.ID, "full", monday, task.PeriodMorning, 4); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	leave := &task.Leave{EmployeeID: emp.ID, Date: monday, Period: task.PeriodAfternoon}
	if err := repo.AddLeave(ctx, leave); err != nil {
		t.Fatalf("AddLeave() error = %v", err)
	}

	opening, err := r.NextOpening(ctx, emp.ID, monday, 2)
	if err != nil {
		t.Fatalf("NextOpening() error = %v", err)
	}
	tuesday := monday.AddDate(0, 0, 1)
	if !opening.Date.Equal(tuesday) || opening.Period != task.PeriodMorning {
		t.Errorf("opening = %s %s, want %s am",
			opening.Date.Format("2006-01-02"), opening.Period, tuesday.Format("2006-01-02"))
	}
}

func TestNextOpening_SkipsWeekend(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	saturday := monday.AddDate(0, 0, 5)
	opening, err := r.NextOpening(ctx, emp.ID, saturday, 1)
	if err != nil {
		t.Fatalf("NextOpening() error = %v", err)
	}
	if opening.Date.Weekday() != time.Monday {
		t.Errorf("opening weekday = %s, want Monday", opening.Date.Weekday())
	}
}

func TestAddAuto(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	if _, err := r.Add(ctx, emp.ID, "morning block", monday, task.PeriodMorning, 4); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	tk, err := r.AddAuto(ctx, emp.ID, "auto", monday, 3)
	if err != nil {
		t.Fatalf("AddAuto() error = %v", err)
	}
	if tk.Period != task.PeriodAfternoon || !tk.Date.Equal(monday) {
		t.Errorf("auto task landed at %s %s, want monday pm", tk.Date.Format("2006-01-02"), tk.Period)
	}
}

func TestDrop_CompressesSiblings(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	// Occupy columns 1-2, then drop a 2-hour task at column 1. Neither
	// group fits around landing 1, so the drop lands one column left
	// and the sibling slides right.
	sibling, err := r.Add(ctx, emp.ID, "sibling", monday, task.PeriodMorning, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: sibling.ID, Column: 1, Hours: 2}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}

	mover, err := r.Add(ctx, emp.ID, "mover", monday, task.PeriodAfternoon, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	outcome, err := r.Drop(ctx, mover.ID, emp.ID, monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}

	cols := slotColumns(t, repo, emp.ID, monday, task.PeriodMorning)
	if cols["mover"] != [2]int{0, 2} {
		t.Errorf("mover = %v, want column 0", cols["mover"])
	}
	if cols["sibling"] != [2]int{2, 2} {
		t.Errorf("sibling = %v, want pushed to column 2", cols["sibling"])
	}
	if len(outcome.Moved) != 1 || outcome.Moved[0] != (slot.Delta{TaskID: sibling.ID, From: 1, To: 2}) {
		t.Errorf("Moved = %+v, want sibling shifted 1 to 2", outcome.Moved)
	}
}

func TestDrop_RejectedLeavesEverythingUntouched(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	if _, err := r.Add(ctx, emp.ID, "am full", monday, task.PeriodMorning, 4); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	mover, err := r.Add(ctx, emp.ID, "mover", monday, task.PeriodAfternoon, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	_, err = r.Drop(ctx, mover.ID, emp.ID, monday, task.PeriodMorning, 0)
	if !errors.Is(err, task.ErrSlotFull) {
		t.Fatalf("error = %v, want ErrSlotFull", err)
	}

	got, err := repo.GetTask(ctx, mover.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Period != task.PeriodAfternoon {
		t.Errorf("mover period = %s, want pm (unchanged)", got.Period)
	}
}

func TestDrop_AcrossSlotsCompactsSource(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	left, err := r.Add(ctx, emp.ID, "left", monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: left.ID, Column: 0, Hours: 1}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}
	mid, err := r.Add(ctx, emp.ID, "mid", monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: mid.ID, Column: 1, Hours: 1}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}
	tail, err := r.Add(ctx, emp.ID, "tail", monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Moving the middle task away must close the gap it leaves.
	if _, err := r.Drop(ctx, mid.ID, emp.ID, monday, task.PeriodAfternoon, 0); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}

	cols := slotColumns(t, repo, emp.ID, monday, task.PeriodMorning)
	if cols["left"] != [2]int{0, 1} {
		t.Errorf("left = %v", cols["left"])
	}
	if cols["tail"] != [2]int{1, 1} {
		t.Errorf("tail = %v, want compacted to column 1", cols["tail"])
	}
	_ = tail

	pm := slotColumns(t, repo, emp.ID, monday, task.PeriodAfternoon)
	if pm["mid"] != [2]int{0, 1} {
		t.Errorf("mid = %v, want column 0 in pm", pm["mid"])
	}
}

func TestResize_GrowPushesSibling(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	subject, err := r.Add(ctx, emp.ID, "subject", monday, task.PeriodMorning, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: subject.ID, Column: 0, Hours: 2}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}
	sibling, err := r.Add(ctx, emp.ID, "sibling", monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: sibling.ID, Column: 2, Hours: 1}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}

	outcome, err := r.Resize(ctx, subject.ID, slot.EdgeRight, 1)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if outcome.Task.Hours != 3 {
		t.Errorf("Hours = %d, want 3", outcome.Task.Hours)
	}

	cols := slotColumns(t, repo, emp.ID, monday, task.PeriodMorning)
	if cols["subject"] != [2]int{0, 3} {
		t.Errorf("subject = %v, want columns 0-2", cols["subject"])
	}
	if cols["sibling"] != [2]int{3, 1} {
		t.Errorf("sibling = %v, want pushed to column 3", cols["sibling"])
	}
}

func TestResize_BlockedRevertsCleanly(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	subject, err := r.Add(ctx, emp.ID, "subject", monday, task.PeriodMorning, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: subject.ID, Column: 0, Hours: 2}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}
	if _, err := r.Add(ctx, emp.ID, "wall", monday, task.PeriodMorning, 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Slot is now full; growing must fail without changes.
	_, err = r.Resize(ctx, subject.ID, slot.EdgeRight, 1)
	if !errors.Is(err, task.ErrSlotFull) {
		t.Fatalf("error = %v, want ErrSlotFull", err)
	}

	got, err := repo.GetTask(ctx, subject.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Hours != 2 || *got.Column != 0 {
		t.Errorf("subject = %d hours at %d, want unchanged 2 at 0", got.Hours, *got.Column)
	}
}

func TestResize_ShrinkNeverMovesSiblings(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	subject, err := r.Add(ctx, emp.ID, "subject", monday, task.PeriodMorning, 3)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: subject.ID, Column: 0, Hours: 3}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}
	if _, err := r.Add(ctx, emp.ID, "sibling", monday, task.PeriodMorning, 1); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	outcome, err := r.Resize(ctx, subject.ID, slot.EdgeRight, -1)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if outcome.Task.Hours != 2 {
		t.Errorf("Hours = %d, want 2", outcome.Task.Hours)
	}
	if len(outcome.Moved) != 0 {
		t.Errorf("Moved = %+v, want none", outcome.Moved)
	}

	cols := slotColumns(t, repo, emp.ID, monday, task.PeriodMorning)
	if cols["sibling"] != [2]int{3, 1} {
		t.Errorf("sibling = %v, want untouched", cols["sibling"])
	}
}

func TestResize_ClampedToNoop(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	subject, err := r.Add(ctx, emp.ID, "subject", monday, task.PeriodMorning, 4)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	outcome, err := r.Resize(ctx, subject.ID, slot.EdgeRight, 2)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if outcome.Task.Hours != 4 || len(outcome.Moved) != 0 {
		t.Errorf("outcome = %+v, want untouched 4-hour task", outcome.Task)
	}
}

func TestRemove_CompactsSlot(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	a, err := r.Add(ctx, emp.ID, "a", monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: a.ID, Column: 0, Hours: 1}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}
	b, err := r.Add(ctx, emp.ID, "b", monday, task.PeriodMorning, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{{TaskID: b.ID, Column: 2, Hours: 1}}); err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}

	if err := r.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	cols := slotColumns(t, repo, emp.ID, monday, task.PeriodMorning)
	if cols["b"] != [2]int{0, 1} {
		t.Errorf("b = %v, want compacted to column 0", cols["b"])
	}
}

func TestAuthoritativeMigratesLegacyColumns(t *testing.T) {
	r, repo := testRoster(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	// Insert rows without columns, bypassing the roster.
	for _, title := range []string{"one", "two", "three"} {
		tk, err := task.New(emp.ID, title, "2026-09-07", "am", 1)
		if err != nil {
			t.Fatalf("task.New() error = %v", err)
		}
		if err := repo.CreateTask(ctx, tk); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}

	// Any roster read of the slot persists the derived layout.
	if _, err := r.NextOpening(ctx, emp.ID, monday, 1); err != nil {
		t.Fatalf("NextOpening() error = %v", err)
	}

	cols := slotColumns(t, repo, emp.ID, monday, task.PeriodMorning)
	want := map[string][2]int{"one": {0, 1}, "two": {1, 1}, "three": {2, 2}}
	for title, w := range want {
		if cols[title] != w {
			t.Errorf("%s = %v, want %v", title, cols[title], w)
		}
	}
}
