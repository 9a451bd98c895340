package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgallego/crewplan/internal/task"
)

func testRepo(t *testing.T) *SQLite {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "crewplan-test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testEmployee(t *testing.T, repo *SQLite, name string) *task.Employee {
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

func testTask(t *testing.T, repo *SQLite, employeeID int64, title, date, period string, hours, column int) *task.Task {
	t.Helper()
	tk, err := task.New(employeeID, title, date, period, hours)
	if err != nil {
		t.Fatalf("task.New() error = %v", err)
	}
	if column >= 0 {
		tk.SetColumn(column)
	}
	if err := repo.CreateTask(context.Background(), tk); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	return tk
}

func TestCreateAndGetTask(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	created := testTask(t, repo, emp.ID, "install cabinets", "2026-09-07", "am", 2, 1)
	if created.ID == 0 {
		t.Fatal("CreateTask did not assign an ID")
	}

	got, err := repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Title != "install cabinets" || got.Hours != 2 || got.Period != task.PeriodMorning {
		t.Errorf("GetTask() = %+v", got)
	}
	if !got.HasColumn() || *got.Column != 1 {
		t.Errorf("Column = %v, want 1", got.Column)
	}
	if got.Date.Format("2006-01-02") != "2026-09-07" {
		t.Errorf("Date = %v", got.Date)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	repo := testRepo(t)
	if _, err := repo.GetTask(context.Background(), 999); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("error = %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTask(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")
	tk := testTask(t, repo, emp.ID, "demo", "2026-09-07", "am", 1, 0)

	if err := repo.DeleteTask(ctx, tk.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := repo.GetTask(ctx, tk.ID); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("after delete: error = %v, want ErrTaskNotFound", err)
	}
	if err := repo.DeleteTask(ctx, tk.ID); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("double delete: error = %v, want ErrTaskNotFound", err)
	}
}

func TestListSlotTasks_OrderAndIsolation(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	ana := testEmployee(t, repo, "Ana")
	bo := testEmployee(t, repo, "Bo")

	// Out of column order on purpose; legacy row last.
	testTask(t, repo, ana.ID, "second", "2026-09-07", "am", 1, 2)
	testTask(t, repo, ana.ID, "first", "2026-09-07", "am", 2, 0)
	legacy := testTask(t, repo, ana.ID, "legacy", "2026-09-07", "am", 1, -1)

	// Same day different slot/employee must not leak in.
	testTask(t, repo, ana.ID, "afternoon", "2026-09-07", "pm", 1, 0)
	testTask(t, repo, bo.ID, "other employee", "2026-09-07", "am", 1, 0)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	got, err := repo.ListSlotTasks(ctx, ana.ID, date, task.PeriodMorning)
	if err != nil {
		t.Fatalf("ListSlotTasks() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d tasks, want 3", len(got))
	}
	if got[0].Title != "first" || got[1].Title != "second" || got[2].ID != legacy.ID {
		t.Errorf("order = %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}
	if got[2].HasColumn() {
		t.Error("legacy task should round-trip without a column")
	}
}

func TestBatchUpdatePlacements(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	a := testTask(t, repo, emp.ID, "a", "2026-09-07", "am", 2, 0)
	b := testTask(t, repo, emp.ID, "b", "2026-09-07", "am", 1, 2)

	err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{
		{TaskID: a.ID, Column: 1, Hours: 2},
		{TaskID: b.ID, Column: 3, Hours: 1},
	})
	if err != nil {
		t.Fatalf("BatchUpdatePlacements() error = %v", err)
	}

	got, err := repo.GetTask(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if *got.Column != 1 {
		t.Errorf("a.Column = %d, want 1", *got.Column)
	}
}

func TestBatchUpdatePlacements_RejectsOverlap(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	a := testTask(t, repo, emp.ID, "a", "2026-09-07", "am", 2, 0)
	b := testTask(t, repo, emp.ID, "b", "2026-09-07", "am", 2, 2)

	err := repo.BatchUpdatePlacements(ctx, []task.PlacementUpdate{
		{TaskID: a.ID, Column: 1, Hours: 2}, // would overlap b at column 2
	})
	if !errors.Is(err, task.ErrSlotOverlap) {
		t.Fatalf("error = %v, want ErrSlotOverlap", err)
	}

	// Nothing applied.
	got, err := repo.GetTask(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if *got.Column != 0 {
		t.Errorf("a.Column = %d, want unchanged 0", *got.Column)
	}
	_ = b
}

func TestMoveTask(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	ana := testEmployee(t, repo, "Ana")
	bo := testEmployee(t, repo, "Bo")

	tk := testTask(t, repo, ana.ID, "door frames", "2026-09-07", "am", 2, 0)
	date := time.Date(2026, 9, 8, 0, 0, 0, 0, time.Local)

	if err := repo.MoveTask(ctx, tk.ID, bo.ID, date, task.PeriodAfternoon, 2, 2); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}

	got, err := repo.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.EmployeeID != bo.ID || got.Period != task.PeriodAfternoon || *got.Column != 2 {
		t.Errorf("after move: %+v", got)
	}
}

func TestMoveTask_RejectsOverlapInDestination(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	testTask(t, repo, emp.ID, "occupant", "2026-09-08", "am", 4, 0)
	tk := testTask(t, repo, emp.ID, "mover", "2026-09-07", "am", 1, 0)

	date := time.Date(2026, 9, 8, 0, 0, 0, 0, time.Local)
	err := repo.MoveTask(ctx, tk.ID, emp.ID, date, task.PeriodMorning, 0, 1)
	if !errors.Is(err, task.ErrSlotOverlap) {
		t.Fatalf("error = %v, want ErrSlotOverlap", err)
	}

	got, err := repo.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Date.Format("2006-01-02") != "2026-09-07" {
		t.Errorf("task moved despite overlap: %+v", got)
	}
}

func TestLeaves(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)

	l := &task.Leave{EmployeeID: emp.ID, Date: date, Period: task.PeriodMorning}
	if err := repo.AddLeave(ctx, l); err != nil {
		t.Fatalf("AddLeave() error = %v", err)
	}

	blocked, err := repo.IsBlocked(ctx, emp.ID, date, task.PeriodMorning)
	if err != nil {
		t.Fatalf("IsBlocked() error = %v", err)
	}
	if !blocked {
		t.Error("morning should be blocked")
	}

	blocked, err = repo.IsBlocked(ctx, emp.ID, date, task.PeriodAfternoon)
	if err != nil {
		t.Fatalf("IsBlocked() error = %v", err)
	}
	if blocked {
		t.Error("afternoon should not be blocked by a morning leave")
	}

	// Full-day leave blocks both periods.
	full := &task.Leave{EmployeeID: emp.ID, Date: date.AddDate(0, 0, 1)}
	if err := repo.AddLeave(ctx, full); err != nil {
		t.Fatalf("AddLeave() error = %v", err)
	}
	blocked, err = repo.IsBlocked(ctx, emp.ID, full.Date, task.PeriodAfternoon)
	if err != nil {
		t.Fatalf("IsBlocked() error = %v", err)
	}
	if !blocked {
		t.Error("full-day leave should block the afternoon")
	}

	if err := repo.RemoveLeave(ctx, l.ID); err != nil {
		t.Fatalf("RemoveLeave() error = %v", err)
	}
	blocked, err = repo.IsBlocked(ctx, emp.ID, date, task.PeriodMorning)
	if err != nil {
		t.Fatalf("IsBlocked() error = %v", err)
	}
	if blocked {
		t.Error("morning should be free after leave removal")
	}
}

func TestListTasksByDateRange(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	emp := testEmployee(t, repo, "Ana")

	testTask(t, repo, emp.ID, "inside", "2026-09-07", "am", 1, 0)
	testTask(t, repo, emp.ID, "edge", "2026-09-13", "pm", 1, 0)
	testTask(t, repo, emp.ID, "outside", "2026-09-14", "am", 1, 0)

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 9, 13, 0, 0, 0, 0, time.Local)

	got, err := repo.ListTasksByDateRange(ctx, start, end)
	if err != nil {
		t.Fatalf("ListTasksByDateRange() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
}

func TestEmployees(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	testEmployee(t, repo, "Zoe")
	testEmployee(t, repo, "Ana")

	list, err := repo.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "Ana" || list[1].Name != "Zoe" {
		t.Errorf("ListEmployees() order wrong: %+v", list)
	}

	if _, err := repo.GetEmployee(ctx, 999); !errors.Is(err, task.ErrEmployeeNotFound) {
		t.Errorf("error = %v, want ErrEmployeeNotFound", err)
	}
}
