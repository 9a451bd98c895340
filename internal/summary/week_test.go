package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/mgallego/crewplan/internal/task"
)

var workweek = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func TestSummarizeWeek(t *testing.T) {
	wednesday := time.Date(2026, 9, 9, 0, 0, 0, 0, time.Local)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	sunday := time.Date(2026, 9, 13, 0, 0, 0, 0, time.Local)

	ana := &task.Employee{ID: 1, Name: "Ana"}
	bo := &task.Employee{ID: 2, Name: "Bo"}

	tasks := []*task.Task{
		{ID: 1, EmployeeID: ana.ID, Title: "framing", Date: monday, Period: task.PeriodMorning, Hours: 3},
		{ID: 2, EmployeeID: ana.ID, Title: "wiring", Date: wednesday, Period: task.PeriodAfternoon, Hours: 2},
		{ID: 3, EmployeeID: bo.ID, Title: "painting", Date: monday, Period: task.PeriodMorning, Hours: 4},
		// Next week, must be filtered out.
		{ID: 4, EmployeeID: ana.ID, Title: "next week", Date: sunday.AddDate(0, 0, 1), Period: task.PeriodMorning, Hours: 4},
	}

	got := SummarizeWeek(wednesday, []*task.Employee{ana, bo}, tasks, nil, workweek)

	if !got.Start.Equal(monday) || !got.End.Equal(sunday) {
		t.Errorf("range = %v to %v, want monday to sunday", got.Start, got.End)
	}
	if len(got.Tasks) != 3 {
		t.Fatalf("got %d tasks in week, want 3", len(got.Tasks))
	}
	if len(got.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(got.Rows))
	}

	anaRow := got.Rows[0]
	if anaRow.Employee.Name != "Ana" {
		t.Fatalf("rows not sorted by name: %s first", anaRow.Employee.Name)
	}
	if anaRow.TaskCount != 2 || anaRow.BookedHours != 5 {
		t.Errorf("Ana = %d tasks %dh, want 2 tasks 5h", anaRow.TaskCount, anaRow.BookedHours)
	}
	// 5 workdays, two 4-hour slots each.
	if anaRow.CapacityHours != 40 {
		t.Errorf("Ana capacity = %d, want 40", anaRow.CapacityHours)
	}
	if anaRow.Utilization() != 12 {
		t.Errorf("Ana utilization = %d%%, want 12%%", anaRow.Utilization())
	}

	if got.TotalBooked() != 9 {
		t.Errorf("TotalBooked() = %d, want 9", got.TotalBooked())
	}
}

func TestSummarizeWeek_LeaveReducesCapacity(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	ana := &task.Employee{ID: 1, Name: "Ana"}

	leaves := []*task.Leave{
		{ID: 1, EmployeeID: ana.ID, Date: monday, Period: task.PeriodMorning},
		{ID: 2, EmployeeID: ana.ID, Date: monday.AddDate(0, 0, 1)}, // full day
	}

	got := SummarizeWeek(monday, []*task.Employee{ana}, nil, leaves, workweek)

	row := got.Rows[0]
	if row.LeaveSlots != 3 {
		t.Errorf("LeaveSlots = %d, want 3", row.LeaveSlots)
	}
	if row.CapacityHours != 28 {
		t.Errorf("CapacityHours = %d, want 28", row.CapacityHours)
	}
}

func TestSummarizeWeek_WeekendLeaveIgnored(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	saturday := monday.AddDate(0, 0, 5)
	ana := &task.Employee{ID: 1, Name: "Ana"}

	leaves := []*task.Leave{{ID: 1, EmployeeID: ana.ID, Date: saturday}}

	got := SummarizeWeek(monday, []*task.Employee{ana}, nil, leaves, workweek)
	if got.Rows[0].LeaveSlots != 0 {
		t.Errorf("LeaveSlots = %d, want 0 for weekend leave", got.Rows[0].LeaveSlots)
	}
}

func TestUtilization_ZeroCapacity(t *testing.T) {
	s := EmployeeStats{BookedHours: 4, CapacityHours: 0}
	if s.Utilization() != 0 {
		t.Errorf("Utilization() = %d, want 0", s.Utilization())
	}
}

func TestFormatText(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	ana := &task.Employee{ID: 1, Name: "Ana"}
	tasks := []*task.Task{
		{ID: 1, EmployeeID: ana.ID, Title: "framing", Date: monday, Period: task.PeriodMorning, Hours: 4},
	}

	got := SummarizeWeek(monday, []*task.Employee{ana}, tasks, nil, workweek).FormatText()

	for _, want := range []string{"Week 2026-09-07 to 2026-09-13", "Ana: 1 task(s), 4h booked of 40h (10%)", "Total: 4h booked"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatText() missing %q in:\n%s", want, got)
		}
	}
}
