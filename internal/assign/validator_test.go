package assign

import (
	"strings"
	"testing"
	"time"

	"github.com/mgallego/crewplan/internal/llm"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

var now = time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)

func testValidator(blocked map[string]bool, occupied map[string][]slot.Placement) *Validator {
	employees := []*task.Employee{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Bo"},
	}
	return NewValidator(now, employees, blocked, occupied)
}

func proposal(employee, date, period string, hours int) llm.ProposedAssignment {
	return llm.ProposedAssignment{
		Title:    "task",
		Employee: employee,
		Date:     date,
		Period:   period,
		Hours:    hours,
	}
}

func TestValidate_AcceptsGoodProposals(t *testing.T) {
	v := testValidator(nil, nil)

	result := v.Validate([]llm.ProposedAssignment{
		proposal("Ana", "2026-09-08", "am", 4),
		proposal("bo", "2026-09-08", "pm", 2), // name matching is case-insensitive
	})
	if !result.Valid {
		t.Fatalf("Validate() errors = %+v, want none", result.Errors)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	v := testValidator(nil, nil)

	tests := []struct {
		name      string
		proposal  llm.ProposedAssignment
		wantField string
	}{
		{"unknown employee", proposal("Carol", "2026-09-08", "am", 2), "employee"},
		{"bad date format", proposal("Ana", "08/09/2026", "am", 2), "date"},
		{"past date", proposal("Ana", "2026-09-01", "am", 2), "date"},
		{"bad period", proposal("Ana", "2026-09-08", "evening", 2), "period"},
		{"zero hours", proposal("Ana", "2026-09-08", "am", 0), "hours"},
		{"too many hours", proposal("Ana", "2026-09-08", "am", 5), "hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate([]llm.ProposedAssignment{tt.proposal})
			if result.Valid {
				t.Fatal("Validate() accepted invalid proposal")
			}
			found := false
			for _, e := range result.Errors {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %+v, want field %q", result.Errors, tt.wantField)
			}
		})
	}
}

func TestValidate_RejectsBlockedSlot(t *testing.T) {
	blocked := map[string]bool{SlotKey(1, "2026-09-08", "am"): true}
	v := testValidator(blocked, nil)

	result := v.Validate([]llm.ProposedAssignment{proposal("Ana", "2026-09-08", "am", 1)})
	if result.Valid {
		t.Fatal("Validate() accepted proposal into blocked slot")
	}
	if result.Errors[0].Field != "capacity" || !strings.Contains(result.Errors[0].Message, "leave") {
		t.Errorf("error = %+v, want leave capacity error", result.Errors[0])
	}
}

func TestValidate_RejectsOverfullSlot(t *testing.T) {
	occupied := map[string][]slot.Placement{
		SlotKey(1, "2026-09-08", "am"): {{TaskID: 10, Start: 0, Span: 3}},
	}
	v := testValidator(nil, occupied)

	result := v.Validate([]llm.ProposedAssignment{proposal("Ana", "2026-09-08", "am", 2)})
	if result.Valid {
		t.Fatal("Validate() accepted 2h into a slot with 1h free")
	}
	if result.Errors[0].Field != "capacity" {
		t.Errorf("error field = %s, want capacity", result.Errors[0].Field)
	}
}

func TestValidate_BatchProposalsCompeteForCapacity(t *testing.T) {
	v := testValidator(nil, nil)

	// 3h + 2h exceed one slot even though each fits alone.
	result := v.Validate([]llm.ProposedAssignment{
		proposal("Ana", "2026-09-08", "am", 3),
		proposal("Ana", "2026-09-08", "am", 2),
	})
	if result.Valid {
		t.Fatal("Validate() accepted 5h into one slot")
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 1 {
		t.Errorf("errors = %+v, want one error on index 1", result.Errors)
	}
}

func TestValidate_BatchFitsAcrossSlots(t *testing.T) {
	v := testValidator(nil, nil)

	result := v.Validate([]llm.ProposedAssignment{
		proposal("Ana", "2026-09-08", "am", 3),
		proposal("Ana", "2026-09-08", "pm", 2),
		proposal("Bo", "2026-09-08", "am", 4),
	})
	if !result.Valid {
		t.Fatalf("Validate() errors = %+v, want none", result.Errors)
	}
}

func TestFormatErrors(t *testing.T) {
	v := testValidator(nil, nil)
	result := v.Validate([]llm.ProposedAssignment{proposal("Carol", "2026-09-08", "am", 2)})

	msg := result.FormatErrors()
	if !strings.Contains(msg, "Assignment 0") || !strings.Contains(msg, "Carol") {
		t.Errorf("FormatErrors() = %q", msg)
	}
	if !strings.Contains(msg, "respond again with valid JSON") {
		t.Errorf("FormatErrors() missing retry instruction: %q", msg)
	}

	if got := (ValidationResult{}).FormatErrors(); got != "" {
		t.Errorf("FormatErrors() on clean result = %q, want empty", got)
	}
}
