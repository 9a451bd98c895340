// Package assign turns natural language requests into validated task
// assignments. It coordinates the LLM planner, the slot engine, and the
// repository; both CLI and TUI use it.
package assign

import (
	"fmt"
	"strings"
	"time"

	"github.com/mgallego/crewplan/internal/llm"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

// ValidationError represents a single validation error for a proposed assignment.
type ValidationError struct {
	Index   int    // Index of the assignment in the input slice
	Field   string // Field name: "employee", "date", "period", "hours", "capacity"
	Message string // Human-readable error message
}

// String returns a formatted error message.
func (e ValidationError) String() string {
	return fmt.Sprintf("Assignment %d: %s - %s", e.Index, e.Field, e.Message)
}

// ValidationResult contains the result of validating LLM-proposed assignments.
type ValidationResult struct {
	Valid  bool              // True if all assignments are valid
	Errors []ValidationError // List of validation errors (empty if Valid is true)
}

// FormatErrors returns a formatted string of all validation errors for LLM feedback.
func (r ValidationResult) FormatErrors() string {
	if len(r.Errors) == 0 {
		return ""
	}

	result := "Your response had these errors:\n"
	for _, e := range r.Errors {
		result += fmt.Sprintf("- %s\n", e.String())
	}
	result += "\nPlease correct these issues and respond again with valid JSON."
	return result
}

// Validator validates LLM proposals against the board's constraints.
type Validator struct {
	now       time.Time
	employees map[string]int64            // lowercase name -> id
	blocked   map[string]bool             // slot key -> on leave
	occupied  map[string][]slot.Placement // slot key -> current placements
}

// NewValidator creates a Validator over the given board state. The
// occupied map carries each slot's current placements keyed by
// slotKey(employeeID, date, period).
func NewValidator(now time.Time, employees []*task.Employee, blocked map[string]bool, occupied map[string][]slot.Placement) *Validator {
	byName := make(map[string]int64, len(employees))
	for _, e := range employees {
		byName[strings.ToLower(e.Name)] = e.ID
	}
	return &Validator{
		now:       now,
		employees: byName,
		blocked:   blocked,
		occupied:  occupied,
	}
}

// SlotKey identifies one employee's half-day slot in the validator's maps.
func SlotKey(employeeID int64, date string, period string) string {
	return fmt.Sprintf("%d|%s|%s", employeeID, date, period)
}

// Validate checks the proposed assignments. It validates:
//   - Known employee name (case-insensitive)
//   - Date format (YYYY-MM-DD) and not before today
//   - Period is "am" or "pm"
//   - Hours within 1 to 4
//   - Slot not blocked by leave
//   - Assignment fits the slot's remaining capacity, counting earlier
//     proposals in the same batch against the same slot
func (v *Validator) Validate(proposals []llm.ProposedAssignment) ValidationResult {
	result := ValidationResult{Valid: true}

	// Simulated occupancy so proposals in one batch compete for space.
	sim := make(map[string][]slot.Placement, len(v.occupied))
	for k, placements := range v.occupied {
		sim[k] = append([]slot.Placement(nil), placements...)
	}

	today := time.Date(v.now.Year(), v.now.Month(), v.now.Day(), 0, 0, 0, 0, v.now.Location())

	for i, p := range proposals {
		ok := true

		employeeID, known := v.employees[strings.ToLower(strings.TrimSpace(p.Employee))]
		if !known {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "employee",
				Message: fmt.Sprintf("'%s' is not a known employee", p.Employee),
			})
			ok = false
		}

		date, err := time.ParseInLocation("2006-01-02", p.Date, v.now.Location())
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "date",
				Message: fmt.Sprintf("'%s' is invalid (must be YYYY-MM-DD format)", p.Date),
			})
			ok = false
		} else if date.Before(today) {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "date",
				Message: fmt.Sprintf("'%s' is in the past", p.Date),
			})
			ok = false
		}

		period := task.Period(strings.ToLower(strings.TrimSpace(p.Period)))
		if !period.Valid() {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "period",
				Message: fmt.Sprintf("'%s' is invalid (must be \"am\" or \"pm\")", p.Period),
			})
			ok = false
		}

		if p.Hours < 1 || p.Hours > slot.Columns {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "hours",
				Message: fmt.Sprintf("%d is invalid (must be 1 to %d)", p.Hours, slot.Columns),
			})
			ok = false
		}

		if !ok {
			continue
		}

		key := SlotKey(employeeID, p.Date, string(period))
		if v.blocked[key] {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "capacity",
				Message: fmt.Sprintf("%s is on leave on %s %s", p.Employee, p.Date, period),
			})
			continue
		}

		start, err := slot.FindPlacement(sim[key], p.Hours, slot.PreferRightmost())
		if err != nil || start == slot.NoPlacement {
			result.Errors = append(result.Errors, ValidationError{
				Index:   i,
				Field:   "capacity",
				Message: fmt.Sprintf("%dh does not fit in %s's %s %s slot", p.Hours, p.Employee, p.Date, period),
			})
			continue
		}
		sim[key] = append(sim[key], slot.Placement{TaskID: int64(-(i + 1)), Start: start, Span: p.Hours})
	}

	result.Valid = len(result.Errors) == 0
	return result
}
