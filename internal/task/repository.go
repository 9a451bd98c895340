package task

import (
	"context"
	"time"
)

// PlacementUpdate carries one task's new layout for batch persistence
// after a rearrangement.
type PlacementUpdate struct {
	TaskID int64
	Column int
	Hours  int
}

// Repository defines the storage interface for the scheduling board.
//
// ListSlotTasks is the authoritative slot-data provider: mutation
// paths must call it immediately before computing a rearrangement
// rather than trusting a list captured earlier in the interaction.
type Repository interface {
	// CreateEmployee adds a new employee.
	CreateEmployee(ctx context.Context, e *Employee) error

	// GetEmployee retrieves an employee by ID. Returns
	// ErrEmployeeNotFound if no such employee exists.
	GetEmployee(ctx context.Context, id int64) (*Employee, error)

	// ListEmployees returns all employees ordered by name.
	ListEmployees(ctx context.Context) ([]*Employee, error)

	// CreateTask adds a new task to its slot.
	CreateTask(ctx context.Context, t *Task) error

	// GetTask retrieves a task by ID. Returns ErrTaskNotFound if no
	// such task exists.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id int64) error

	// ListSlotTasks returns the current tasks of one half-day slot,
	// ordered by stored column (legacy rows last, by creation).
	ListSlotTasks(ctx context.Context, employeeID int64, date time.Time, period Period) ([]*Task, error)

	// ListTasksByDateRange returns all tasks scheduled within the date
	// range (inclusive), across employees.
	ListTasksByDateRange(ctx context.Context, start, end time.Time) ([]*Task, error)

	// MoveTask reassigns a task to a slot and placement in one update.
	MoveTask(ctx context.Context, id, employeeID int64, date time.Time, period Period, column, hours int) error

	// BatchUpdatePlacements applies the moved subset of a
	// rearrangement atomically. The final slot state is re-validated
	// against the layout invariants; ErrSlotOverlap is returned and
	// nothing is applied if they do not hold.
	BatchUpdatePlacements(ctx context.Context, updates []PlacementUpdate) error

	// AddLeave records a leave entry blocking an employee's slots.
	AddLeave(ctx context.Context, l *Leave) error

	// RemoveLeave deletes a leave entry.
	RemoveLeave(ctx context.Context, id int64) error

	// ListLeaves returns leave entries within the date range (inclusive).
	ListLeaves(ctx context.Context, start, end time.Time) ([]*Leave, error)

	// IsBlocked reports whether leave blocks the employee's slot.
	// Callers consult this before attempting any placement.
	IsBlocked(ctx context.Context, employeeID int64, date time.Time, period Period) (bool, error)

	// Close releases any resources held by the repository.
	Close() error
}
