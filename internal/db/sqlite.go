// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

// SQLite implements task.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateEmployee adds a new employee.
func (s *SQLite) CreateEmployee(ctx context.Context, e *task.Employee) error {
	if e.Name == "" {
		return task.ErrEmptyName
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (name, created_at) VALUES (?, ?)`,
		e.Name, e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	e.ID = id

	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *SQLite) GetEmployee(ctx context.Context, id int64) (*task.Employee, error) {
	var (
		e         task.Employee
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM employees WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying employee: %w", err)
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// ListEmployees returns all employees ordered by name.
func (s *SQLite) ListEmployees(ctx context.Context) ([]*task.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var employees []*task.Employee
	for rows.Next() {
		var (
			e         task.Employee
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, &e)
	}
	return employees, rows.Err()
}

// CreateTask adds a new task to its slot.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	var column sql.NullInt64
	if t.Column != nil {
		column = sql.NullInt64{Int64: int64(*t.Column), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (employee_id, title, scheduled_date, period, hours, column_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.EmployeeID,
		t.Title,
		t.Date.Format("2006-01-02"),
		t.Period,
		t.Hours,
		column,
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	t.ID = id

	return nil
}

const taskColumns = `id, employee_id, title, scheduled_date, period, hours, column_start, created_at`

// scanTask reads one task row.
func scanTask(row interface{ Scan(...any) error }) (*task.Task, error) {
	var (
		t         task.Task
		date      string
		column    sql.NullInt64
		createdAt string
	)
	err := row.Scan(&t.ID, &t.EmployeeID, &t.Title, &date, &t.Period, &t.Hours, &column, &createdAt)
	if err != nil {
		return nil, err
	}

	t.Date, err = parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parsing scheduled date: %w", err)
	}
	if column.Valid {
		t.SetColumn(int(column.Int64))
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &t, nil
}

// GetTask retrieves a task by ID.
func (s *SQLite) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task.
func (s *SQLite) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// ListSlotTasks returns the current tasks of one half-day slot,
// ordered by stored column with legacy rows last.
func (s *SQLite) ListSlotTasks(ctx context.Context, employeeID int64, date time.Time, period task.Period) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE employee_id = ? AND scheduled_date = ? AND period = ?
		ORDER BY column_start IS NULL, column_start, id`,
		employeeID, date.Format("2006-01-02"), period,
	)
	if err != nil {
		return nil, fmt.Errorf("querying slot tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ListTasksByDateRange returns all tasks scheduled within the date
// range (inclusive), across employees.
func (s *SQLite) ListTasksByDateRange(ctx context.Context, start, end time.Time) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE scheduled_date >= ? AND scheduled_date <= ?
		ORDER BY scheduled_date, employee_id, period, column_start IS NULL, column_start, id`,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MoveTask reassigns a task to a slot and placement in one update.
// The destination slot's final layout is re-validated before commit.
func (s *SQLite) MoveTask(ctx context.Context, id, employeeID int64, date time.Time, period task.Period, column, hours int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET employee_id = ?, scheduled_date = ?, period = ?, column_start = ?, hours = ?
		WHERE id = ?`,
		employeeID, date.Format("2006-01-02"), period, column, hours, id,
	)
	if err != nil {
		return fmt.Errorf("moving task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking move result: %w", err)
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}

	if err := validateSlotTx(ctx, tx, employeeID, date, period); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// BatchUpdatePlacements applies the moved subset of a rearrangement
// atomically, then re-validates every touched slot against the layout
// invariants before committing.
func (s *SQLite) BatchUpdatePlacements(ctx context.Context, updates []task.PlacementUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE tasks SET column_start = ?, hours = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	type slotKey struct {
		employeeID int64
		date       string
		period     task.Period
	}
	touched := make(map[slotKey]bool)

	for _, u := range updates {
		result, err := stmt.ExecContext(ctx, u.Column, u.Hours, u.TaskID)
		if err != nil {
			return fmt.Errorf("updating task %d: %w", u.TaskID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking update result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("task %d: %w", u.TaskID, task.ErrTaskNotFound)
		}

		var (
			employeeID int64
			date       string
			period     task.Period
		)
		err = tx.QueryRowContext(ctx,
			`SELECT employee_id, scheduled_date, period FROM tasks WHERE id = ?`, u.TaskID,
		).Scan(&employeeID, &date, &period)
		if err != nil {
			return fmt.Errorf("locating task %d: %w", u.TaskID, err)
		}
		touched[slotKey{employeeID, date, period}] = true
	}

	for key := range touched {
		date, err := parseDate(key.date)
		if err != nil {
			return fmt.Errorf("parsing slot date: %w", err)
		}
		if err := validateSlotTx(ctx, tx, key.employeeID, date, key.period); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// validateSlotTx re-checks one slot's layout inside a transaction.
// Slots still containing legacy rows are skipped; they are migrated by
// Normalize on the next read.
func validateSlotTx(ctx context.Context, tx *sql.Tx, employeeID int64, date time.Time, period task.Period) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, hours, column_start FROM tasks
		WHERE employee_id = ? AND scheduled_date = ? AND period = ?`,
		employeeID, date.Format("2006-01-02"), period,
	)
	if err != nil {
		return fmt.Errorf("querying slot for validation: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var placements []slot.Placement
	for rows.Next() {
		var (
			id     int64
			hours  int
			column sql.NullInt64
		)
		if err := rows.Scan(&id, &hours, &column); err != nil {
			return fmt.Errorf("scanning slot row: %w", err)
		}
		if !column.Valid {
			return nil
		}
		placements = append(placements, slot.Placement{
			TaskID: id,
			Start:  int(column.Int64),
			Span:   hours,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating slot rows: %w", err)
	}

	if err := slot.Validate(placements); err != nil {
		return fmt.Errorf("%w: %v", task.ErrSlotOverlap, err)
	}
	return nil
}

// AddLeave records a leave entry blocking an employee's slots.
func (s *SQLite) AddLeave(ctx context.Context, l *task.Leave) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO leaves (employee_id, leave_date, period) VALUES (?, ?, ?)`,
		l.EmployeeID, l.Date.Format("2006-01-02"), l.Period,
	)
	if err != nil {
		return fmt.Errorf("inserting leave: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	l.ID = id
	return nil
}

// RemoveLeave deletes a leave entry.
func (s *SQLite) RemoveLeave(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM leaves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting leave: %w", err)
	}
	return nil
}

// ListLeaves returns leave entries within the date range (inclusive).
func (s *SQLite) ListLeaves(ctx context.Context, start, end time.Time) ([]*task.Leave, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_date, period FROM leaves
		WHERE leave_date >= ? AND leave_date <= ?
		ORDER BY leave_date, employee_id`,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("querying leaves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var leaves []*task.Leave
	for rows.Next() {
		var (
			l    task.Leave
			date string
		)
		if err := rows.Scan(&l.ID, &l.EmployeeID, &date, &l.Period); err != nil {
			return nil, fmt.Errorf("scanning leave: %w", err)
		}
		l.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parsing leave date: %w", err)
		}
		leaves = append(leaves, &l)
	}
	return leaves, rows.Err()
}

// IsBlocked reports whether leave blocks the employee's slot.
func (s *SQLite) IsBlocked(ctx context.Context, employeeID int64, date time.Time, period task.Period) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leaves
		WHERE employee_id = ? AND leave_date = ? AND (period = '' OR period = ?)`,
		employeeID, date.Format("2006-01-02"), period,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying leaves: %w", err)
	}
	return n > 0, nil
}

// parseDate handles the date formats SQLite may hand back for DATE
// columns: plain dates and RFC3339 midnight placeholders.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}
