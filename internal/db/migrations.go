package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS employees (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id    INTEGER NOT NULL REFERENCES employees(id),
			title          TEXT NOT NULL,
			scheduled_date DATE NOT NULL,
			period         TEXT NOT NULL CHECK(period IN ('am', 'pm')),
			hours          INTEGER NOT NULL CHECK(hours BETWEEN 1 AND 4),
			column_start   INTEGER CHECK(column_start BETWEEN 0 AND 3),
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS leaves (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL REFERENCES employees(id),
			leave_date  DATE NOT NULL,
			period      TEXT NOT NULL DEFAULT '' CHECK(period IN ('', 'am', 'pm'))
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_slot ON tasks(employee_id, scheduled_date, period);
		CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(scheduled_date);
		CREATE INDEX IF NOT EXISTS idx_leaves_employee ON leaves(employee_id, leave_date);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
