package database

import (
	"database/sql"
	"fmt"
)

// columnExists checks if a column exists on a given table (SQLite PRAGMA table_info)
func columnExists(db *sql.DB, table string, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var cid int
	var name string
	var ctype string
	var notnull int
	var dflt sql.NullString
	var pk int

	for rows.Next() {
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func indexExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?", name).Scan(&n)
	return n > 0, err
}

// Migrate brings databases created by older builds up to date. Every step is
// idempotent.
func Migrate(db *sql.DB) error {
	if err := MigrateAddHabitCreatedAt(db); err != nil {
		return fmt.Errorf("add habits.created_at: %w", err)
	}
	if err := MigrateDedupeHabitLogs(db); err != nil {
		return fmt.Errorf("dedupe habit_logs: %w", err)
	}
	return nil
}

// MigrateAddHabitCreatedAt ensures the habits table has a created_at column.
func MigrateAddHabitCreatedAt(db *sql.DB) error {
	exists, err := columnExists(db, "habits", "created_at")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	// SQLite refuses non-constant defaults on ALTER TABLE.
	if _, err := db.Exec("ALTER TABLE habits ADD COLUMN created_at DATETIME"); err != nil {
		return err
	}
	_, err = db.Exec("UPDATE habits SET created_at = CURRENT_TIMESTAMP WHERE created_at IS NULL")
	return err
}

// MigrateDedupeHabitLogs keeps the earliest log per (user, habit, date) and
// installs the unique index that backs insert-if-absent.
func MigrateDedupeHabitLogs(db *sql.DB) error {
	exists, err := indexExists(db, "idx_habit_logs_day")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM habit_logs
		WHERE id NOT IN (
			SELECT MIN(id) FROM habit_logs GROUP BY user_id, habit_id, date
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec("CREATE UNIQUE INDEX idx_habit_logs_day ON habit_logs(user_id, habit_id, date)"); err != nil {
		return err
	}

	return tx.Commit()
}
