package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fee-api/pkg/config"
)

const sqliteStudentsTable = `CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    roll_no INTEGER,
    name TEXT,
    class_name TEXT,
    fee_amount INTEGER,
    fee_date TEXT,
    note TEXT
)`

const postgresStudentsTable = `CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    roll_no INTEGER,
    name TEXT,
    class_name TEXT,
    fee_amount BIGINT,
    fee_date TEXT,
    note TEXT
)`

const studentsClassIndex = `CREATE INDEX IF NOT EXISTS idx_students_class_roll ON students (class_name, roll_no)`

// EnsureSchema creates the students table and its lookup index when missing.
// It is idempotent and meant to run once at process start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	table := sqliteStudentsTable
	if db.DriverName() == config.DriverPostgres {
		table = postgresStudentsTable
	}
	for _, stmt := range []string{table, studentsClassIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
