package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fee-api/internal/models"
)

const studentFeeColumns = "id, roll_no, name, class_name, fee_amount, fee_date, note"

// StudentFeeRepository manages persistence for student fee records.
//
// Each method is a single auto-committed statement. Updates and deletes that
// match no row succeed silently; driver errors are always returned.
type StudentFeeRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStudentFeeRepository constructs a StudentFeeRepository.
func NewStudentFeeRepository(db *sqlx.DB) *StudentFeeRepository {
	return &StudentFeeRepository{db: db, now: time.Now}
}

// Ping checks the store is reachable.
func (r *StudentFeeRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// CreateStudent inserts a student with no fee recorded and returns its id.
// Roll numbers are not checked for uniqueness.
func (r *StudentFeeRepository) CreateStudent(ctx context.Context, rollNo int, name, className string) (int64, error) {
	query := r.db.Rebind(`INSERT INTO students (roll_no, name, class_name) VALUES (?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.GetContext(ctx, &id, query, rollNo, name, className); err != nil {
		return 0, fmt.Errorf("create student: %w", err)
	}
	return id, nil
}

// RecordFee overwrites the fee fields of a student, stamping today's date.
func (r *StudentFeeRepository) RecordFee(ctx context.Context, id int64, amount int64, note string) error {
	today := r.now().Format(models.FeeDateLayout)
	query := r.db.Rebind(`UPDATE students SET fee_amount = ?, fee_date = ?, note = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, amount, today, note, id); err != nil {
		return fmt.Errorf("record fee: %w", err)
	}
	return nil
}

// ClearFee resets all fee fields of a student to NULL.
func (r *StudentFeeRepository) ClearFee(ctx context.Context, id int64) error {
	query := r.db.Rebind(`UPDATE students SET fee_amount = NULL, fee_date = NULL, note = NULL WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("clear fee: %w", err)
	}
	return nil
}

// DeleteStudent removes a student record.
func (r *StudentFeeRepository) DeleteStudent(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM students WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// FindByID fetches a single record. The error wraps sql.ErrNoRows when the id
// does not exist.
func (r *StudentFeeRepository) FindByID(ctx context.Context, id int64) (*models.StudentFeeRecord, error) {
	query := r.db.Rebind(`SELECT ` + studentFeeColumns + ` FROM students WHERE id = ?`)
	var record models.StudentFeeRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("find student %d: %w", id, err)
	}
	return &record, nil
}

// ListStudentsInClass returns the identity fields of a class ordered by roll number.
func (r *StudentFeeRepository) ListStudentsInClass(ctx context.Context, className string) ([]models.StudentSummary, error) {
	query := r.db.Rebind(`SELECT id, roll_no, name FROM students WHERE class_name = ? ORDER BY roll_no, id`)
	students := make([]models.StudentSummary, 0)
	if err := r.db.SelectContext(ctx, &students, query, className); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// ListClassRecords returns identity and fee fields of a class ordered by roll number.
func (r *StudentFeeRepository) ListClassRecords(ctx context.Context, className string) ([]models.ClassRecord, error) {
	query := r.db.Rebind(`SELECT id, roll_no, name, fee_amount, fee_date, note FROM students WHERE class_name = ? ORDER BY roll_no, id`)
	records := make([]models.ClassRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, className); err != nil {
		return nil, fmt.Errorf("list class records: %w", err)
	}
	return records, nil
}

// ListDistinctClasses returns every class name currently in use.
func (r *StudentFeeRepository) ListDistinctClasses(ctx context.Context) ([]string, error) {
	classes := make([]string, 0)
	if err := r.db.SelectContext(ctx, &classes, `SELECT DISTINCT class_name FROM students ORDER BY class_name`); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// TotalFeeCollected sums fee_amount over all records; no fees sums to zero.
func (r *StudentFeeRepository) TotalFeeCollected(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(fee_amount), 0) FROM students`); err != nil {
		return 0, fmt.Errorf("total fee collected: %w", err)
	}
	return total, nil
}

// TotalFeeForClass sums fee_amount over one class; no fees sums to zero.
func (r *StudentFeeRepository) TotalFeeForClass(ctx context.Context, className string) (int64, error) {
	query := r.db.Rebind(`SELECT COALESCE(SUM(fee_amount), 0) FROM students WHERE class_name = ?`)
	var total int64
	if err := r.db.GetContext(ctx, &total, query, className); err != nil {
		return 0, fmt.Errorf("total fee for class: %w", err)
	}
	return total, nil
}

// ListRecordsForMonth returns records whose fee_date falls in yearMonth
// ("YYYY-MM"), ordered by class then roll number. The argument is compared
// verbatim against the first seven characters of fee_date, so malformed
// input matches nothing.
func (r *StudentFeeRepository) ListRecordsForMonth(ctx context.Context, yearMonth string) ([]models.MonthlyFeeRecord, error) {
	query := r.db.Rebind(`SELECT roll_no, name, class_name, fee_amount, fee_date FROM students
        WHERE substr(fee_date, 1, 7) = ?
        ORDER BY class_name, roll_no, id`)
	records := make([]models.MonthlyFeeRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, yearMonth); err != nil {
		return nil, fmt.Errorf("list records for month: %w", err)
	}
	return records, nil
}
