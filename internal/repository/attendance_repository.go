package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, student_id, course_id, term_id, date, status, marked_by, created_at, updated_at`

// ListByCourseTermDate returns the recorded statuses for one session date.
func (r *AttendanceRepository) ListByCourseTermDate(ctx context.Context, courseID, termID string, date time.Time) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance
WHERE course_id = $1 AND term_id = $2 AND date = $3`, attendanceColumns)
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, courseID, termID, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return rows, nil
}

// ListByCourseTerm returns every attendance row of a course within a term in
// chronological order. Aggregation happens in the service layer against the
// resolved membership.
func (r *AttendanceRepository) ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance
WHERE course_id = $1 AND term_id = $2
ORDER BY date ASC`, attendanceColumns)
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, courseID, termID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// Upsert inserts or overwrites one attendance record keyed on
// (student_id, course_id, term_id, date). Last write wins.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO attendance (id, student_id, course_id, term_id, date, status, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, course_id, term_id, date)
DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
RETURNING %s`, attendanceColumns)
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.StudentID, record.CourseID, record.TermID,
		record.Date, record.Status, record.MarkedBy, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// BulkUpsert writes a batch of attendance records within one transaction.
// Each key in the batch is disjoint, so order does not matter; retrying the
// batch reproduces the same final state.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk attendance: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	query := `INSERT INTO attendance (id, student_id, course_id, term_id, date, status, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, course_id, term_id, date)
DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query,
			rec.ID, rec.StudentID, rec.CourseID, rec.TermID,
			rec.Date, rec.Status, rec.MarkedBy, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return 0, fmt.Errorf("bulk upsert attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk attendance: %w", err)
	}
	commit = true
	return len(records), nil
}
