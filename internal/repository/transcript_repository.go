package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// TranscriptRepository handles persistence for transcript and mark entries.
type TranscriptRepository struct {
	db *sqlx.DB
}

// NewTranscriptRepository constructs the repository.
func NewTranscriptRepository(db *sqlx.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

const transcriptColumns = `id, student_id, course_id, term_id, grade, grade_points,
        assignment1, assignment2, quiz1, quiz2, quiz3, quiz4, midterm1, midterm2, final_exam, grace_marks,
        status, created_at, updated_at`

// ListByCourseTerm returns every transcript row of a course within a term.
func (r *TranscriptRepository) ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Transcript, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcripts WHERE course_id = $1 AND term_id = $2`, transcriptColumns)
	var rows []models.Transcript
	if err := r.db.SelectContext(ctx, &rows, query, courseID, termID); err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	return rows, nil
}

// ListByStudent returns all transcript rows for one student.
func (r *TranscriptRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Transcript, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcripts WHERE student_id = $1`, transcriptColumns)
	var rows []models.Transcript
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("transcripts by student: %w", err)
	}
	return rows, nil
}

// UpsertGrade writes a letter grade and grade points without touching the
// itemized component scores of an existing row.
func (r *TranscriptRepository) UpsertGrade(ctx context.Context, entry models.GradeWrite) error {
	now := time.Now().UTC()
	query := `INSERT INTO transcripts (id, student_id, course_id, term_id, grade, grade_points, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, course_id, term_id)
DO UPDATE SET grade = EXCLUDED.grade, grade_points = EXCLUDED.grade_points, updated_at = EXCLUDED.updated_at`
	status := entry.Status
	if status == "" {
		status = models.TranscriptStatusDraft
	}
	if _, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), entry.StudentID, entry.CourseID, entry.TermID,
		entry.Grade, entry.GradePoints, status, now, now); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// BulkUpsertGrades writes a batch of grade entries within one transaction.
func (r *TranscriptRepository) BulkUpsertGrades(ctx context.Context, entries []models.GradeWrite) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk grades: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	query := `INSERT INTO transcripts (id, student_id, course_id, term_id, grade, grade_points, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, course_id, term_id)
DO UPDATE SET grade = EXCLUDED.grade, grade_points = EXCLUDED.grade_points, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, entry := range entries {
		status := entry.Status
		if status == "" {
			status = models.TranscriptStatusDraft
		}
		if _, err := tx.ExecContext(ctx, query,
			uuid.NewString(), entry.StudentID, entry.CourseID, entry.TermID,
			entry.Grade, entry.GradePoints, status, now, now); err != nil {
			return 0, fmt.Errorf("bulk upsert grades: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk grades: %w", err)
	}
	commit = true
	return len(entries), nil
}
