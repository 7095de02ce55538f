package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// NoteRepository handles persistence for faculty student notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, faculty_id, student_id, course_id, term_id, body, created_at, updated_at`

// Create inserts a new note.
func (r *NoteRepository) Create(ctx context.Context, note *models.StudentNote) (*models.StudentNote, error) {
	now := time.Now().UTC()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	note.CreatedAt = now
	note.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO student_notes (id, faculty_id, student_id, course_id, term_id, body, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING %s`, noteColumns)
	var stored models.StudentNote
	if err := r.db.GetContext(ctx, &stored, query,
		note.ID, note.FacultyID, note.StudentID, note.CourseID, note.TermID,
		note.Body, note.CreatedAt, note.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &stored, nil
}

// ListByFaculty returns a faculty member's notes for a student within a
// course and term.
func (r *NoteRepository) ListByFaculty(ctx context.Context, facultyID, studentID, courseID, termID string) ([]models.StudentNote, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_notes
WHERE faculty_id = $1 AND student_id = $2 AND course_id = $3 AND term_id = $4
ORDER BY created_at DESC`, noteColumns)
	var notes []models.StudentNote
	if err := r.db.SelectContext(ctx, &notes, query, facultyID, studentID, courseID, termID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Delete removes a note owned by the faculty member. Returns the number of
// rows removed.
func (r *NoteRepository) Delete(ctx context.Context, id, facultyID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM student_notes WHERE id = $1 AND faculty_id = $2`, id, facultyID)
	if err != nil {
		return 0, fmt.Errorf("delete note: %w", err)
	}
	return result.RowsAffected()
}
