package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// EnrollmentRepository handles persistence for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListStudentsByCourseTerm returns the enrolled students of a course within
// a term together with the account attributes membership resolution needs.
func (r *EnrollmentRepository) ListStudentsByCourseTerm(ctx context.Context, courseID, termID string) ([]models.EnrolledStudent, error) {
	query := `SELECT u.id AS user_id, u.student_no, u.first_name, u.last_name, u.section_label
FROM enrollments e
JOIN users u ON u.id = e.student_id
WHERE e.course_id = $1 AND e.term_id = $2 AND u.role = $3 AND u.active = TRUE
ORDER BY u.last_name ASC, u.first_name ASC`
	var students []models.EnrolledStudent
	if err := r.db.SelectContext(ctx, &students, query, courseID, termID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}

// CoursesByStudent returns the courses a student is enrolled in across all
// terms with catalog and term metadata.
func (r *EnrollmentRepository) CoursesByStudent(ctx context.Context, studentID string) ([]models.StudentCourse, error) {
	query := `SELECT e.course_id, c.code AS course_code, c.title AS course_title, e.term_id, t.name AS term_name
FROM enrollments e
JOIN courses c ON c.id = e.course_id
JOIN terms t ON t.id = e.term_id
WHERE e.student_id = $1
ORDER BY t.start_date DESC, c.code ASC`
	var courses []models.StudentCourse
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("courses by student: %w", err)
	}
	return courses, nil
}

// Exists reports whether the (student, course, term) triple is enrolled.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID, termID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND term_id = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, termID); err != nil {
		return false, fmt.Errorf("enrollment exists: %w", err)
	}
	return exists, nil
}
