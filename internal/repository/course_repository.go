package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// CourseRepository handles persistence for courses and their sections.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT id, code, title, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

const sectionColumns = `id, course_id, name, instructor_id, created_at, updated_at`

// FindSection fetches a section by id.
func (r *CourseRepository) FindSection(ctx context.Context, id string) (*models.CourseSection, error) {
	query := fmt.Sprintf("SELECT %s FROM course_sections WHERE id = $1", sectionColumns)
	var section models.CourseSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// SectionsByCourseAndInstructor returns the sections of a course currently
// assigned to the given instructor. This is re-read on every scoped request;
// section ownership carries no versioning.
func (r *CourseRepository) SectionsByCourseAndInstructor(ctx context.Context, courseID, instructorID string) ([]models.CourseSection, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_sections
WHERE course_id = $1 AND instructor_id = $2
ORDER BY name ASC`, sectionColumns)
	var sections []models.CourseSection
	if err := r.db.SelectContext(ctx, &sections, query, courseID, instructorID); err != nil {
		return nil, fmt.Errorf("sections by course and instructor: %w", err)
	}
	return sections, nil
}

// SectionsByInstructor returns all sections assigned to an instructor with
// their course metadata.
func (r *CourseRepository) SectionsByInstructor(ctx context.Context, instructorID string) ([]models.InstructorSectionRow, error) {
	query := `SELECT cs.id, cs.course_id, cs.name, cs.instructor_id, cs.created_at, cs.updated_at,
        c.code AS course_code, c.title AS course_title
FROM course_sections cs
JOIN courses c ON c.id = cs.course_id
WHERE cs.instructor_id = $1
ORDER BY c.code ASC, cs.name ASC`
	var rows []models.InstructorSectionRow
	if err := r.db.SelectContext(ctx, &rows, query, instructorID); err != nil {
		return nil, fmt.Errorf("sections by instructor: %w", err)
	}
	return rows, nil
}
