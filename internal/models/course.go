package models

import "time"

// Course is a catalog entry.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseSection is a named subdivision of a course. (course_id, name) is
// unique; InstructorID is the instructor currently responsible and can be
// reassigned at any time, so ownership is always re-read per request.
type CourseSection struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	Name         string    `db:"name" json:"name"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorCourse groups a course with the sections an instructor owns in it.
type InstructorCourse struct {
	Course   Course          `json:"course"`
	Sections []CourseSection `json:"sections"`
}

// InstructorSectionRow joins a section to its course metadata.
type InstructorSectionRow struct {
	CourseSection
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
}
