package models

import "time"

// Enrollment records a student's participation in a course for a term.
// (student_id, course_id, term_id) is unique and immutable after creation;
// enrollments carry no section assignment.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	TermID    string    `db:"term_id" json:"term_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EnrolledStudent joins an enrollment to the student's account attributes
// needed for membership resolution.
type EnrolledStudent struct {
	UserID       string  `db:"user_id" json:"user_id"`
	StudentNo    *string `db:"student_no" json:"student_no,omitempty"`
	FirstName    string  `db:"first_name" json:"first_name"`
	LastName     string  `db:"last_name" json:"last_name"`
	SectionLabel *string `db:"section_label" json:"section_label,omitempty"`
}

// StudentCourse describes one of a student's enrolled courses with catalog
// and term metadata, used by the student marks view.
type StudentCourse struct {
	CourseID    string `db:"course_id" json:"course_id"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
	TermID      string `db:"term_id" json:"term_id"`
	TermName    string `db:"term_name" json:"term_name"`
}
