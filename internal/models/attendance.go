package models

import "time"

// AttendanceStatus represents the status for attendance records. Any other
// value is rejected, never coerced.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts toward the attendance rate.
// Late counts as attended but is tracked separately in history.
func (s AttendanceStatus) Attended() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// LowAttendanceThreshold is the fixed policy cutoff: students strictly below
// this percentage are flagged for review.
const LowAttendanceThreshold = 80.0

// Attendance is one status per student per session. The natural key is
// (student_id, course_id, term_id, date); re-submitting the same date
// overwrites. Date carries midnight UTC.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	TermID    string           `db:"term_id" json:"term_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedBy  *string          `db:"marked_by" json:"marked_by,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// SessionEntry is one student's status for a specific session date.
type SessionEntry struct {
	UserID    string           `json:"user_id"`
	StudentNo *string          `json:"student_no,omitempty"`
	Name      string           `json:"name"`
	Section   string           `json:"section"`
	Status    AttendanceStatus `json:"status"`
}

// AttendanceHistoryEntry is a (date, status) pair for drill-down display.
type AttendanceHistoryEntry struct {
	Date   time.Time        `db:"date" json:"date"`
	Status AttendanceStatus `db:"status" json:"status"`
}

// LowAttendanceRow flags a visible student below the threshold.
type LowAttendanceRow struct {
	UserID     string                   `json:"user_id"`
	StudentNo  *string                  `json:"student_no,omitempty"`
	Name       string                   `json:"name"`
	Section    string                   `json:"section"`
	Attended   int                      `json:"attended"`
	Total      int                      `json:"total"`
	Percentage float64                  `json:"percentage"`
	History    []AttendanceHistoryEntry `json:"history"`
}
