package models

import "time"

// TranscriptStatus distinguishes posted from draft grades.
type TranscriptStatus string

const (
	TranscriptStatusDraft TranscriptStatus = "draft"
	TranscriptStatusFinal TranscriptStatus = "final"
)

// Transcript holds a student's grade and itemized assessment scores for one
// (student, course, term). The natural key is the triple; writes upsert.
// GradePoints is authoritative and may be overridden independently of the
// letter grade.
type Transcript struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	CourseID    string           `db:"course_id" json:"course_id"`
	TermID      string           `db:"term_id" json:"term_id"`
	Grade       *string          `db:"grade" json:"grade,omitempty"`
	GradePoints *float64         `db:"grade_points" json:"grade_points,omitempty"`
	Assignment1 *float64         `db:"assignment1" json:"assignment1,omitempty"`
	Assignment2 *float64         `db:"assignment2" json:"assignment2,omitempty"`
	Quiz1       *float64         `db:"quiz1" json:"quiz1,omitempty"`
	Quiz2       *float64         `db:"quiz2" json:"quiz2,omitempty"`
	Quiz3       *float64         `db:"quiz3" json:"quiz3,omitempty"`
	Quiz4       *float64         `db:"quiz4" json:"quiz4,omitempty"`
	Midterm1    *float64         `db:"midterm1" json:"midterm1,omitempty"`
	Midterm2    *float64         `db:"midterm2" json:"midterm2,omitempty"`
	FinalExam   *float64         `db:"final_exam" json:"final_exam,omitempty"`
	GraceMarks  *float64         `db:"grace_marks" json:"grace_marks,omitempty"`
	Status      TranscriptStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// Component codes for itemized assessment scores.
const (
	ComponentAssignment1 = "assignment1"
	ComponentAssignment2 = "assignment2"
	ComponentQuiz1       = "quiz1"
	ComponentQuiz2       = "quiz2"
	ComponentQuiz3       = "quiz3"
	ComponentQuiz4       = "quiz4"
	ComponentMidterm1    = "midterm1"
	ComponentMidterm2    = "midterm2"
	ComponentFinalExam   = "final_exam"
	ComponentGraceMarks  = "grace_marks"
)

// ComponentOrder lists assessment components in display order.
var ComponentOrder = []string{
	ComponentAssignment1,
	ComponentAssignment2,
	ComponentQuiz1,
	ComponentQuiz2,
	ComponentQuiz3,
	ComponentQuiz4,
	ComponentMidterm1,
	ComponentMidterm2,
	ComponentFinalExam,
	ComponentGraceMarks,
}

// ComponentScore returns the score stored for the given component code.
func (t *Transcript) ComponentScore(code string) *float64 {
	switch code {
	case ComponentAssignment1:
		return t.Assignment1
	case ComponentAssignment2:
		return t.Assignment2
	case ComponentQuiz1:
		return t.Quiz1
	case ComponentQuiz2:
		return t.Quiz2
	case ComponentQuiz3:
		return t.Quiz3
	case ComponentQuiz4:
		return t.Quiz4
	case ComponentMidterm1:
		return t.Midterm1
	case ComponentMidterm2:
		return t.Midterm2
	case ComponentFinalExam:
		return t.FinalExam
	case ComponentGraceMarks:
		return t.GraceMarks
	default:
		return nil
	}
}

// Total sums all recorded component scores including grace marks.
func (t *Transcript) Total() float64 {
	total := 0.0
	for _, code := range ComponentOrder {
		if v := t.ComponentScore(code); v != nil {
			total += *v
		}
	}
	return total
}

// GradeWrite carries one grade write keyed on (student, course, term).
type GradeWrite struct {
	StudentID   string
	CourseID    string
	TermID      string
	Grade       *string
	GradePoints *float64
	Status      TranscriptStatus
}

// GradebookRow is one visible student's current grade in the faculty
// gradebook; Grade and GradePoints are nil when ungraded.
type GradebookRow struct {
	UserID      string   `json:"user_id"`
	StudentNo   *string  `json:"student_no,omitempty"`
	Name        string   `json:"name"`
	Section     string   `json:"section"`
	Grade       *string  `json:"grade,omitempty"`
	GradePoints *float64 `json:"grade_points,omitempty"`
}

// ComponentStats carries anonymous class statistics for one component.
type ComponentStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// CourseMarks is the student-facing marks view for one enrolled course.
type CourseMarks struct {
	CourseCode  string                    `json:"course_code"`
	CourseTitle string                    `json:"course_title"`
	TermName    string                    `json:"term_name"`
	Marks       map[string]*float64       `json:"marks"`
	Total       float64                   `json:"total"`
	Stats       map[string]ComponentStats `json:"stats"`
}

// letterGradePoints maps standard letter grades to canonical grade-point
// values. Used only as a UI default; the stored grade_points value is
// authoritative.
var letterGradePoints = map[string]float64{
	"A+": 4.00,
	"A":  4.00,
	"A-": 3.67,
	"B+": 3.33,
	"B":  3.00,
	"B-": 2.67,
	"C+": 2.33,
	"C":  2.00,
	"C-": 1.67,
	"D+": 1.33,
	"D":  1.00,
	"F":  0.00,
}

// GradePointsForLetter resolves the canonical grade-point value for a
// standard letter grade.
func GradePointsForLetter(letter string) (float64, bool) {
	points, ok := letterGradePoints[letter]
	return points, ok
}
