package models

// SectionUnassigned is the sentinel section identifier selecting students
// whose section label is empty.
const SectionUnassigned = "unassigned"

// RosterStudent is a student visible within an instructor's section scope.
// Section carries the resolved section name for display; it is empty for
// open-membership students.
type RosterStudent struct {
	UserID    string  `json:"user_id"`
	StudentNo *string `json:"student_no,omitempty"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Section   string  `json:"section"`
}

// Name joins first and last name for display.
func (s RosterStudent) Name() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Roster is the resolved membership for one (course, term, section scope).
type Roster struct {
	CourseID string          `json:"course_id"`
	TermID   string          `json:"term_id"`
	Students []RosterStudent `json:"students"`
}

// Contains reports whether the given user is part of the roster.
func (r *Roster) Contains(userID string) bool {
	for _, s := range r.Students {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// Lookup returns the roster entry for a user.
func (r *Roster) Lookup(userID string) (RosterStudent, bool) {
	for _, s := range r.Students {
		if s.UserID == userID {
			return s, true
		}
	}
	return RosterStudent{}, false
}
