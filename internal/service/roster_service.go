package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type rosterCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	SectionsByCourseAndInstructor(ctx context.Context, courseID, instructorID string) ([]models.CourseSection, error)
}

type rosterEnrollmentRepository interface {
	ListStudentsByCourseTerm(ctx context.Context, courseID, termID string) ([]models.EnrolledStudent, error)
}

// RosterService resolves which students an instructor may see for a course
// section. Enrollment carries no section assignment; membership is
// reconciled at query time from the student's free-text section label against
// the section names currently assigned to the instructor.
type RosterService struct {
	courses     rosterCourseRepository
	enrollments rosterEnrollmentRepository
	logger      *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(courses rosterCourseRepository, enrollments rosterEnrollmentRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{courses: courses, enrollments: enrollments, logger: logger}
}

// normalizeLabel folds a section label for comparison.
func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Resolve computes the set of students visible to the instructor for
// (course, term), optionally narrowed to one section or to the unassigned
// bucket. Ownership is re-derived from course_sections on every call; a
// client-supplied section id outside the instructor's current assignment
// resolves to NotFound, indistinguishable from a section that does not exist.
//
// Visibility rules:
//   - no section requested: students whose normalized label matches one of
//     the instructor's section names, plus students with an empty label
//     (open membership);
//   - a specific section requested: students whose normalized label equals
//     that section's normalized name;
//   - the unassigned sentinel requested: students with an empty label only.
//
// A non-empty label matching none of the course's sections assigned to this
// instructor keeps the student out of the roster entirely.
func (s *RosterService) Resolve(ctx context.Context, instructorID, courseID, termID, sectionID string) (*models.Roster, error) {
	if instructorID == "" || courseID == "" || termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructor, course and term required")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	owned, err := s.courses.SectionsByCourseAndInstructor(ctx, courseID, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}

	roster := &models.Roster{CourseID: courseID, TermID: termID, Students: []models.RosterStudent{}}

	var target *models.CourseSection
	unassignedOnly := false
	switch sectionID {
	case "":
	case models.SectionUnassigned:
		unassignedOnly = true
	default:
		for i := range owned {
			if owned[i].ID == sectionID {
				target = &owned[i]
				break
			}
		}
		if target == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
	}

	// Zero owned sections is an empty roster, not an error. This also
	// covers the unassigned bucket: an instructor with no sections in the
	// course has no scope to see open-membership students through.
	if len(owned) == 0 {
		return roster, nil
	}

	ownedNames := make(map[string]string, len(owned))
	for _, section := range owned {
		ownedNames[normalizeLabel(section.Name)] = section.Name
	}

	students, err := s.enrollments.ListStudentsByCourseTerm(ctx, courseID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	for _, student := range students {
		label := ""
		if student.SectionLabel != nil {
			label = normalizeLabel(*student.SectionLabel)
		}

		var visible bool
		var display string
		switch {
		case unassignedOnly:
			visible = label == ""
		case target != nil:
			visible = label == normalizeLabel(target.Name)
			display = target.Name
		case label == "":
			visible = true
		default:
			display, visible = ownedNames[label]
		}
		if !visible {
			continue
		}

		roster.Students = append(roster.Students, models.RosterStudent{
			UserID:    student.UserID,
			StudentNo: student.StudentNo,
			FirstName: student.FirstName,
			LastName:  student.LastName,
			Section:   display,
		})
	}

	sort.SliceStable(roster.Students, func(i, j int) bool {
		a, b := roster.Students[i], roster.Students[j]
		la, lb := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
		if la != lb {
			return la < lb
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})

	return roster, nil
}
