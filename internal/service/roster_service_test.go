package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

func ptrStr(s string) *string { return &s }

func ptrFloat(f float64) *float64 { return &f }

type mockRosterCourseRepo struct {
	course   *models.Course
	sections []models.CourseSection
}

func (m *mockRosterCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.course == nil || m.course.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.course, nil
}

func (m *mockRosterCourseRepo) SectionsByCourseAndInstructor(ctx context.Context, courseID, instructorID string) ([]models.CourseSection, error) {
	var out []models.CourseSection
	for _, s := range m.sections {
		if s.CourseID != courseID {
			continue
		}
		if s.InstructorID == nil || *s.InstructorID != instructorID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type mockRosterEnrollmentRepo struct {
	students []models.EnrolledStudent
}

func (m *mockRosterEnrollmentRepo) ListStudentsByCourseTerm(ctx context.Context, courseID, termID string) ([]models.EnrolledStudent, error) {
	return m.students, nil
}

func newRosterFixture() (*RosterService, *mockRosterCourseRepo, *mockRosterEnrollmentRepo) {
	courses := &mockRosterCourseRepo{
		course: &models.Course{ID: "course-1", Code: "CS101", Title: "Intro"},
		sections: []models.CourseSection{
			{ID: "sec-a", CourseID: "course-1", Name: "Section A", InstructorID: ptrStr("fac-1")},
			{ID: "sec-c", CourseID: "course-1", Name: "Section C", InstructorID: ptrStr("fac-1")},
			{ID: "sec-b", CourseID: "course-1", Name: "Section B", InstructorID: ptrStr("fac-2")},
		},
	}
	enrollments := &mockRosterEnrollmentRepo{
		students: []models.EnrolledStudent{
			{UserID: "stu-1", StudentNo: ptrStr("S-001"), FirstName: "Amira", LastName: "Khan", SectionLabel: ptrStr("section a")},
			{UserID: "stu-2", StudentNo: ptrStr("S-002"), FirstName: "Ben", LastName: "Adams", SectionLabel: nil},
			{UserID: "stu-3", StudentNo: ptrStr("S-003"), FirstName: "Cara", LastName: "Lopez", SectionLabel: ptrStr("Section B")},
			{UserID: "stu-4", StudentNo: ptrStr("S-004"), FirstName: "Dev", LastName: "Rao", SectionLabel: ptrStr("  SECTION C  ")},
		},
	}
	return NewRosterService(courses, enrollments, nil), courses, enrollments
}

func TestRosterResolveAllOwnedSections(t *testing.T) {
	svc, _, _ := newRosterFixture()

	roster, err := svc.Resolve(context.Background(), "fac-1", "course-1", "term-1", "")
	require.NoError(t, err)

	// stu-3's label points at a section owned by another instructor, so the
	// student is invisible here. Ordering is last name, case-insensitive.
	require.Len(t, roster.Students, 3)
	assert.Equal(t, "stu-2", roster.Students[0].UserID)
	assert.Equal(t, "", roster.Students[0].Section)
	assert.Equal(t, "stu-1", roster.Students[1].UserID)
	assert.Equal(t, "Section A", roster.Students[1].Section)
	assert.Equal(t, "stu-4", roster.Students[2].UserID)
	assert.Equal(t, "Section C", roster.Students[2].Section)
}

func TestRosterResolveSpecificSection(t *testing.T) {
	svc, _, _ := newRosterFixture()

	roster, err := svc.Resolve(context.Background(), "fac-1", "course-1", "term-1", "sec-a")
	require.NoError(t, err)
	require.Len(t, roster.Students, 1)
	assert.Equal(t, "stu-1", roster.Students[0].UserID)
	assert.Equal(t, "Section A", roster.Students[0].Section)
}

func TestRosterResolveSectionLabelTrimmedAndFolded(t *testing.T) {
	svc, _, _ := newRosterFixture()

	roster, err := svc.Resolve(context.Background(), "fac-1", "course-1", "term-1", "sec-c")
	require.NoError(t, err)
	require.Len(t, roster.Students, 1)
	assert.Equal(t, "stu-4", roster.Students[0].UserID)
}

func TestRosterResolveUnassignedBucket(t *testing.T) {
	svc, _, _ := newRosterFixture()

	roster, err := svc.Resolve(context.Background(), "fac-1", "course-1", "term-1", models.SectionUnassigned)
	require.NoError(t, err)
	require.Len(t, roster.Students, 1)
	assert.Equal(t, "stu-2", roster.Students[0].UserID)
}

func TestRosterResolveForeignSectionNotFound(t *testing.T) {
	svc, _, _ := newRosterFixture()

	// sec-b exists but belongs to another instructor; the caller cannot tell
	// it apart from a section that does not exist.
	_, err := svc.Resolve(context.Background(), "fac-1", "course-1", "term-1", "sec-b")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterResolveCourseNotFound(t *testing.T) {
	svc, _, _ := newRosterFixture()

	_, err := svc.Resolve(context.Background(), "fac-1", "course-missing", "term-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterResolveNoOwnedSections(t *testing.T) {
	svc, _, _ := newRosterFixture()

	roster, err := svc.Resolve(context.Background(), "fac-3", "course-1", "term-1", "")
	require.NoError(t, err)
	assert.Empty(t, roster.Students)

	// The unassigned bucket is also empty: without a section assignment in
	// the course there is no scope to see open-membership students through.
	roster, err = svc.Resolve(context.Background(), "fac-3", "course-1", "term-1", models.SectionUnassigned)
	require.NoError(t, err)
	assert.Empty(t, roster.Students)
}

func TestRosterResolveValidatesRequired(t *testing.T) {
	svc, _, _ := newRosterFixture()

	_, err := svc.Resolve(context.Background(), "", "course-1", "term-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Resolve(context.Background(), "fac-1", "course-1", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
