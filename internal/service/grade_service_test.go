package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type mockTranscriptRepo struct {
	byCourseTerm map[string][]models.Transcript
	byStudent    []models.Transcript
	upserted     []models.GradeWrite
}

func (m *mockTranscriptRepo) ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Transcript, error) {
	return m.byCourseTerm[courseID+"|"+termID], nil
}

func (m *mockTranscriptRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Transcript, error) {
	return m.byStudent, nil
}

func (m *mockTranscriptRepo) BulkUpsertGrades(ctx context.Context, entries []models.GradeWrite) (int, error) {
	m.upserted = append(m.upserted, entries...)
	return len(entries), nil
}

type mockStudentCourseReader struct {
	courses []models.StudentCourse
}

func (m *mockStudentCourseReader) CoursesByStudent(ctx context.Context, studentID string) ([]models.StudentCourse, error) {
	return m.courses, nil
}

func TestGradebookLeavesUngradedNull(t *testing.T) {
	transcripts := &mockTranscriptRepo{byCourseTerm: map[string][]models.Transcript{
		"course-1|term-1": {
			{StudentID: "stu-1", CourseID: "course-1", TermID: "term-1", Grade: ptrStr("B+"), GradePoints: ptrFloat(3.33)},
		},
	}}
	svc := NewGradeService(&mockMembership{roster: attendanceFixtureRoster()}, transcripts, &mockStudentCourseReader{}, disabledCache(), nil, nil)

	rows, err := svc.Gradebook(context.Background(), "fac-1", GradebookRequest{CourseID: "course-1", TermID: "term-1"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "stu-1", rows[0].UserID)
	require.NotNil(t, rows[0].Grade)
	assert.Equal(t, "B+", *rows[0].Grade)
	assert.Equal(t, 3.33, *rows[0].GradePoints)

	assert.Nil(t, rows[1].Grade)
	assert.Nil(t, rows[1].GradePoints)
	assert.Nil(t, rows[2].Grade)
}

func TestSaveGradesFiltersInvalidEntries(t *testing.T) {
	transcripts := &mockTranscriptRepo{}
	svc := NewGradeService(&mockMembership{roster: attendanceFixtureRoster()}, transcripts, &mockStudentCourseReader{}, disabledCache(), nil, nil)

	result, err := svc.SaveGrades(context.Background(), "fac-1", SaveGradesRequest{
		CourseID: "course-1",
		TermID:   "term-1",
		Entries: []GradeEntry{
			{UserID: "stu-1", Grade: ptrStr("A-")},
			{UserID: "stu-9", Grade: ptrStr("A")},  // not on the roster
			{UserID: "stu-2", Grade: ptrStr("A*")}, // not a standard letter
			{UserID: "", Grade: ptrStr("B")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, transcripts.upserted, 1)
	assert.Equal(t, "stu-1", transcripts.upserted[0].StudentID)
	assert.Equal(t, models.TranscriptStatusDraft, transcripts.upserted[0].Status)
}

func TestSaveGradesAcceptsExplicitPoints(t *testing.T) {
	transcripts := &mockTranscriptRepo{}
	svc := NewGradeService(&mockMembership{roster: attendanceFixtureRoster()}, transcripts, &mockStudentCourseReader{}, disabledCache(), nil, nil)

	result, err := svc.SaveGrades(context.Background(), "fac-1", SaveGradesRequest{
		CourseID: "course-1",
		TermID:   "term-1",
		Entries: []GradeEntry{
			{UserID: "stu-1", Grade: ptrStr("B"), GradePoints: ptrFloat(3.1)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	require.Len(t, transcripts.upserted, 1)
	// The stored points value wins over the letter table.
	assert.Equal(t, 3.1, *transcripts.upserted[0].GradePoints)
}

func TestStudentMarksComputesClassStats(t *testing.T) {
	class := []models.Transcript{
		{StudentID: "stu-1", CourseID: "course-1", TermID: "term-1", Quiz1: ptrFloat(5)},
		{StudentID: "stu-2", CourseID: "course-1", TermID: "term-1", Quiz1: ptrFloat(4)},
		{StudentID: "stu-3", CourseID: "course-1", TermID: "term-1", Quiz1: ptrFloat(3)},
		// stu-4 has no quiz1 submission and must not drag the stats down.
		{StudentID: "stu-4", CourseID: "course-1", TermID: "term-1", Midterm1: ptrFloat(18)},
	}
	own := []models.Transcript{
		{StudentID: "stu-1", CourseID: "course-1", TermID: "term-1", Quiz1: ptrFloat(5), GraceMarks: ptrFloat(1.5)},
	}
	transcripts := &mockTranscriptRepo{
		byCourseTerm: map[string][]models.Transcript{"course-1|term-1": class},
		byStudent:    own,
	}
	enrollments := &mockStudentCourseReader{courses: []models.StudentCourse{
		{CourseID: "course-1", CourseCode: "CS101", CourseTitle: "Intro", TermID: "term-1", TermName: "Fall 2025"},
	}}
	svc := NewGradeService(&mockMembership{}, transcripts, enrollments, disabledCache(), nil, nil)

	marks, err := svc.StudentMarks(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, marks, 1)

	course := marks[0]
	assert.Equal(t, "CS101", course.CourseCode)
	require.NotNil(t, course.Marks[models.ComponentQuiz1])
	assert.Equal(t, 5.0, *course.Marks[models.ComponentQuiz1])
	assert.Nil(t, course.Marks[models.ComponentFinalExam])
	assert.Equal(t, 6.5, course.Total)

	quiz1 := course.Stats[models.ComponentQuiz1]
	assert.Equal(t, 3.0, quiz1.Min)
	assert.Equal(t, 5.0, quiz1.Max)
	assert.Equal(t, 4.0, quiz1.Avg)

	// No submissions anywhere for quiz2: the component has no stats entry.
	_, ok := course.Stats[models.ComponentQuiz2]
	assert.False(t, ok)

	midterm := course.Stats[models.ComponentMidterm1]
	assert.Equal(t, 18.0, midterm.Min)
	assert.Equal(t, 18.0, midterm.Max)
}

func TestStudentMarksWithoutTranscriptIsAllNull(t *testing.T) {
	transcripts := &mockTranscriptRepo{byCourseTerm: map[string][]models.Transcript{}}
	enrollments := &mockStudentCourseReader{courses: []models.StudentCourse{
		{CourseID: "course-1", CourseCode: "CS101", CourseTitle: "Intro", TermID: "term-1", TermName: "Fall 2025"},
	}}
	svc := NewGradeService(&mockMembership{}, transcripts, enrollments, disabledCache(), nil, nil)

	marks, err := svc.StudentMarks(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, marks, 1)
	for _, code := range models.ComponentOrder {
		assert.Nil(t, marks[0].Marks[code])
	}
	assert.Equal(t, 0.0, marks[0].Total)
}

func TestStudentMarksRequiresStudentID(t *testing.T) {
	svc := NewGradeService(&mockMembership{}, &mockTranscriptRepo{}, &mockStudentCourseReader{}, disabledCache(), nil, nil)

	_, err := svc.StudentMarks(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRound2IsBankers(t *testing.T) {
	assert.Equal(t, 33.33, round2(100.0/3))
	assert.Equal(t, 66.67, round2(200.0/3))
	assert.Equal(t, 2.5, round2(2.505))
}
