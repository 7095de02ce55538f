package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type mockMembership struct {
	roster *models.Roster
	err    error
}

func (m *mockMembership) Resolve(ctx context.Context, instructorID, courseID, termID, sectionID string) (*models.Roster, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roster, nil
}

type mockAttendanceRepo struct {
	rows     []models.Attendance
	upserted []models.Attendance
}

func (m *mockAttendanceRepo) ListByCourseTermDate(ctx context.Context, courseID, termID string, date time.Time) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, row := range m.rows {
		if row.Date.Equal(date) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Attendance, error) {
	return m.rows, nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.Attendance) (int, error) {
	m.upserted = append(m.upserted, records...)
	return len(records), nil
}

func day(d int) time.Time {
	return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC)
}

func attendanceFixtureRoster() *models.Roster {
	return &models.Roster{
		CourseID: "course-1",
		TermID:   "term-1",
		Students: []models.RosterStudent{
			{UserID: "stu-1", FirstName: "Amira", LastName: "Khan", Section: "Section A"},
			{UserID: "stu-2", FirstName: "Ben", LastName: "Adams", Section: "Section A"},
			{UserID: "stu-3", FirstName: "Cara", LastName: "Lopez", Section: "Section A"},
		},
	}
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, nil, false)
}

func TestAttendanceSessionDefaultsAbsent(t *testing.T) {
	repo := &mockAttendanceRepo{rows: []models.Attendance{
		{StudentID: "stu-1", CourseID: "course-1", TermID: "term-1", Date: day(1), Status: models.AttendanceStatusLate},
	}}
	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, repo, disabledCache(), nil, nil)

	entries, err := svc.Session(context.Background(), "fac-1", SessionRequest{
		CourseID: "course-1", TermID: "term-1", Date: "2025-09-01",
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.AttendanceStatusLate, entries[0].Status)
	assert.Equal(t, models.AttendanceStatusAbsent, entries[1].Status)
	assert.Equal(t, models.AttendanceStatusAbsent, entries[2].Status)

	// The presentation default never reaches storage.
	assert.Empty(t, repo.upserted)
}

func TestAttendanceSessionRejectsBadDate(t *testing.T) {
	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, &mockAttendanceRepo{}, disabledCache(), nil, nil)

	_, err := svc.Session(context.Background(), "fac-1", SessionRequest{
		CourseID: "course-1", TermID: "term-1", Date: "01/09/2025",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLowAttendanceThresholdIsStrict(t *testing.T) {
	rows := make([]models.Attendance, 0)
	// stu-1 attends 8 of 10 sessions: exactly 80%, not flagged.
	for d := 1; d <= 10; d++ {
		status := models.AttendanceStatusPresent
		if d > 8 {
			status = models.AttendanceStatusAbsent
		}
		rows = append(rows, models.Attendance{StudentID: "stu-1", Date: day(d), Status: status})
	}
	// stu-2 attends 1 of 3: 33.33%.
	rows = append(rows,
		models.Attendance{StudentID: "stu-2", Date: day(1), Status: models.AttendanceStatusLate},
		models.Attendance{StudentID: "stu-2", Date: day(2), Status: models.AttendanceStatusAbsent},
		models.Attendance{StudentID: "stu-2", Date: day(3), Status: models.AttendanceStatusAbsent},
	)
	// stu-3 has no recorded sessions: 0%, flagged.

	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, &mockAttendanceRepo{rows: rows}, disabledCache(), nil, nil)

	report, err := svc.LowAttendance(context.Background(), "fac-1", LowAttendanceRequest{
		CourseID: "course-1", TermID: "term-1",
	})
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, "stu-3", report[0].UserID)
	assert.Equal(t, 0, report[0].Total)
	assert.Equal(t, 0.0, report[0].Percentage)

	assert.Equal(t, "stu-2", report[1].UserID)
	assert.Equal(t, 1, report[1].Attended)
	assert.Equal(t, 3, report[1].Total)
	assert.Equal(t, 33.33, report[1].Percentage)
	require.Len(t, report[1].History, 3)
	assert.True(t, report[1].History[0].Date.Before(report[1].History[1].Date))
}

func TestLowAttendanceSortsByPercentageThenLastName(t *testing.T) {
	rows := []models.Attendance{
		// stu-1 and stu-2 both at 50%.
		{StudentID: "stu-1", Date: day(1), Status: models.AttendanceStatusPresent},
		{StudentID: "stu-1", Date: day(2), Status: models.AttendanceStatusAbsent},
		{StudentID: "stu-2", Date: day(1), Status: models.AttendanceStatusPresent},
		{StudentID: "stu-2", Date: day(2), Status: models.AttendanceStatusAbsent},
		// stu-3 at 25%.
		{StudentID: "stu-3", Date: day(1), Status: models.AttendanceStatusPresent},
		{StudentID: "stu-3", Date: day(2), Status: models.AttendanceStatusAbsent},
		{StudentID: "stu-3", Date: day(3), Status: models.AttendanceStatusAbsent},
		{StudentID: "stu-3", Date: day(4), Status: models.AttendanceStatusAbsent},
	}
	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, &mockAttendanceRepo{rows: rows}, disabledCache(), nil, nil)

	report, err := svc.LowAttendance(context.Background(), "fac-1", LowAttendanceRequest{
		CourseID: "course-1", TermID: "term-1",
	})
	require.NoError(t, err)
	require.Len(t, report, 3)
	assert.Equal(t, "stu-3", report[0].UserID)
	// Ties break on last name: Adams before Khan.
	assert.Equal(t, "stu-2", report[1].UserID)
	assert.Equal(t, "stu-1", report[2].UserID)
}

func TestSaveAttendanceFiltersInvalidEntries(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, repo, disabledCache(), nil, nil)

	result, err := svc.Save(context.Background(), "fac-1", SaveAttendanceRequest{
		CourseID: "course-1",
		TermID:   "term-1",
		Date:     "2025-09-01",
		Entries: []AttendanceEntry{
			{UserID: "stu-1", Status: "present"},
			{UserID: "stu-9", Status: "present"}, // not on the roster
			{UserID: "stu-2", Status: "PRESENT"}, // case is not coerced
			{UserID: "", Status: "late"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "stu-1", repo.upserted[0].StudentID)
	require.NotNil(t, repo.upserted[0].MarkedBy)
	assert.Equal(t, "fac-1", *repo.upserted[0].MarkedBy)
	assert.Equal(t, day(1), repo.upserted[0].Date)
}

func TestSaveAttendanceLastEntryWinsPerStudent(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, repo, disabledCache(), nil, nil)

	result, err := svc.Save(context.Background(), "fac-1", SaveAttendanceRequest{
		CourseID: "course-1",
		TermID:   "term-1",
		Date:     "2025-09-01",
		Entries: []AttendanceEntry{
			{UserID: "stu-1", Status: "absent"},
			{UserID: "stu-1", Status: "late"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, models.AttendanceStatusLate, repo.upserted[0].Status)
}

func TestSaveAttendanceRequiresEntries(t *testing.T) {
	svc := NewAttendanceService(&mockMembership{roster: attendanceFixtureRoster()}, &mockAttendanceRepo{}, disabledCache(), nil, nil)

	_, err := svc.Save(context.Background(), "fac-1", SaveAttendanceRequest{
		CourseID: "course-1", TermID: "term-1", Date: "2025-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
