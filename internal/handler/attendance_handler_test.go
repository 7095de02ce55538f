package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/service"
)

type rosterStub struct {
	roster *models.Roster
}

func (s *rosterStub) Resolve(ctx context.Context, instructorID, courseID, termID, sectionID string) (*models.Roster, error) {
	return s.roster, nil
}

type attendanceRepoStub struct {
	rows     []models.Attendance
	upserted []models.Attendance
}

func (s *attendanceRepoStub) ListByCourseTermDate(ctx context.Context, courseID, termID string, date time.Time) ([]models.Attendance, error) {
	return s.rows, nil
}

func (s *attendanceRepoStub) ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Attendance, error) {
	return s.rows, nil
}

func (s *attendanceRepoStub) BulkUpsert(ctx context.Context, records []models.Attendance) (int, error) {
	s.upserted = append(s.upserted, records...)
	return len(records), nil
}

func newAttendanceHandlerFixture(repo *attendanceRepoStub) *AttendanceHandler {
	roster := &rosterStub{roster: &models.Roster{
		CourseID: "course-1",
		TermID:   "term-1",
		Students: []models.RosterStudent{
			{UserID: "stu-1", FirstName: "Amira", LastName: "Khan", Section: "Section A"},
		},
	}}
	svc := service.NewAttendanceService(roster, repo, nil, nil, nil)
	return NewAttendanceHandler(svc)
}

func facultyClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "fac-1", Role: models.RoleFaculty}
}

func TestAttendanceHandlerSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAttendanceHandlerFixture(&attendanceRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance?courseId=course-1&termId=term-1&date=2025-09-01", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, facultyClaims())

	h.Session(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.SessionEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, models.AttendanceStatusAbsent, envelope.Data[0].Status)
}

func TestAttendanceHandlerSessionRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAttendanceHandlerFixture(&attendanceRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance?courseId=course-1&termId=term-1&date=bad", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, facultyClaims())

	h.Session(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerSaveRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAttendanceHandlerFixture(&attendanceRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/attendance", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Save(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceHandlerSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &attendanceRepoStub{}
	h := newAttendanceHandlerFixture(repo)

	body := `{"course_id":"course-1","term_id":"term-1","date":"2025-09-01","entries":[{"user_id":"stu-1","status":"present"},{"user_id":"stu-9","status":"present"}]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/attendance", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, facultyClaims())

	h.Save(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.SaveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Saved)
	assert.Equal(t, 1, envelope.Data.Skipped)
	require.Len(t, repo.upserted, 1)
}

func TestAttendanceHandlerExportLowAttendanceCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAttendanceHandlerFixture(&attendanceRepoStub{rows: []models.Attendance{
		{StudentID: "stu-1", Date: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusAbsent},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance/low/export?courseId=course-1&termId=term-1", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, facultyClaims())

	h.ExportLowAttendance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "low-attendance-")
	assert.Contains(t, w.Body.String(), "student_no,name,section,attended,total,percentage")
	assert.Contains(t, w.Body.String(), "Amira Khan")
}
