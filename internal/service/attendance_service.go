package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type membershipResolver interface {
	Resolve(ctx context.Context, instructorID, courseID, termID, sectionID string) (*models.Roster, error)
}

type attendanceRepository interface {
	ListByCourseTermDate(ctx context.Context, courseID, termID string, date time.Time) ([]models.Attendance, error)
	ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Attendance, error)
	BulkUpsert(ctx context.Context, records []models.Attendance) (int, error)
}

// AttendanceService aggregates attendance over resolved section membership
// and gates the attendance write path.
type AttendanceService struct {
	roster     membershipResolver
	attendance attendanceRepository
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(roster membershipResolver, attendance attendanceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{roster: roster, attendance: attendance, cache: cache, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// parseSessionDate parses a calendar date, stripping time-of-day to midnight
// UTC so it matches the attendance natural key.
func parseSessionDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC), nil
}

// SessionRequest scopes a single-session lookup.
type SessionRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	TermID    string `json:"term_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	SectionID string `json:"section_id"`
}

// Session returns each visible student's recorded status for one date.
// Students without a record default to absent in the response; the default is
// presentation only and is never persisted.
func (s *AttendanceService) Session(ctx context.Context, instructorID string, req SessionRequest) ([]models.SessionEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session filter")
	}
	date, err := parseSessionDate(req.Date)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.Resolve(ctx, instructorID, req.CourseID, req.TermID, req.SectionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.attendance.ListByCourseTermDate(ctx, req.CourseID, req.TermID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session attendance")
	}
	recorded := make(map[string]models.AttendanceStatus, len(rows))
	for _, row := range rows {
		recorded[row.StudentID] = row.Status
	}
	entries := make([]models.SessionEntry, 0, len(roster.Students))
	for _, student := range roster.Students {
		status, ok := recorded[student.UserID]
		if !ok {
			status = models.AttendanceStatusAbsent
		}
		entries = append(entries, models.SessionEntry{
			UserID:    student.UserID,
			StudentNo: student.StudentNo,
			Name:      student.Name(),
			Section:   student.Section,
			Status:    status,
		})
	}
	return entries, nil
}

// LowAttendanceRequest scopes the low-attendance report.
type LowAttendanceRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	TermID    string `json:"term_id" validate:"required"`
	SectionID string `json:"section_id"`
}

// LowAttendance flags every visible student whose attendance rate is
// strictly below the threshold. A session only counts toward the total once
// a status has been recorded for the student on that date; a student with no
// recorded sessions has a rate of 0, not NaN.
func (s *AttendanceService) LowAttendance(ctx context.Context, instructorID string, req LowAttendanceRequest) ([]models.LowAttendanceRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filter")
	}
	roster, err := s.roster.Resolve(ctx, instructorID, req.CourseID, req.TermID, req.SectionID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:course:%s:term:%s:low-attendance:%s:%s", req.CourseID, req.TermID, req.SectionID, instructorID)
	var cached []models.LowAttendanceRow
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	rows, err := s.attendance.ListByCourseTerm(ctx, req.CourseID, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	history := make(map[string][]models.AttendanceHistoryEntry)
	for _, row := range rows {
		history[row.StudentID] = append(history[row.StudentID], models.AttendanceHistoryEntry{Date: row.Date, Status: row.Status})
	}

	type flagged struct {
		row      models.LowAttendanceRow
		lastName string
	}
	report := make([]flagged, 0)
	for _, student := range roster.Students {
		entries := history[student.UserID]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
		attended := 0
		for _, entry := range entries {
			if entry.Status.Attended() {
				attended++
			}
		}
		total := len(entries)
		percentage := 0.0
		if total > 0 {
			percentage = float64(attended) / float64(total) * 100
		}
		if percentage >= models.LowAttendanceThreshold {
			continue
		}
		report = append(report, flagged{
			row: models.LowAttendanceRow{
				UserID:     student.UserID,
				StudentNo:  student.StudentNo,
				Name:       student.Name(),
				Section:    student.Section,
				Attended:   attended,
				Total:      total,
				Percentage: round2(percentage),
				History:    entries,
			},
			lastName: strings.ToLower(student.LastName),
		})
	}

	sort.SliceStable(report, func(i, j int) bool {
		if report[i].row.Percentage != report[j].row.Percentage {
			return report[i].row.Percentage < report[j].row.Percentage
		}
		return report[i].lastName < report[j].lastName
	})

	result := make([]models.LowAttendanceRow, len(report))
	for i, f := range report {
		result[i] = f.row
	}

	s.cache.Set(ctx, cacheKey, result)
	return result, nil
}

// AttendanceEntry is one student's status within a save batch.
type AttendanceEntry struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// SaveAttendanceRequest is the attendance write payload.
type SaveAttendanceRequest struct {
	CourseID  string            `json:"course_id" validate:"required"`
	TermID    string            `json:"term_id" validate:"required"`
	Date      string            `json:"date" validate:"required"`
	SectionID string            `json:"section_id"`
	Entries   []AttendanceEntry `json:"entries" validate:"required,min=1"`
}

// SaveResult summarises a write batch.
type SaveResult struct {
	Saved   int    `json:"saved"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// Save upserts a batch of statuses. Membership is recomputed for the exact
// request context first; entries for students outside the resolved set, and
// structurally invalid entries, are silently dropped rather than failing the
// batch. Accepted entries overwrite on (student, course, term, date) and
// stamp the acting instructor.
func (s *AttendanceService) Save(ctx context.Context, instructorID string, req SaveAttendanceRequest) (*SaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := parseSessionDate(req.Date)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.Resolve(ctx, instructorID, req.CourseID, req.TermID, req.SectionID)
	if err != nil {
		return nil, err
	}

	markedBy := instructorID
	accepted := make(map[string]models.Attendance)
	skipped := 0
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(entry.Status)
		if entry.UserID == "" || !status.Valid() || !roster.Contains(entry.UserID) {
			skipped++
			continue
		}
		// Duplicate user ids within one batch collapse to the last entry,
		// matching the upsert's last-write-wins semantics.
		accepted[entry.UserID] = models.Attendance{
			StudentID: entry.UserID,
			CourseID:  req.CourseID,
			TermID:    req.TermID,
			Date:      date,
			Status:    status,
			MarkedBy:  &markedBy,
		}
	}

	records := make([]models.Attendance, 0, len(accepted))
	for _, record := range accepted {
		records = append(records, record)
	}
	saved, err := s.attendance.BulkUpsert(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}

	s.cache.InvalidateCourseTerm(ctx, req.CourseID, req.TermID)
	s.logger.Info("attendance saved",
		zap.String("course_id", req.CourseID),
		zap.String("term_id", req.TermID),
		zap.Int("saved", saved),
		zap.Int("skipped", skipped),
	)

	return &SaveResult{
		Saved:   saved,
		Skipped: skipped,
		Message: fmt.Sprintf("attendance saved for %d students", saved),
	}, nil
}
