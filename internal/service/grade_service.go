package service

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type transcriptRepository interface {
	ListByCourseTerm(ctx context.Context, courseID, termID string) ([]models.Transcript, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Transcript, error)
	BulkUpsertGrades(ctx context.Context, entries []models.GradeWrite) (int, error)
}

type studentCourseReader interface {
	CoursesByStudent(ctx context.Context, studentID string) ([]models.StudentCourse, error)
}

// GradeService aggregates transcript and mark entries over resolved section
// membership and gates the grade write path.
type GradeService struct {
	roster      membershipResolver
	transcripts transcriptRepository
	enrollments studentCourseReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(roster membershipResolver, transcripts transcriptRepository, enrollments studentCourseReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		roster:      roster,
		transcripts: transcripts,
		enrollments: enrollments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// round2 rounds for display; aggregation keeps full precision until here.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// GradebookRequest scopes the faculty gradebook.
type GradebookRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	TermID    string `json:"term_id" validate:"required"`
	SectionID string `json:"section_id"`
}

// Gradebook returns each visible student's current grade, or nulls when
// ungraded. The letter-to-points table is a UI default only; the stored
// grade_points value is authoritative.
func (s *GradeService) Gradebook(ctx context.Context, instructorID string, req GradebookRequest) ([]models.GradebookRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gradebook filter")
	}
	roster, err := s.roster.Resolve(ctx, instructorID, req.CourseID, req.TermID, req.SectionID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:course:%s:term:%s:gradebook:%s:%s", req.CourseID, req.TermID, req.SectionID, instructorID)
	var cached []models.GradebookRow
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	transcripts, err := s.transcripts.ListByCourseTerm(ctx, req.CourseID, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcripts")
	}
	byStudent := make(map[string]models.Transcript, len(transcripts))
	for _, t := range transcripts {
		byStudent[t.StudentID] = t
	}

	rows := make([]models.GradebookRow, 0, len(roster.Students))
	for _, student := range roster.Students {
		row := models.GradebookRow{
			UserID:    student.UserID,
			StudentNo: student.StudentNo,
			Name:      student.Name(),
			Section:   student.Section,
		}
		if t, ok := byStudent[student.UserID]; ok {
			row.Grade = t.Grade
			row.GradePoints = t.GradePoints
		}
		rows = append(rows, row)
	}

	s.cache.Set(ctx, cacheKey, rows)
	return rows, nil
}

// GradeEntry is one student's grade within a save batch.
type GradeEntry struct {
	UserID      string   `json:"user_id"`
	Grade       *string  `json:"grade"`
	GradePoints *float64 `json:"grade_points"`
}

// SaveGradesRequest is the grade write payload.
type SaveGradesRequest struct {
	CourseID  string       `json:"course_id" validate:"required"`
	TermID    string       `json:"term_id" validate:"required"`
	SectionID string       `json:"section_id"`
	Entries   []GradeEntry `json:"entries" validate:"required,min=1"`
}

// SaveGrades upserts a batch of grades keyed on (student, course, term).
// Membership is recomputed for the exact request context first; entries for
// students outside the resolved set, and structurally invalid entries, are
// silently dropped rather than failing the batch.
func (s *GradeService) SaveGrades(ctx context.Context, instructorID string, req SaveGradesRequest) (*SaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grades payload")
	}
	roster, err := s.roster.Resolve(ctx, instructorID, req.CourseID, req.TermID, req.SectionID)
	if err != nil {
		return nil, err
	}

	accepted := make(map[string]models.GradeWrite)
	skipped := 0
	for _, entry := range req.Entries {
		if entry.UserID == "" || !roster.Contains(entry.UserID) {
			skipped++
			continue
		}
		if entry.Grade != nil {
			if _, known := models.GradePointsForLetter(*entry.Grade); !known {
				skipped++
				continue
			}
		}
		accepted[entry.UserID] = models.GradeWrite{
			StudentID:   entry.UserID,
			CourseID:    req.CourseID,
			TermID:      req.TermID,
			Grade:       entry.Grade,
			GradePoints: entry.GradePoints,
			Status:      models.TranscriptStatusDraft,
		}
	}

	writes := make([]models.GradeWrite, 0, len(accepted))
	for _, w := range accepted {
		writes = append(writes, w)
	}
	saved, err := s.transcripts.BulkUpsertGrades(ctx, writes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grades")
	}

	s.cache.InvalidateCourseTerm(ctx, req.CourseID, req.TermID)
	s.logger.Info("grades saved",
		zap.String("course_id", req.CourseID),
		zap.String("term_id", req.TermID),
		zap.Int("saved", saved),
		zap.Int("skipped", skipped),
	)

	return &SaveResult{
		Saved:   saved,
		Skipped: skipped,
		Message: fmt.Sprintf("grades saved for %d students", saved),
	}, nil
}

// StudentMarks returns the student's itemized component scores per enrolled
// course, each alongside anonymous class statistics computed across all
// students' marks for that course and term. Students with no submission for
// a component are excluded from that component's statistics, never counted
// as zero.
func (s *GradeService) StudentMarks(ctx context.Context, studentID string) ([]models.CourseMarks, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	courses, err := s.enrollments.CoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled courses")
	}
	own, err := s.transcripts.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcripts")
	}
	ownByCourseTerm := make(map[string]models.Transcript, len(own))
	for _, t := range own {
		ownByCourseTerm[t.CourseID+"|"+t.TermID] = t
	}

	result := make([]models.CourseMarks, 0, len(courses))
	for _, course := range courses {
		classRows, err := s.transcripts.ListByCourseTerm(ctx, course.CourseID, course.TermID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class marks")
		}

		marks := make(map[string]*float64, len(models.ComponentOrder))
		total := 0.0
		if t, ok := ownByCourseTerm[course.CourseID+"|"+course.TermID]; ok {
			for _, code := range models.ComponentOrder {
				if v := t.ComponentScore(code); v != nil {
					rounded := round2(*v)
					marks[code] = &rounded
				} else {
					marks[code] = nil
				}
			}
			total = round2(t.Total())
		} else {
			for _, code := range models.ComponentOrder {
				marks[code] = nil
			}
		}

		result = append(result, models.CourseMarks{
			CourseCode:  course.CourseCode,
			CourseTitle: course.CourseTitle,
			TermName:    course.TermName,
			Marks:       marks,
			Total:       total,
			Stats:       componentStats(classRows),
		})
	}
	return result, nil
}

// componentStats computes min/max/avg per assessment component across the
// class, skipping missing submissions.
func componentStats(rows []models.Transcript) map[string]models.ComponentStats {
	stats := make(map[string]models.ComponentStats)
	for _, code := range models.ComponentOrder {
		min, max, sum := math.MaxFloat64, -math.MaxFloat64, 0.0
		count := 0
		for i := range rows {
			v := rows[i].ComponentScore(code)
			if v == nil {
				continue
			}
			count++
			sum += *v
			if *v < min {
				min = *v
			}
			if *v > max {
				max = *v
			}
		}
		if count == 0 {
			continue
		}
		stats[code] = models.ComponentStats{
			Min: round2(min),
			Max: round2(max),
			Avg: round2(sum / float64(count)),
		}
	}
	return stats
}
