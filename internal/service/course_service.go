package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type instructorSectionReader interface {
	SectionsByInstructor(ctx context.Context, instructorID string) ([]models.InstructorSectionRow, error)
}

// CourseService exposes the read-only course surface for instructors.
type CourseService struct {
	courses instructorSectionReader
	logger  *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses instructorSectionReader, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, logger: logger}
}

// MyCourses returns the courses an instructor currently teaches, grouped
// with the sections assigned to them.
func (s *CourseService) MyCourses(ctx context.Context, instructorID string) ([]models.InstructorCourse, error) {
	if instructorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructor id required")
	}
	rows, err := s.courses.SectionsByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	index := make(map[string]int)
	courses := make([]models.InstructorCourse, 0)
	for _, row := range rows {
		i, ok := index[row.CourseID]
		if !ok {
			i = len(courses)
			index[row.CourseID] = i
			courses = append(courses, models.InstructorCourse{
				Course: models.Course{
					ID:    row.CourseID,
					Code:  row.CourseCode,
					Title: row.CourseTitle,
				},
			})
		}
		courses[i].Sections = append(courses[i].Sections, row.CourseSection)
	}
	return courses, nil
}
