package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type noteRepository interface {
	Create(ctx context.Context, note *models.StudentNote) (*models.StudentNote, error)
	ListByFaculty(ctx context.Context, facultyID, studentID, courseID, termID string) ([]models.StudentNote, error)
	Delete(ctx context.Context, id, facultyID string) (int64, error)
}

// NoteService manages free-form faculty annotations on students. Notes are
// private to the authoring faculty member and play no part in aggregation.
type NoteService struct {
	notes     noteRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(notes noteRepository, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{notes: notes, validator: validate, logger: logger}
}

// CreateNoteRequest is the note creation payload.
type CreateNoteRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	TermID    string `json:"term_id" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

// Create stores a new note authored by the faculty member.
func (s *NoteService) Create(ctx context.Context, facultyID string, req CreateNoteRequest) (*models.StudentNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	note := &models.StudentNote{
		FacultyID: facultyID,
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		TermID:    req.TermID,
		Body:      req.Body,
	}
	stored, err := s.notes.Create(ctx, note)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return stored, nil
}

// List returns the faculty member's notes for a student within a course and
// term.
func (s *NoteService) List(ctx context.Context, facultyID, studentID, courseID, termID string) ([]models.StudentNote, error) {
	if studentID == "" || courseID == "" || termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student, course and term required")
	}
	notes, err := s.notes.ListByFaculty(ctx, facultyID, studentID, courseID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// Delete removes a note owned by the faculty member.
func (s *NoteService) Delete(ctx context.Context, facultyID, noteID string) error {
	if noteID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "note id required")
	}
	affected, err := s.notes.Delete(ctx, noteID, facultyID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "note not found")
	}
	return nil
}
