package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type termRepository interface {
	List(ctx context.Context) ([]models.Term, error)
	Active(ctx context.Context) (*models.Term, error)
}

// TermService exposes academic terms for scoping requests.
type TermService struct {
	terms  termRepository
	logger *zap.Logger
}

// NewTermService constructs the term service.
func NewTermService(terms termRepository, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{terms: terms, logger: logger}
}

// List returns all terms, most recent first.
func (s *TermService) List(ctx context.Context) ([]models.Term, error) {
	terms, err := s.terms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	return terms, nil
}

// Active returns the currently active term.
func (s *TermService) Active(ctx context.Context) (*models.Term, error) {
	term, err := s.terms.Active(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}
	return term, nil
}
