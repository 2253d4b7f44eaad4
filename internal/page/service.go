package page

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	pageDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/page"
)

const Path = "Page"

// Page is a navigable module; permissions are keyed to it.
type Page = pageDatamodel.Page

type RepositoryAPI interface {
	All(ctx context.Context) ([]pageDatamodel.Page, error)
	Create(ctx context.Context, body interface{}) (string, error)
	Update(ctx context.Context, body interface{}) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAll(ctx context.Context) ([]Page, error) {
	pages, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to list pages", "error", err)
		return nil, err
	}
	return pages, nil
}

func (s *Service) Create(ctx context.Context, p Page) (string, error) {
	p.ID = ""
	if err := validate(p); err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		s.logger.Error("failed to create page", "name", p.Name, "error", err)
		return "", err
	}
	return id, nil
}

// Update sends the four editable fields and nothing else.
func (s *Service) Update(ctx context.Context, p Page) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := validate(p); err != nil {
		return err
	}

	err := s.repo.Update(ctx, pageDatamodel.Page{
		ID:      p.ID,
		Name:    p.Name,
		Detail:  p.Detail,
		IsCache: p.IsCache,
	})
	if err != nil {
		s.logger.Error("failed to update page", "page_id", p.ID, "error", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete page", "page_id", id, "error", err)
		return err
	}
	return nil
}

func validate(p Page) error {
	validator := validation.NewValidator()
	validator.Field("name", p.Name).Required(errors.ErrCodeValidationFailed).MaxLength(200)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
