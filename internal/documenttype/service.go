package documenttype

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	documentTypeDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/documenttype"
	"github.com/frahmantamala/star-supla/internal/object"
	"go.mongodb.org/mongo-driver/bson"
)

const Table = "DocumentTypes"

type DocumentType = documentTypeDatamodel.DocumentType

type RepositoryAPI interface {
	List(ctx context.Context, opts object.ListOptions) (*object.Page[documentTypeDatamodel.DocumentType], error)
	Create(ctx context.Context, data documentTypeDatamodel.DocumentType) (string, error)
	Update(ctx context.Context, id string, data documentTypeDatamodel.DocumentType) error
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

// GetAll lists document types by their display order.
func (s *Service) GetAll(ctx context.Context) ([]DocumentType, error) {
	page, err := s.repo.List(ctx, object.ListOptions{Sort: bson.D{{Key: "order", Value: 1}}})
	if err != nil {
		s.logger.Error("failed to list document types", "error", err)
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Create(ctx context.Context, d DocumentType) (string, error) {
	d.ID = ""
	if err := validate(d); err != nil {
		return "", err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Update(ctx context.Context, d DocumentType) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d.ID, d)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	return s.repo.Delete(ctx, id)
}

func validate(d DocumentType) error {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required(errors.ErrCodeValidationFailed)
	validator.Field("order", d.Order).MinInt(0, errors.ErrCodeValidationFailed)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
