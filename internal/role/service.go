package role

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	roleDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/role"
)

const Path = "Role"

type RepositoryAPI interface {
	All(ctx context.Context) ([]roleDatamodel.Role, error)
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

func (s *Service) GetAll(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	return roles, nil
}

// GetByID looks the role up in the full listing; the backend has no
// single-role read.
func (s *Service) GetByID(ctx context.Context, id string) (*Role, error) {
	roles, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if roles[i].ID == id {
			return &roles[i], nil
		}
	}
	return nil, errors.ErrRoleNotFound
}

func (s *Service) Create(ctx context.Context, r Role) (string, error) {
	r.ID = ""
	if err := Validate(r); err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, r)
	if err != nil {
		s.logger.Error("failed to create role", "name", r.Name, "error", err)
		return "", err
	}

	s.logger.Info("role created", "name", r.Name, "role_id", id)
	return id, nil
}

func (s *Service) Update(ctx context.Context, r Role) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := Validate(r); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		s.logger.Error("failed to update role", "role_id", r.ID, "error", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete role", "role_id", id, "error", err)
		return err
	}
	return nil
}
