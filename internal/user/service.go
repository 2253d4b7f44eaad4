package user

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	userDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/user"
)

// Path is the bespoke endpoint users live under.
const Path = "User"

type RepositoryAPI interface {
	All(ctx context.Context) ([]userDatamodel.User, error)
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

func (s *Service) GetAll(ctx context.Context) ([]User, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, dto.toDataModel())
	if err != nil {
		s.logger.Error("failed to create user", "name", dto.Name, "error", err)
		return "", err
	}

	s.logger.Info("user created", "name", dto.Name, "user_id", id)
	return id, nil
}

// Update changes the profile fields. The password is left as is.
func (s *Service) Update(ctx context.Context, dto UpdateUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	err := s.repo.Update(ctx, userDatamodel.UpdateUser{
		ID:     dto.ID,
		Name:   dto.Name,
		RoleID: dto.RoleID,
		Detail: dto.Detail,
	})
	if err != nil {
		s.logger.Error("failed to update user", "user_id", dto.ID, "error", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return err
	}
	return nil
}

// ChangePassword sets another user's password. The backend only takes it
// as part of a full update, so the current profile is re-read first.
func (s *Service) ChangePassword(ctx context.Context, id, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.NewValidationFieldError("password", "password is required", errors.ErrCodeValidationFailed)
	}

	users, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	current := FindByID(users, id)
	if current == nil {
		return errors.ErrUserNotFound
	}

	err = s.repo.Update(ctx, userDatamodel.UpdateUser{
		ID:       current.ID,
		Name:     current.Name,
		RoleID:   current.RoleID,
		Detail:   current.Detail,
		Password: password,
	})
	if err != nil {
		s.logger.Error("failed to change user password", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("user password changed", "user_id", id)
	return nil
}
