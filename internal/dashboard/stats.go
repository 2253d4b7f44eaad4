package dashboard

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/star-supla/internal/page"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/frahmantamala/star-supla/internal/role"
	"github.com/frahmantamala/star-supla/internal/user"
	"golang.org/x/sync/errgroup"
)

type UserLister interface {
	GetAll(ctx context.Context) ([]user.User, error)
}

type PageLister interface {
	GetAll(ctx context.Context) ([]page.Page, error)
}

type RoleLister interface {
	GetAll(ctx context.Context) ([]role.Role, error)
}

type Evaluator interface {
	Evaluate(pageName string) permission.Capabilities
}

// Stats counts what the operator may see. A section without view
// permission stays zero and is never fetched.
type Stats struct {
	Users   int  `json:"users"`
	Pages   int  `json:"pages"`
	Roles   int  `json:"roles"`
	CanView bool `json:"canView"`
}

type Service struct {
	users  UserLister
	pages  PageLister
	roles  RoleLister
	perms  Evaluator
	logger *slog.Logger
}

func NewService(users UserLister, pages PageLister, roles RoleLister, perms Evaluator, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		pages:  pages,
		roles:  roles,
		perms:  perms,
		logger: logger,
	}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	canUsers := s.perms.Evaluate(permission.PageUsers).CanView
	canPages := s.perms.Evaluate(permission.PagePages).CanView
	canRoles := s.perms.Evaluate(permission.PageRoles).CanView

	stats := &Stats{CanView: canUsers || canPages || canRoles}
	if !stats.CanView {
		return stats, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if canUsers {
		g.Go(func() error {
			items, err := s.users.GetAll(gctx)
			stats.Users = len(items)
			return err
		})
	}
	if canPages {
		g.Go(func() error {
			items, err := s.pages.GetAll(gctx)
			stats.Pages = len(items)
			return err
		})
	}
	if canRoles {
		g.Go(func() error {
			items, err := s.roles.GetAll(gctx)
			stats.Roles = len(items)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch dashboard stats", "error", err)
		return nil, err
	}
	return stats, nil
}
