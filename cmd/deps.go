package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/auth"
	"github.com/frahmantamala/star-supla/internal/core/events"
	"github.com/frahmantamala/star-supla/internal/dashboard"
	"github.com/frahmantamala/star-supla/internal/documenttype"
	"github.com/frahmantamala/star-supla/internal/object"
	"github.com/frahmantamala/star-supla/internal/page"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/frahmantamala/star-supla/internal/product"
	"github.com/frahmantamala/star-supla/internal/reservation"
	"github.com/frahmantamala/star-supla/internal/role"
	"github.com/frahmantamala/star-supla/internal/session"
	"github.com/frahmantamala/star-supla/internal/session/file"
	sessionRedis "github.com/frahmantamala/star-supla/internal/session/redis"
	"github.com/frahmantamala/star-supla/internal/session/sqlite"
	"github.com/frahmantamala/star-supla/internal/transport"
	"github.com/frahmantamala/star-supla/internal/user"
	"github.com/frahmantamala/star-supla/pkg/logger"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type Dependencies struct {
	Config        *internal.Config
	Logger        *slog.Logger
	Bus           *events.EventBus
	Auth          *auth.Manager
	Permissions   *permission.Evaluator
	Users         *user.Service
	Roles         *role.Service
	Pages         *page.Service
	Products      *product.Service
	Reservations  *reservation.Service
	DocumentTypes *documenttype.Service
	Dashboard     *dashboard.Service

	closers []func() error
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	deps := &Dependencies{Config: cfg, Logger: lg}

	store, err := deps.initSessionStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	cache := session.NewCache(store)

	deps.Bus = events.NewEventBus(lg)
	client := transport.NewClient(cfg.API, cache, deps.Bus, lg)
	objects := object.NewAPI(client, lg)

	deps.Permissions = permission.NewEvaluator(lg)
	deps.Auth = auth.NewManager(auth.NewAPI(client), cache, deps.Permissions, deps.Bus, lg)

	deps.Users = user.NewService(object.NewCollection[user.User](objects, user.Path), lg)
	deps.Roles = role.NewService(object.NewCollection[role.Role](objects, role.Path), lg)
	deps.Pages = page.NewService(object.NewCollection[page.Page](objects, page.Path), lg)
	deps.Products = product.NewService(object.NewTable[product.Product](objects, product.Table), lg)
	deps.Reservations = reservation.NewService(
		object.NewTable[reservation.Reservation](objects, reservation.Table),
		deps.Products,
		lg,
	)
	deps.DocumentTypes = documenttype.NewService(
		object.NewTable[documenttype.DocumentType](objects, documenttype.Table),
		lg,
	)
	deps.Dashboard = dashboard.NewService(deps.Users, deps.Pages, deps.Roles, deps.Permissions, lg)

	return deps, nil
}

func (d *Dependencies) initSessionStore() (session.Store, error) {
	cfg := d.Config
	switch cfg.Session.Driver {
	case internal.SessionDriverMemory:
		return session.NewMemoryStore(), nil

	case internal.SessionDriverFile:
		return file.New(cfg.Session.Path, cfg.Session.Secret)

	case internal.SessionDriverSQLite:
		repo, err := sqlite.Open(cfg.Session.Path)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, repo.Close)
		return repo, nil

	case internal.SessionDriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		store := sessionRedis.New(client, cfg.Redis.Prefix, cfg.API.ProjectID)
		d.closers = append(d.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
}

func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			d.Logger.Error("failed to close dependency", "error", err)
		}
	}
}

// withDeps builds the dependency graph for one command run.
func withDeps(run func(ctx context.Context, deps *Dependencies, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx := internal.ContextWithTraceID(cmd.Context(), uuid.NewString())
		ctx = logger.With(ctx, "command", cmd.CommandPath())
		return run(ctx, deps, args)
	}
}

// withSession additionally restores the persisted session and waits for
// its revalidation. A failed revalidation keeps the cached session unless
// the backend answered 403.
func withSession(run func(ctx context.Context, deps *Dependencies, args []string) error) func(*cobra.Command, []string) error {
	return withDeps(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := restoreSession(ctx, deps); err != nil {
			return err
		}
		return run(ctx, deps, args)
	})
}

func restoreSession(ctx context.Context, deps *Dependencies) error {
	done, err := deps.Auth.Restore(ctx)
	if err != nil {
		return err
	}

	if err := <-done; err != nil {
		if internal.IsForbidden(err) || deps.Auth.State() != auth.Authenticated {
			return err
		}
		logger.From(ctx).Warn("using cached session", "error", err)
	}
	return nil
}

// requirePage fails unless the session grants action on pageName.
func requirePage(deps *Dependencies, pageName string, action permission.Action) error {
	return deps.Permissions.Require(pageName, action)
}
