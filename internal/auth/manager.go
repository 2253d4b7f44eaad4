package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/events"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/frahmantamala/star-supla/internal/session"
	"golang.org/x/sync/errgroup"
)

// Bus is the part of the event bus the manager needs.
type Bus interface {
	events.Publisher
	Subscribe(eventType string, handler events.Handler)
}

// Manager owns the session lifecycle: login, logout, forced logout and
// restoring a persisted session.
type Manager struct {
	api       *API
	cache     *session.Cache
	evaluator *permission.Evaluator
	bus       Bus
	logger    *slog.Logger

	mu         sync.RWMutex
	state      State
	user       *CurrentUser
	lastErr    error
	generation uint64
}

// NewManager subscribes the manager to forbidden responses, so every 403
// seen by the transport ends the session.
func NewManager(api *API, cache *session.Cache, evaluator *permission.Evaluator, bus Bus, logger *slog.Logger) *Manager {
	m := &Manager{
		api:       api,
		cache:     cache,
		evaluator: evaluator,
		bus:       bus,
		logger:    logger,
	}
	bus.Subscribe(events.SessionForbiddenEvent, m.handleForbidden)
	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) CurrentUser() *CurrentUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// LastError is the most recent failed revalidation, nil after a success.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) Permissions() *permission.Evaluator {
	return m.evaluator
}

// Login authenticates, then fetches the current user and permission set
// concurrently. Either fetch failing tears the whole session down.
func (m *Manager) Login(ctx context.Context, dto LoginDTO) (*CurrentUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	gen := m.begin()

	token, err := m.api.Login(ctx, dto)
	if err != nil {
		m.abort(gen)
		return nil, err
	}
	if err := m.cache.SetSessionKey(ctx, token); err != nil {
		m.abort(gen)
		return nil, internal.NewInternalError("failed to persist session key", err)
	}

	me, roles, err := m.fetch(ctx)
	if err == nil {
		err = m.establish(ctx, gen, me, roles)
	}
	if err != nil {
		m.logger.Warn("login aborted, clearing session", "user_name", dto.Name, "error", err)
		if tdErr := m.teardown(ctx, false); tdErr != nil {
			return nil, errors.Join(err, tdErr)
		}
		return nil, err
	}

	user := m.CurrentUser()
	m.logger.Info("session established", "user_name", user.Name, "super_admin", m.evaluator.IsSuperAdmin())
	m.publish(ctx, events.NewSessionEstablished(user.Name, m.evaluator.IsSuperAdmin()))
	return user, nil
}

// Logout clears every persisted session entry.
func (m *Manager) Logout(ctx context.Context) error {
	return m.teardown(ctx, false)
}

// Restore applies the cached user and permissions right away, then
// revalidates them against the backend in the background. The channel
// yields the revalidation outcome once. Without a persisted session key
// Restore fails with ErrNotAuthenticated.
func (m *Manager) Restore(ctx context.Context) (<-chan error, error) {
	token, err := m.cache.SessionKey(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to read session", err)
	}
	if token == "" {
		m.setState(Unauthenticated)
		return nil, internal.ErrNotAuthenticated
	}

	me, err := m.cache.Me(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to read cached user", err)
	}
	roles, err := m.cache.Roles(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to read cached roles", err)
	}

	if me != nil && roles != nil {
		if err := m.apply(me, roles); err != nil {
			m.logger.Warn("cached session is unreadable, waiting for revalidation", "error", err)
			m.setState(Authenticating)
		}
	} else {
		m.setState(Authenticating)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.Revalidate(ctx)
		close(done)
	}()
	return done, nil
}

// Revalidate refetches the current user and permission set. A failure is
// recorded for display but does not log out; only a 403 does that.
func (m *Manager) Revalidate(ctx context.Context) error {
	m.mu.RLock()
	gen := m.generation
	m.mu.RUnlock()

	me, roles, err := m.fetch(ctx)
	if err == nil {
		err = m.establish(ctx, gen, me, roles)
	}
	if err != nil {
		m.mu.Lock()
		superseded := m.generation != gen
		if !superseded {
			m.lastErr = err
			if m.user == nil && m.state == Authenticating {
				m.state = Unauthenticated
			}
		}
		m.mu.Unlock()

		if !superseded && !internal.IsForbidden(err) {
			m.logger.Warn("session revalidation failed, keeping cached session", "error", err)
			m.publish(ctx, events.NewSessionStale(err.Error()))
		}
		return err
	}

	m.logger.Debug("session revalidated")
	return nil
}

// ChangePassword changes the logged-in user's own password.
func (m *Manager) ChangePassword(ctx context.Context, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if m.State() != Authenticated {
		return internal.ErrNotAuthenticated
	}
	return m.api.ChangeOwnPassword(ctx, dto.Password)
}

func (m *Manager) handleForbidden(ctx context.Context, event events.Event) error {
	forbidden, _ := event.(events.SessionForbidden)
	m.logger.Warn("forbidden response, forcing logout", "method", forbidden.Method, "path", forbidden.Path)
	return m.teardown(ctx, true)
}

func (m *Manager) fetch(ctx context.Context) (me, roles json.RawMessage, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		me, err = m.api.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		roles, err = m.api.MyRoles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return me, roles, nil
}

// establish persists and applies a fetched session unless a logout or a
// newer login happened meanwhile.
func (m *Manager) establish(ctx context.Context, gen uint64, me, roles json.RawMessage) error {
	m.mu.RLock()
	current := m.generation
	m.mu.RUnlock()
	if current != gen {
		return internal.ErrNotAuthenticated
	}

	if _, err := DecodeCurrentUser(me); err != nil {
		return err
	}
	if _, err := permission.Decode(roles); err != nil {
		return err
	}
	if err := m.cache.Persist(ctx, me, roles); err != nil {
		return internal.NewInternalError("failed to persist session", err)
	}
	return m.apply(me, roles)
}

func (m *Manager) apply(me, roles json.RawMessage) error {
	user, err := DecodeCurrentUser(me)
	if err != nil {
		return err
	}
	set, err := permission.Decode(roles)
	if err != nil {
		return err
	}

	m.evaluator.Replace(set)

	m.mu.Lock()
	m.user = user
	m.state = Authenticated
	m.lastErr = nil
	m.mu.Unlock()
	return nil
}

func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.state = Authenticating
	return m.generation
}

func (m *Manager) abort(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		m.state = Unauthenticated
	}
}

func (m *Manager) teardown(ctx context.Context, forced bool) error {
	m.mu.Lock()
	m.generation++
	m.state = Unauthenticated
	m.user = nil
	m.lastErr = nil
	m.mu.Unlock()

	m.evaluator.Replace(nil)

	if err := m.cache.Clear(ctx); err != nil {
		m.logger.Error("failed to clear session", "error", err)
		return internal.NewInternalError("failed to clear session", err)
	}

	m.publish(ctx, events.NewSessionEnded(forced))
	return nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if err := m.bus.PublishSync(ctx, event); err != nil {
		m.logger.Error("session event handler failed", "event_type", event.EventType(), "error", err)
	}
}
