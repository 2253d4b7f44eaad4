package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Persisted keys, shared with the web dashboard's local storage layout.
const (
	KeySessionKey = "sessionKey"
	KeyMe         = "me"
	KeyRoles      = "roles"
)

// Store is a persistent string key-value store holding one session.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Cache gives typed access to the three session entries.
type Cache struct {
	store Store
}

func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// SessionKey returns the persisted token or "" when none is stored.
func (c *Cache) SessionKey(ctx context.Context) (string, error) {
	v, ok, err := c.store.Get(ctx, KeySessionKey)
	if err != nil {
		return "", fmt.Errorf("read session key: %w", err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

func (c *Cache) SetSessionKey(ctx context.Context, token string) error {
	if err := c.store.Set(ctx, KeySessionKey, token); err != nil {
		return fmt.Errorf("write session key: %w", err)
	}
	return nil
}

// Me returns the cached current-user document, nil when absent.
func (c *Cache) Me(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, KeyMe)
}

// Roles returns the cached permission-set document, nil when absent.
func (c *Cache) Roles(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, KeyRoles)
}

// Persist overwrites both cached documents.
func (c *Cache) Persist(ctx context.Context, me, roles json.RawMessage) error {
	if err := c.store.Set(ctx, KeyMe, string(me)); err != nil {
		return fmt.Errorf("write cached user: %w", err)
	}
	if err := c.store.Set(ctx, KeyRoles, string(roles)); err != nil {
		return fmt.Errorf("write cached roles: %w", err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

func (c *Cache) getJSON(ctx context.Context, key string) (json.RawMessage, error) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || v == "" {
		return nil, nil
	}
	return json.RawMessage(v), nil
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}
