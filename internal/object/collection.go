package object

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/transport"
)

// Collection is one of the bespoke endpoints (User, Role, Page) that sit
// outside Obj/. Listing answers with the whole body, writes send plain
// JSON, and delete sends {id}.
type Collection[T any] struct {
	api  *API
	path string
}

func NewCollection[T any](api *API, path string) *Collection[T] {
	return &Collection[T]{api: api, path: path}
}

func (c *Collection[T]) Path() string {
	return c.path
}

// All lists the collection. A bare array body is the normal answer; an
// envelope carrying the array under result is accepted too.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	env, err := c.api.client.Do(ctx, transport.Request{Method: http.MethodGet, Path: c.path})
	if err != nil {
		return nil, err
	}

	raw := env.Raw
	if !bytes.HasPrefix(raw, []byte("[")) && len(env.Result) > 0 {
		raw = env.Result
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.api.logger.Warn("collection payload rejected", "collection", c.path, "error", err)
		return nil, internal.NewParseError("Failed to parse server response", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create posts body and returns the id when the server reports one.
func (c *Collection[T]) Create(ctx context.Context, body interface{}) (string, error) {
	env, err := c.api.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path,
		Body:   body,
	})
	if err != nil {
		return "", err
	}

	id, _ := scalarString(env.Result)
	return id, nil
}

func (c *Collection[T]) Update(ctx context.Context, body interface{}) error {
	_, err := c.api.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   c.path,
		Body:   body,
	})
	return err
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, err := c.api.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   c.path,
		Body:   map[string]string{"id": id},
	})
	return err
}
