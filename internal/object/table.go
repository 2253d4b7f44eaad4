package object

import (
	"context"
	"encoding/json"

	"github.com/frahmantamala/star-supla/internal"
)

// Table binds the object API to one table and one document type.
type Table[T any] struct {
	api  *API
	name string
}

func NewTable[T any](api *API, name string) *Table[T] {
	return &Table[T]{api: api, name: name}
}

func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) List(ctx context.Context, opts ListOptions) (*Page[T], error) {
	raw, err := t.api.List(ctx, t.name, opts)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(raw.Items))
	for _, item := range raw.Items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, internal.NewParseError("Failed to parse server response", err)
		}
		items = append(items, v)
	}

	return &Page[T]{
		Items:      items,
		TotalCount: raw.TotalCount,
		TotalPage:  raw.TotalPage,
	}, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	raw, err := t.api.GetByID(ctx, t.name, id)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, internal.NewParseError("Failed to parse server response", err)
	}
	return &v, nil
}

func (t *Table[T]) Create(ctx context.Context, data T) (string, error) {
	return t.api.Create(ctx, t.name, data)
}

func (t *Table[T]) Update(ctx context.Context, id string, data T) error {
	return t.api.Update(ctx, t.name, id, data)
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	return t.api.Delete(ctx, t.name, id)
}

// Upload stores a file under this table's page name.
func (t *Table[T]) Upload(ctx context.Context, file File, resize bool) (string, error) {
	return t.api.UploadFile(ctx, t.name, file, resize)
}

func (t *Table[T]) DeleteUpload(ctx context.Context, fileURL string) (bool, error) {
	return t.api.DeleteFile(ctx, t.name, fileURL)
}
