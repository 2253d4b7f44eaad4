package object

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/transport"
)

const basePath = "Obj/"

// API is the uniform CRUD client over Obj/{table}. It hides the double
// encoded list payloads and the $oid identifiers from its callers.
type API struct {
	client Doer
	logger *slog.Logger
}

func NewAPI(client Doer, logger *slog.Logger) *API {
	return &API{client: client, logger: logger}
}

func (a *API) List(ctx context.Context, table string, opts ListOptions) (*RawPage, error) {
	query, err := listQuery(opts)
	if err != nil {
		return nil, err
	}

	env, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   tablePath(table),
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(env.Result)
	if err != nil {
		a.logger.Warn("object list payload rejected", "table", table, "error", err)
		return nil, err
	}

	return &RawPage{
		Items:      items,
		TotalCount: env.TotalCount,
		TotalPage:  env.TotalPage,
	}, nil
}

func (a *API) GetByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	env, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   itemPath(table, id),
	})
	if err != nil {
		return nil, err
	}

	item, err := decodeItem(env.Result)
	if err != nil {
		a.logger.Warn("object payload rejected", "table", table, "id", id, "error", err)
		return nil, err
	}
	return item, nil
}

// Create stores data and returns the id the server assigned.
func (a *API) Create(ctx context.Context, table string, data interface{}) (string, error) {
	body, err := encodeDetail(data)
	if err != nil {
		return "", err
	}

	env, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   tablePath(table),
		Body:   body,
	})
	if err != nil {
		return "", err
	}

	id, ok := scalarString(env.Result)
	if !ok {
		return "", internal.NewParseError("Failed to parse server response", fmt.Errorf("create on %s returned no id", table))
	}
	return id, nil
}

func (a *API) Update(ctx context.Context, table, id string, data interface{}) error {
	body, err := encodeDetail(data)
	if err != nil {
		return err
	}

	_, err = a.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   itemPath(table, id),
		Body:   body,
	})
	return err
}

func (a *API) Delete(ctx context.Context, table, id string) error {
	_, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   itemPath(table, id),
	})
	return err
}

func listQuery(opts ListOptions) (url.Values, error) {
	values := url.Values{}

	if len(opts.Query) > 0 {
		q, err := renderDocument(opts.Query)
		if err != nil {
			return nil, err
		}
		values.Set("query", q)
	}

	if len(opts.Sort) > 0 {
		s, err := renderDocument(opts.Sort)
		if err != nil {
			return nil, err
		}
		values.Set("sort", s)
	}

	if opts.PageIndex != nil && opts.PageSize != nil {
		values.Set("pageIndex", strconv.Itoa(*opts.PageIndex))
		values.Set("pageSize", strconv.Itoa(*opts.PageSize))
	}

	return values, nil
}

func tablePath(table string) string {
	return basePath + url.PathEscape(table)
}

func itemPath(table, id string) string {
	return tablePath(table) + "/" + url.PathEscape(id)
}
