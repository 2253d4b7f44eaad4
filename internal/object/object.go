package object

import (
	"context"
	"encoding/json"

	"github.com/frahmantamala/star-supla/internal/transport"
	"go.mongodb.org/mongo-driver/bson"
)

// Doer is the slice of the transport client the object API needs.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Envelope, error)
	Upload(ctx context.Context, up transport.Upload) (*transport.Envelope, error)
}

// ListOptions narrows a table listing. Query and Sort are ordered documents
// sent as JSON; paging is only sent when both fields are set.
type ListOptions struct {
	Query     bson.D
	Sort      bson.D
	PageIndex *int
	PageSize  *int
}

// Paged sets both paging fields.
func (o ListOptions) Paged(index, size int) ListOptions {
	o.PageIndex = &index
	o.PageSize = &size
	return o
}

type Page[T any] struct {
	Items      []T
	TotalCount *int
	TotalPage  *int
}

// RawPage is a listing whose items are normalized but still undecoded.
type RawPage = Page[json.RawMessage]
