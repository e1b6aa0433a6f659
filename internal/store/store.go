package store

import (
	"context"
	"errors"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
)

// ErrNotFound is returned when a lookup or update targets an unknown id.
var ErrNotFound = errors.New("pdf not found")

// Sortable columns of the pdfs table.
const (
	SortName      = "name"
	SortDueDate   = "due_date"
	SortCreatedAt = "created_at"
	SortStatus    = "status"
)

// SortOrder is one ordering term of a page request.
type SortOrder struct {
	Field string
	Desc  bool
}

// PageRequest selects a window of a result set and its ordering.
// A zero Limit means unpaged. Sort defaults to created_at descending.
type PageRequest struct {
	Offset int
	Limit  int
	Sort   []SortOrder
}

// DefaultSort is applied when a PageRequest carries no valid sort order.
var DefaultSort = []SortOrder{{Field: SortCreatedAt, Desc: true}}

// Page is one window of matching records.
type Page struct {
	Items  []model.PDF `json:"items"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

// Store defines the persistence interface for PDF records.
type Store interface {
	// Save inserts p when it has no ID (assigning one) and updates the
	// mutable fields of the existing row otherwise.
	Save(ctx context.Context, p *model.PDF) error

	// FindByID returns ErrNotFound when id does not resolve.
	FindByID(ctx context.Context, id string) (*model.PDF, error)

	FindPage(ctx context.Context, spec query.Spec, page PageRequest) (Page, error)
	Count(ctx context.Context, spec query.Spec) (int, error)

	// FindAllBy lists records without filtering.
	FindAllBy(ctx context.Context, page PageRequest) ([]model.PDF, error)

	// InTx runs fn against a Store bound to a single transaction, committing
	// when fn returns nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
}

// sortOrders filters page.Sort down to known fields, falling back to DefaultSort.
func sortOrders(page PageRequest) []SortOrder {
	var out []SortOrder
	for _, o := range page.Sort {
		switch o.Field {
		case SortName, SortDueDate, SortCreatedAt, SortStatus:
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return DefaultSort
	}
	return out
}
