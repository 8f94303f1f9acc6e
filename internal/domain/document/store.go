package document

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
)

// Store persists documents and their items. Every method takes the tenant
// token; a document belonging to another tenant is reported as NotFound,
// which neutralizes cross-tenant access attempts beyond the resolver.
type Store interface {
	// Create inserts header and items. Fails with DuplicateDocumentNumber
	// when the number is already taken within the tenant (enforced by the
	// storage constraint, not a prior read).
	Create(ctx context.Context, tid tenant.ID, doc *Document) error

	// GetByID returns the document with items, or NotFound.
	GetByID(ctx context.Context, tid tenant.ID, docID id.ID) (*Document, error)

	// Update writes the header with optimistic locking.
	Update(ctx context.Context, tid tenant.ID, doc *Document) error

	// ReplaceItems swaps the stored item set for the document.
	ReplaceItems(ctx context.Context, tid tenant.ID, docID id.ID, items []Item) error

	// List returns documents matching the filter.
	List(ctx context.Context, tid tenant.ID, filter ListFilter) (ListResult, error)
}

// ListFilter for filtering documents.
type ListFilter struct {
	Kind           *Kind
	Status         *Status
	CounterpartyID *id.ID
	WarehouseID    *id.ID
	DateFrom       *time.Time
	DateTo         *time.Time
	Search         string
	Limit          int
	Offset         int
}

// ListResult is a paginated document listing.
type ListResult struct {
	Items      []*Document `json:"items"`
	TotalCount int         `json:"totalCount"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
