package catalog

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
)

// Reader is the read-only lookup surface consumed by the document processor
// for validation. Every method takes the tenant token; a record belonging to
// another tenant is reported as not found.
type Reader interface {
	// ProductByID returns the product or NotFound.
	ProductByID(ctx context.Context, tid tenant.ID, productID id.ID) (*Product, error)

	// CounterpartyExists reports whether the counterparty exists in this tenant.
	CounterpartyExists(ctx context.Context, tid tenant.ID, counterpartyID id.ID) (bool, error)

	// WarehouseExists reports whether the warehouse exists in this tenant.
	WarehouseExists(ctx context.Context, tid tenant.ID, warehouseID id.ID) (bool, error)
}

// Repository extends Reader with the management operations served by the
// catalog endpoints.
type Repository interface {
	Reader

	CreateProduct(ctx context.Context, tid tenant.ID, p *Product) error
	ListProducts(ctx context.Context, tid tenant.ID, filter ListFilter) ([]Product, error)

	CreateCounterparty(ctx context.Context, tid tenant.ID, c *Counterparty) error
	ListCounterparties(ctx context.Context, tid tenant.ID, filter ListFilter) ([]Counterparty, error)

	CreateWarehouse(ctx context.Context, tid tenant.ID, w *Warehouse) error
	ListWarehouses(ctx context.Context, tid tenant.ID, filter ListFilter) ([]Warehouse, error)
}

// ListFilter for catalog listings.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
