// Package catalog provides the product, counterparty and warehouse catalogs.
// The document processor consumes the read-only Reader; the management service
// is a thin tenant-scoped CRUD surface on top of the same repository.
package catalog

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

// Product is a catalog item. CurrentStock is the authoritative per-tenant
// balance; it is mutated only by the stock ledger's conditional adjustment,
// never through catalog writes.
type Product struct {
	entity.BaseCatalog

	// Code is unique within a tenant
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	// Unit of measure (pcs, kg, h, ...)
	Unit string `db:"unit" json:"unit"`

	// UnitPrice is the default sale price
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// CurrentStock is the authoritative balance (read-only outside the ledger)
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`

	// MinStock is the reorder threshold, informational only
	MinStock types.Quantity `db:"min_stock" json:"minStock"`

	// IsService marks products exempt from stock tracking
	IsService bool `db:"is_service" json:"isService"`
}

// NewProduct creates a product with generated ID.
func NewProduct(code, name, unit string) *Product {
	return &Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        code,
		Name:        name,
		Unit:        unit,
	}
}

// AtOrBelowMinStock reports whether the balance reached the reorder threshold.
// Always false for service products.
func (p *Product) AtOrBelowMinStock() bool {
	return !p.IsService && p.CurrentStock <= p.MinStock
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}
	if p.MinStock.IsNegative() {
		return apperror.NewValidation("min stock must not be negative").
			WithDetail("field", "minStock")
	}
	return nil
}
