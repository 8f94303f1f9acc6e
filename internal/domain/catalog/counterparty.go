package catalog

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
)

// CounterpartyKind distinguishes suppliers from clients.
// A counterparty may act as both.
type CounterpartyKind string

const (
	CounterpartySupplier CounterpartyKind = "supplier"
	CounterpartyClient   CounterpartyKind = "client"
	CounterpartyBoth     CounterpartyKind = "both"
)

// Counterparty is a supplier or client referenced by documents.
type Counterparty struct {
	entity.BaseCatalog

	Code string           `db:"code" json:"code"`
	Name string           `db:"name" json:"name"`
	Kind CounterpartyKind `db:"kind" json:"kind"`
	TaxID string          `db:"tax_id" json:"taxId,omitempty"`
}

// NewCounterparty creates a counterparty with generated ID.
func NewCounterparty(code, name string, kind CounterpartyKind) *Counterparty {
	return &Counterparty{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        code,
		Name:        name,
		Kind:        kind,
	}
}

// Validate implements entity.Validatable.
func (c *Counterparty) Validate(ctx context.Context) error {
	if c.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	switch c.Kind {
	case CounterpartySupplier, CounterpartyClient, CounterpartyBoth:
	default:
		return apperror.NewValidation("invalid counterparty kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}
	return nil
}

// Warehouse is a storage location optionally referenced by documents.
type Warehouse struct {
	entity.BaseCatalog

	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// NewWarehouse creates a warehouse with generated ID.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	if w.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if w.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
