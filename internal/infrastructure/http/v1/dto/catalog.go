package dto

import (
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalog"
)

// CreateProductRequest creates a catalog product.
type CreateProductRequest struct {
	Code         string         `json:"code" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	Unit         string         `json:"unit"`
	UnitPrice    types.Money    `json:"unitPrice"`
	CurrentStock types.Quantity `json:"currentStock"`
	MinStock     types.Quantity `json:"minStock"`
	IsService    bool           `json:"isService"`
}

// ToEntity converts the request to a catalog product.
func (r CreateProductRequest) ToEntity() *catalog.Product {
	p := catalog.NewProduct(r.Code, r.Name, r.Unit)
	p.UnitPrice = r.UnitPrice
	p.CurrentStock = r.CurrentStock
	p.MinStock = r.MinStock
	p.IsService = r.IsService
	return p
}

// CreateCounterpartyRequest creates a counterparty.
type CreateCounterpartyRequest struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Kind  string `json:"kind" binding:"required"`
	TaxID string `json:"taxId"`
}

// ToEntity converts the request to a counterparty.
func (r CreateCounterpartyRequest) ToEntity() *catalog.Counterparty {
	c := catalog.NewCounterparty(r.Code, r.Name, catalog.CounterpartyKind(r.Kind))
	c.TaxID = r.TaxID
	return c
}

// CreateWarehouseRequest creates a warehouse.
type CreateWarehouseRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// ToEntity converts the request to a warehouse.
func (r CreateWarehouseRequest) ToEntity() *catalog.Warehouse {
	return catalog.NewWarehouse(r.Code, r.Name)
}
