package dto

import (
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/document"
)

// DocumentItemRequest is one requested document line.
type DocumentItemRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
	TaxRate   types.Money    `json:"taxRate"`
}

// CreateDocumentRequest creates a purchase or sale document.
// Kind comes from the route, not the body.
type CreateDocumentRequest struct {
	Number          string                `json:"number" binding:"required"`
	Date            *time.Time            `json:"date"`
	CounterpartyID  string                `json:"counterpartyId" binding:"required"`
	WarehouseID     *string               `json:"warehouseId"`
	Currency        string                `json:"currency"`
	DiscountPercent types.Money           `json:"discountPercent"`
	Comment         string                `json:"comment"`
	Items           []DocumentItemRequest `json:"items" binding:"required"`
	Confirm         bool                  `json:"confirm"`
}

// ToCreateInput converts the request into processor input.
func (r CreateDocumentRequest) ToCreateInput(kind document.Kind) (document.CreateInput, error) {
	counterpartyID, err := id.Parse(r.CounterpartyID)
	if err != nil {
		return document.CreateInput{}, apperror.NewValidation("invalid counterparty id").
			WithDetail("field", "counterpartyId")
	}

	in := document.CreateInput{
		Kind:            kind,
		Number:          r.Number,
		CounterpartyID:  counterpartyID,
		Currency:        r.Currency,
		DiscountPercent: r.DiscountPercent,
		Comment:         r.Comment,
		Confirm:         r.Confirm,
	}

	if r.Date != nil {
		in.Date = *r.Date
	}

	if r.WarehouseID != nil && *r.WarehouseID != "" {
		warehouseID, err := id.Parse(*r.WarehouseID)
		if err != nil {
			return document.CreateInput{}, apperror.NewValidation("invalid warehouse id").
				WithDetail("field", "warehouseId")
		}
		in.WarehouseID = &warehouseID
	}

	items, err := toItemInputs(r.Items)
	if err != nil {
		return document.CreateInput{}, err
	}
	in.Items = items

	return in, nil
}

// UpdateDocumentRequest patches header fields and replaces the item set.
// Items are always required: partial item updates are not supported.
type UpdateDocumentRequest struct {
	Date            *time.Time            `json:"date"`
	CounterpartyID  *string               `json:"counterpartyId"`
	WarehouseID     *string               `json:"warehouseId"`
	Currency        *string               `json:"currency"`
	DiscountPercent *types.Money          `json:"discountPercent"`
	Comment         *string               `json:"comment"`
	Items           []DocumentItemRequest `json:"items" binding:"required"`
}

// ToUpdateInput converts the request into processor input.
func (r UpdateDocumentRequest) ToUpdateInput() (document.UpdateInput, error) {
	in := document.UpdateInput{
		Date:            r.Date,
		Currency:        r.Currency,
		DiscountPercent: r.DiscountPercent,
		Comment:         r.Comment,
	}

	if r.CounterpartyID != nil {
		counterpartyID, err := id.Parse(*r.CounterpartyID)
		if err != nil {
			return document.UpdateInput{}, apperror.NewValidation("invalid counterparty id").
				WithDetail("field", "counterpartyId")
		}
		in.CounterpartyID = &counterpartyID
	}

	if r.WarehouseID != nil && *r.WarehouseID != "" {
		warehouseID, err := id.Parse(*r.WarehouseID)
		if err != nil {
			return document.UpdateInput{}, apperror.NewValidation("invalid warehouse id").
				WithDetail("field", "warehouseId")
		}
		in.WarehouseID = &warehouseID
	}

	items, err := toItemInputs(r.Items)
	if err != nil {
		return document.UpdateInput{}, err
	}
	in.Items = items

	return in, nil
}

func toItemInputs(items []DocumentItemRequest) ([]document.ItemInput, error) {
	out := make([]document.ItemInput, 0, len(items))
	for i, it := range items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		out = append(out, document.ItemInput{
			ProductID: productID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			TaxRate:   it.TaxRate,
		})
	}
	return out, nil
}
