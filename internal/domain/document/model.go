// Package document provides purchase and sale trade documents and the
// processor that applies them to the stock ledger as one atomic unit.
package document

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// Kind distinguishes purchases (stock in) from sales (stock out).
// Both share the same document shape; only the stock-delta sign differs.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSale     Kind = "sale"
)

// Status is the document lifecycle state.
// Only confirmed documents carry ledger deltas.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

var hundred = decimal.NewFromInt(100)

// Document is a purchase or sale record. Totals are derived from items on
// every write and never taken from the caller.
type Document struct {
	entity.BaseDocument

	Kind   Kind   `db:"kind" json:"kind"`
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// CounterpartyID is the supplier (purchase) or client (sale)
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`

	// WarehouseID is optional
	WarehouseID *id.ID `db:"warehouse_id" json:"warehouseId,omitempty"`

	Currency string `db:"currency" json:"currency"`
	Status   Status `db:"status" json:"status"`

	// DiscountPercent is a document-level discount applied to the subtotal
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	// Derived totals
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	GrandTotal    types.Money `db:"grand_total" json:"grandTotal"`

	Comment string `db:"comment" json:"comment,omitempty"`

	// Table part
	Items []Item `db:"-" json:"items"`
}

// Item is one document line referencing a product.
type Item struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	// TaxRate is a percentage (e.g. 20 for 20%)
	TaxRate types.Money `db:"tax_rate" json:"taxRate"`

	// Derived amounts
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// New creates a document with generated ID in draft status.
func New(kind Kind, counterpartyID id.ID) *Document {
	return &Document{
		BaseDocument:    entity.NewBaseDocument(),
		Kind:            kind,
		Date:            time.Now().UTC(),
		CounterpartyID:  counterpartyID,
		Currency:        "USD",
		Status:          StatusDraft,
		DiscountPercent: decimal.Zero,
		Subtotal:        decimal.Zero,
		TaxTotal:        decimal.Zero,
		DiscountTotal:   decimal.Zero,
		GrandTotal:      decimal.Zero,
		Items:           make([]Item, 0),
	}
}

// AddItem appends a line and recalculates totals.
func (d *Document) AddItem(productID id.ID, quantity types.Quantity, unitPrice, taxRate types.Money) {
	base := unitPrice.Mul(quantity.Decimal())
	tax := base.Mul(taxRate).Div(hundred).Round(2)

	d.Items = append(d.Items, Item{
		LineID:    id.New(),
		LineNo:    len(d.Items) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		TaxRate:   taxRate,
		TaxAmount: tax,
		LineTotal: base.Add(tax),
	})
	d.RecalculateTotals()
}

// ReplaceItems swaps the full item set, renumbers lines and recalculates totals.
func (d *Document) ReplaceItems(items []Item) {
	d.Items = make([]Item, 0, len(items))
	for _, it := range items {
		d.AddItem(it.ProductID, it.Quantity, it.UnitPrice, it.TaxRate)
	}
}

// RecalculateTotals rebuilds the derived totals from items.
// Subtotal excludes tax; grand total = subtotal + tax - discount.
func (d *Document) RecalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, it := range d.Items {
		subtotal = subtotal.Add(it.LineTotal.Sub(it.TaxAmount))
		tax = tax.Add(it.TaxAmount)
	}
	d.Subtotal = subtotal
	d.TaxTotal = tax
	d.DiscountTotal = subtotal.Mul(d.DiscountPercent).Div(hundred).Round(2)
	d.GrandTotal = subtotal.Add(tax).Sub(d.DiscountTotal)
}

// StockSign returns +1 for purchases and -1 for sales.
func (d *Document) StockSign() types.Quantity {
	if d.Kind == KindSale {
		return -1
	}
	return 1
}

// IsConfirmed reports whether ledger deltas are currently applied.
func (d *Document) IsConfirmed() bool {
	return d.Status == StatusConfirmed
}

// CanModify checks if the document accepts updates.
// Cancelled documents are immutable.
func (d *Document) CanModify() error {
	if d.Status == StatusCancelled {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentCancelled,
			"Cannot modify cancelled document",
		).WithDetail("document_id", d.ID.String())
	}
	return nil
}

// Validate implements entity.Validatable.
func (d *Document) Validate(ctx context.Context) error {
	switch d.Kind {
	case KindPurchase, KindSale:
	default:
		return apperror.NewValidation("invalid document kind").
			WithDetail("field", "kind").
			WithDetail("value", string(d.Kind))
	}

	if d.Number == "" {
		return apperror.NewValidation("document number is required").
			WithDetail("field", "number")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if id.IsNil(d.CounterpartyID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterpartyId")
	}

	if d.DiscountPercent.IsNegative() || d.DiscountPercent.GreaterThan(hundred) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}

	if len(d.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, it := range d.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !it.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.TaxRate.IsNegative() {
			return apperror.NewValidation("tax rate must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
