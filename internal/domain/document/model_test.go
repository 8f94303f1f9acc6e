package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

func validDocument(kind Kind) *Document {
	doc := New(kind, id.New())
	doc.Number = "DOC-001"
	doc.AddItem(id.New(), types.NewQuantityFromFloat64(2), types.MustMoney("10.00"), types.MustMoney("20"))
	return doc
}

func TestAddItemComputesLineAmounts(t *testing.T) {
	doc := New(KindSale, id.New())

	// 2 x 10.00 with 20% tax
	doc.AddItem(id.New(), types.NewQuantityFromFloat64(2), types.MustMoney("10.00"), types.MustMoney("20"))

	require.Len(t, doc.Items, 1)
	it := doc.Items[0]
	assert.Equal(t, 1, it.LineNo)
	assert.Equal(t, "4", it.TaxAmount.String())
	assert.Equal(t, "24", it.LineTotal.String())
}

func TestRecalculateTotals(t *testing.T) {
	doc := New(KindSale, id.New())
	doc.AddItem(id.New(), types.NewQuantityFromFloat64(2), types.MustMoney("10.00"), types.MustMoney("20"))
	doc.AddItem(id.New(), types.NewQuantityFromFloat64(1), types.MustMoney("50.00"), types.MustMoney("10"))

	// subtotal = 20 + 50, tax = 4 + 5
	assert.Equal(t, "70", doc.Subtotal.String())
	assert.Equal(t, "9", doc.TaxTotal.String())
	assert.Equal(t, "79", doc.GrandTotal.String())

	doc.DiscountPercent = types.MustMoney("10")
	doc.RecalculateTotals()

	assert.Equal(t, "7", doc.DiscountTotal.String())
	assert.Equal(t, "72", doc.GrandTotal.String())
}

func TestReplaceItemsRenumbersLines(t *testing.T) {
	doc := validDocument(KindPurchase)

	items := []Item{
		{ProductID: id.New(), Quantity: types.NewQuantityFromFloat64(1), UnitPrice: types.MustMoney("5.00")},
		{ProductID: id.New(), Quantity: types.NewQuantityFromFloat64(3), UnitPrice: types.MustMoney("7.00")},
	}
	doc.ReplaceItems(items)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, 1, doc.Items[0].LineNo)
	assert.Equal(t, 2, doc.Items[1].LineNo)
	assert.Equal(t, "26", doc.Subtotal.String())
}

func TestStockSign(t *testing.T) {
	assert.Equal(t, types.Quantity(1), validDocument(KindPurchase).StockSign())
	assert.Equal(t, types.Quantity(-1), validDocument(KindSale).StockSign())
}

func TestCanModify(t *testing.T) {
	doc := validDocument(KindSale)
	require.NoError(t, doc.CanModify())

	doc.Status = StatusConfirmed
	require.NoError(t, doc.CanModify())

	doc.Status = StatusCancelled
	err := doc.CanModify()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDocumentCancelled, appErr.Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr bool
	}{
		{"valid", func(d *Document) {}, false},
		{"invalid kind", func(d *Document) { d.Kind = "transfer" }, true},
		{"missing number", func(d *Document) { d.Number = "" }, true},
		{"zero date", func(d *Document) { d.Date = time.Time{} }, true},
		{"nil counterparty", func(d *Document) { d.CounterpartyID = id.Nil() }, true},
		{"discount over 100", func(d *Document) { d.DiscountPercent = types.MustMoney("101") }, true},
		{"negative discount", func(d *Document) { d.DiscountPercent = types.MustMoney("-1") }, true},
		{"no items", func(d *Document) { d.Items = nil }, true},
		{"zero quantity", func(d *Document) { d.Items[0].Quantity = 0 }, true},
		{"negative quantity", func(d *Document) { d.Items[0].Quantity = types.NewQuantityFromFloat64(-1) }, true},
		{"negative price", func(d *Document) { d.Items[0].UnitPrice = types.MustMoney("-5") }, true},
		{"negative tax rate", func(d *Document) { d.Items[0].TaxRate = types.MustMoney("-1") }, true},
		{"nil product", func(d *Document) { d.Items[0].ProductID = id.Nil() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument(KindSale)
			tt.mutate(doc)

			err := doc.Validate(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
