package document

import (
	"bytes"
	"sort"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// Delta is the signed stock change for one product derived from a document's
// items. Purchases produce positive quantities, sales negative ones.
type Delta struct {
	ProductID id.ID
	Quantity  types.Quantity
}

// Deltas returns one delta per item in ascending line-number order, signed by
// the document kind. The ordering has no correctness impact (each product's
// delta is independent) but keeps ledger application deterministic.
func (d *Document) Deltas() []Delta {
	sign := d.StockSign()
	out := make([]Delta, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, Delta{
			ProductID: it.ProductID,
			Quantity:  it.Quantity * sign,
		})
	}
	return out
}

// Reversal returns the exact inverse of deltas.
func Reversal(deltas []Delta) []Delta {
	out := make([]Delta, 0, len(deltas))
	for _, dl := range deltas {
		out = append(out, Delta{ProductID: dl.ProductID, Quantity: dl.Quantity.Neg()})
	}
	return out
}

// NetDeltas folds the reversal of old and the application of new into one
// delta per product, dropping zero nets. A changed product id on a line nets
// out as reverse-old-product + charge-new-product. Result is sorted by
// product id for deterministic application order.
func NetDeltas(old, new []Delta) []Delta {
	net := make(map[id.ID]types.Quantity)
	for _, dl := range old {
		net[dl.ProductID] -= dl.Quantity
	}
	for _, dl := range new {
		net[dl.ProductID] += dl.Quantity
	}

	out := make([]Delta, 0, len(net))
	for pid, qty := range net {
		if qty.IsZero() {
			continue
		}
		out = append(out, Delta{ProductID: pid, Quantity: qty})
	}

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ProductID[:], out[j].ProductID[:]) < 0
	})
	return out
}
