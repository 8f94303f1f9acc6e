// Package stock provides the stock ledger: the only component allowed to
// mutate a product's current balance.
package stock

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/core/types"
)

// Ledger owns the authoritative per-(tenant, product) balance.
//
// Adjust must be implemented as a single conditional statement: for negative
// deltas the statement itself verifies the resulting balance stays
// non-negative and applies the change in the same step. There is no separate
// read-then-write, so two concurrent sales can never both observe sufficient
// stock and overdraw it.
type Ledger interface {
	// Adjust applies signedDelta to the product balance and returns the new
	// balance. Fails with InsufficientStock (naming product and shortfall)
	// when a negative delta would drive the balance below zero, or NotFound
	// when the product does not exist in this tenant. Either failure must
	// abort the enclosing atomic unit.
	//
	// Callers skip service products; Adjust is never invoked for them.
	Adjust(ctx context.Context, tid tenant.ID, productID id.ID, signedDelta types.Quantity) (types.Quantity, error)

	// Balance returns the current balance without locking.
	Balance(ctx context.Context, tid tenant.ID, productID id.ID) (types.Quantity, error)
}

// Level is a post-adjustment stock snapshot for one product, returned to the
// caller so it can surface low/out-of-stock warnings.
type Level struct {
	ProductID   id.ID          `json:"productId"`
	ProductCode string         `json:"productCode"`
	Quantity    types.Quantity `json:"quantity"`
	MinStock    types.Quantity `json:"minStock"`
	IsService   bool           `json:"isService"`
}

// AtOrBelowMin reports whether the level reached the reorder threshold.
// Service products never warn.
func (l Level) AtOrBelowMin() bool {
	return !l.IsService && l.Quantity <= l.MinStock
}
