package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/stock"
)

// Compile-time check.
var _ stock.Ledger = (*StockRepo)(nil)

// StockRepo implements the stock ledger on the products table.
//
// The balance lives in cat_products.current_stock as a scaled BIGINT, which
// lets Adjust check and apply a change in one conditional UPDATE. Two
// concurrent sales serialize on the row lock; the loser re-evaluates the
// WHERE clause against the committed balance and fails cleanly instead of
// overdrawing.
type StockRepo struct {
	txm *TxManager
}

// NewStockRepo creates the stock ledger repository.
func NewStockRepo(txm *TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

const adjustSQL = `
UPDATE cat_products
SET current_stock = current_stock + $3,
    version = version + 1
WHERE tenant_id = $1
  AND id = $2
  AND current_stock + $3 >= 0
RETURNING current_stock`

// Adjust applies signedDelta and returns the new balance. Zero rows updated
// means either the product does not exist in this tenant (NotFound) or the
// condition rejected an overdraw (InsufficientStock); a follow-up read
// distinguishes the two.
func (r *StockRepo) Adjust(ctx context.Context, tid tenant.ID, productID id.ID, signedDelta types.Quantity) (types.Quantity, error) {
	querier := r.txm.GetQuerier(ctx)

	var balance types.Quantity
	err := querier.QueryRow(ctx, adjustSQL, tid.UUID(), productID, int64(signedDelta)).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	available, err := r.Balance(ctx, tid, productID)
	if err != nil {
		return 0, err
	}

	return 0, apperror.NewInsufficientStock(
		productID.String(),
		signedDelta.Neg().Float64(),
		available.Float64(),
	)
}

const balanceSQL = `
SELECT current_stock
FROM cat_products
WHERE tenant_id = $1 AND id = $2`

// Balance returns the current balance without locking.
func (r *StockRepo) Balance(ctx context.Context, tid tenant.ID, productID id.ID) (types.Quantity, error) {
	querier := r.txm.GetQuerier(ctx)

	var balance types.Quantity
	err := querier.QueryRow(ctx, balanceSQL, tid.UUID(), productID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("read stock balance: %w", err)
	}

	return balance, nil
}
