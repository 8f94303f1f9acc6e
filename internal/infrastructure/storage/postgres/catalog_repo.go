package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/domain/catalog"
)

const (
	productsTable       = "cat_products"
	counterpartiesTable = "cat_counterparties"
	warehousesTable     = "cat_warehouses"
)

// Compile-time check.
var _ catalog.Repository = (*CatalogRepo)(nil)

// CatalogRepo is the PostgreSQL catalog repository.
//
// All tenants share one database; every query carries a tenant_id predicate
// taken from the tenant token, so a row of another tenant is never visible
// and reads back as NotFound.
type CatalogRepo struct {
	txm *TxManager

	productCols      []string
	counterpartyCols []string
	warehouseCols    []string
}

// NewCatalogRepo creates the catalog repository.
func NewCatalogRepo(txm *TxManager) *CatalogRepo {
	return &CatalogRepo{
		txm:              txm,
		productCols:      ExtractDBColumns[catalog.Product](),
		counterpartyCols: ExtractDBColumns[catalog.Counterparty](),
		warehouseCols:    ExtractDBColumns[catalog.Warehouse](),
	}
}

func (r *CatalogRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ProductByID returns the product or NotFound.
func (r *CatalogRepo) ProductByID(ctx context.Context, tid tenant.ID, productID id.ID) (*catalog.Product, error) {
	q := r.builder().
		Select(r.productCols...).
		From(productsTable).
		Where(squirrel.Eq{"tenant_id": tid.UUID(), "id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// CounterpartyExists reports whether the counterparty exists in this tenant.
func (r *CatalogRepo) CounterpartyExists(ctx context.Context, tid tenant.ID, counterpartyID id.ID) (bool, error) {
	return r.exists(ctx, counterpartiesTable, tid, counterpartyID)
}

// WarehouseExists reports whether the warehouse exists in this tenant.
func (r *CatalogRepo) WarehouseExists(ctx context.Context, tid tenant.ID, warehouseID id.ID) (bool, error) {
	return r.exists(ctx, warehousesTable, tid, warehouseID)
}

func (r *CatalogRepo) exists(ctx context.Context, table string, tid tenant.ID, entityID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(table).
		Where(squirrel.Eq{"tenant_id": tid.UUID(), "id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", table, err)
	}

	return true, nil
}

// CreateProduct inserts a product. A taken code within the tenant is reported
// as Duplicate via the unique constraint.
func (r *CatalogRepo) CreateProduct(ctx context.Context, tid tenant.ID, p *catalog.Product) error {
	return r.insert(ctx, productsTable, tid, p, r.productCols, "product")
}

// CreateCounterparty inserts a counterparty.
func (r *CatalogRepo) CreateCounterparty(ctx context.Context, tid tenant.ID, c *catalog.Counterparty) error {
	return r.insert(ctx, counterpartiesTable, tid, c, r.counterpartyCols, "counterparty")
}

// CreateWarehouse inserts a warehouse.
func (r *CatalogRepo) CreateWarehouse(ctx context.Context, tid tenant.ID, w *catalog.Warehouse) error {
	return r.insert(ctx, warehousesTable, tid, w, r.warehouseCols, "warehouse")
}

func (r *CatalogRepo) insert(ctx context.Context, table string, tid tenant.ID, entity any, cols []string, entityName string) error {
	data := StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(cols)+1)
	for _, col := range cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	filtered["tenant_id"] = tid.UUID()

	q := r.builder().
		Insert(table).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			code, _ := data["code"].(string)
			return apperror.NewDuplicate(entityName, "code", code).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}

	return nil
}

// ListProducts lists tenant products ordered by code.
func (r *CatalogRepo) ListProducts(ctx context.Context, tid tenant.ID, filter catalog.ListFilter) ([]catalog.Product, error) {
	var items []catalog.Product
	if err := r.list(ctx, productsTable, tid, filter, r.productCols, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListCounterparties lists tenant counterparties ordered by code.
func (r *CatalogRepo) ListCounterparties(ctx context.Context, tid tenant.ID, filter catalog.ListFilter) ([]catalog.Counterparty, error) {
	var items []catalog.Counterparty
	if err := r.list(ctx, counterpartiesTable, tid, filter, r.counterpartyCols, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListWarehouses lists tenant warehouses ordered by code.
func (r *CatalogRepo) ListWarehouses(ctx context.Context, tid tenant.ID, filter catalog.ListFilter) ([]catalog.Warehouse, error) {
	var items []catalog.Warehouse
	if err := r.list(ctx, warehousesTable, tid, filter, r.warehouseCols, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CatalogRepo) list(ctx context.Context, table string, tid tenant.ID, filter catalog.ListFilter, cols []string, dest any) error {
	q := r.builder().
		Select(cols...).
		From(table).
		Where(squirrel.Eq{"tenant_id": tid.UUID()}).
		OrderBy("code ASC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dest, sql, args...); err != nil {
		return fmt.Errorf("list %s: %w", table, err)
	}

	return nil
}
