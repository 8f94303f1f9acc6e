package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/domain/document"
)

const (
	documentsTable     = "doc_trade_documents"
	documentItemsTable = "doc_trade_document_items"
)

// Compile-time check.
var _ document.Store = (*DocumentRepo)(nil)

// DocumentRepo is the PostgreSQL document store. Headers and items live in
// separate tables; both carry tenant_id so every access path stays scoped
// even when queried directly.
//
// Number uniqueness is enforced by UNIQUE(tenant_id, number), not by a prior
// read, so two concurrent submissions of the same number cannot both pass.
type DocumentRepo struct {
	txm *TxManager

	headerCols []string
	itemCols   []string
}

// NewDocumentRepo creates the document repository.
func NewDocumentRepo(txm *TxManager) *DocumentRepo {
	return &DocumentRepo{
		txm:        txm,
		headerCols: ExtractDBColumns[document.Document](),
		itemCols:   ExtractDBColumns[document.Item](),
	}
}

func (r *DocumentRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts header and items.
func (r *DocumentRepo) Create(ctx context.Context, tid tenant.ID, doc *document.Document) error {
	data := StructToMap(doc)

	filtered := make(map[string]any, len(r.headerCols)+1)
	for _, col := range r.headerCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	filtered["tenant_id"] = tid.UUID()

	q := r.builder().
		Insert(documentsTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicateDocumentNumber(doc.Number).WithCause(err)
		}
		return fmt.Errorf("insert document: %w", err)
	}

	return r.insertItems(ctx, tid, doc.ID, doc.Items)
}

// GetByID returns the document with items, or NotFound. A document of another
// tenant reads back as NotFound.
func (r *DocumentRepo) GetByID(ctx context.Context, tid tenant.ID, docID id.ID) (*document.Document, error) {
	q := r.builder().
		Select(r.headerCols...).
		From(documentsTable).
		Where(squirrel.Eq{"tenant_id": tid.UUID(), "id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc document.Document
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	items, err := r.loadItems(ctx, tid, docID)
	if err != nil {
		return nil, err
	}
	doc.Items = items

	return &doc, nil
}

// Update writes the header with optimistic locking.
func (r *DocumentRepo) Update(ctx context.Context, tid tenant.ID, doc *document.Document) error {
	data := StructToMap(doc)

	filtered := make(map[string]any, len(r.headerCols))
	for _, col := range r.headerCols {
		switch col {
		case "id", "version", "created_at", "created_by":
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	// doc.Version was already bumped by Touch; the lock expects the stored one
	expectedVersion := doc.Version - 1

	q := r.builder().
		Update(documentsTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{
			"tenant_id": tid.UUID(),
			"id":        doc.ID,
			"version":   expectedVersion,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("document", doc.ID.String())
	}

	return nil
}

// ReplaceItems swaps the stored item set for the document.
func (r *DocumentRepo) ReplaceItems(ctx context.Context, tid tenant.ID, docID id.ID, items []document.Item) error {
	q := r.builder().
		Delete(documentItemsTable).
		Where(squirrel.Eq{"tenant_id": tid.UUID(), "document_id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	return r.insertItems(ctx, tid, docID, items)
}

// List returns documents matching the filter, headers only.
func (r *DocumentRepo) List(ctx context.Context, tid tenant.ID, filter document.ListFilter) (document.ListResult, error) {
	result := document.ListResult{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.buildList(tid, filter)

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count documents: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list documents: %w", err)
	}

	return result, nil
}

// buildList assembles the filtered SELECT without ordering or pagination.
func (r *DocumentRepo) buildList(tid tenant.ID, filter document.ListFilter) squirrel.SelectBuilder {
	q := r.builder().
		Select(r.headerCols...).
		From(documentsTable).
		Where(squirrel.Eq{"tenant_id": tid.UUID()})

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *filter.CounterpartyID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"comment": pattern},
		})
	}

	return q
}

func (r *DocumentRepo) insertItems(ctx context.Context, tid tenant.ID, docID id.ID, items []document.Item) error {
	if len(items) == 0 {
		return nil
	}

	cols := append([]string{"tenant_id", "document_id"}, r.itemCols...)
	q := r.builder().
		Insert(documentItemsTable).
		Columns(cols...)

	for _, it := range items {
		data := StructToMap(it)
		vals := make([]any, 0, len(cols))
		vals = append(vals, tid.UUID(), docID)
		for _, col := range r.itemCols {
			vals = append(vals, data[col])
		}
		q = q.Values(vals...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// loadItems returns the item set in line order.
func (r *DocumentRepo) loadItems(ctx context.Context, tid tenant.ID, docID id.ID) ([]document.Item, error) {
	q := r.builder().
		Select(r.itemCols...).
		From(documentItemsTable).
		Where(squirrel.Eq{"tenant_id": tid.UUID(), "document_id": docID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]document.Item, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	return items, nil
}
