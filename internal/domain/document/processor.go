package document

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalog"
	"tradebook/internal/domain/stock"
	"tradebook/pkg/logger"
)

// Processor orchestrates document operations. Document + items + ledger
// deltas always commit or roll back as one transaction; no partial state is
// ever visible.
type Processor struct {
	store   Store
	ledger  stock.Ledger
	catalog catalog.Reader
	txm     tx.Manager
}

// NewProcessor creates a document processor.
func NewProcessor(store Store, ledger stock.Ledger, reader catalog.Reader, txm tx.Manager) *Processor {
	return &Processor{
		store:   store,
		ledger:  ledger,
		catalog: reader,
		txm:     txm,
	}
}

// ItemInput is one requested document line.
type ItemInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitPrice types.Money
	TaxRate   types.Money
}

// CreateInput carries everything needed to create a document.
// Totals are always recomputed; callers cannot supply them.
type CreateInput struct {
	Kind            Kind
	Number          string
	Date            time.Time
	CounterpartyID  id.ID
	WarehouseID     *id.ID
	Currency        string
	DiscountPercent types.Money
	Comment         string
	Items           []ItemInput

	// Confirm creates the document directly in CONFIRMED status,
	// applying ledger deltas in the same transaction.
	Confirm bool
}

// UpdateInput replaces the full item set and optionally patches header fields.
type UpdateInput struct {
	Date            *time.Time
	CounterpartyID  *id.ID
	WarehouseID     *id.ID
	Currency        *string
	DiscountPercent *types.Money
	Comment         *string
	Items           []ItemInput
}

// Result is the outcome of a document operation: the persisted document, the
// post-adjustment stock level for every referenced product, and the subset of
// levels at or below their reorder threshold.
type Result struct {
	Document *Document     `json:"document"`
	Stock    []stock.Level `json:"stock"`
	Warnings []stock.Level `json:"warnings,omitempty"`
}

// Create validates, persists and (optionally) confirms a new document as one
// atomic unit. For sales the stock precondition is evaluated inside the
// transaction by the ledger's conditional adjustment, never by an earlier
// stale read.
func (p *Processor) Create(ctx context.Context, tid tenant.ID, in CreateInput) (*Result, error) {
	if tid.IsZero() {
		return nil, apperror.NewNoTenant()
	}

	doc := New(in.Kind, in.CounterpartyID)
	doc.Number = in.Number
	if !in.Date.IsZero() {
		doc.Date = in.Date
	}
	doc.WarehouseID = in.WarehouseID
	if in.Currency != "" {
		doc.Currency = in.Currency
	}
	doc.DiscountPercent = in.DiscountPercent
	doc.Comment = in.Comment
	if in.Confirm {
		doc.Status = StatusConfirmed
	}
	for _, it := range in.Items {
		doc.AddItem(it.ProductID, it.Quantity, it.UnitPrice, it.TaxRate)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	var res *Result
	err := p.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		products, err := p.validateReferences(ctx, tid, doc)
		if err != nil {
			return err
		}

		if err := p.store.Create(ctx, tid, doc); err != nil {
			return err
		}

		var balances map[id.ID]types.Quantity
		if doc.IsConfirmed() {
			balances, err = p.applyDeltas(ctx, tid, doc.Deltas(), products)
			if err != nil {
				return err
			}
		}

		res, err = p.buildResult(ctx, tid, doc, products, balances)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document created",
		"id", doc.ID,
		"kind", doc.Kind,
		"number", doc.Number,
		"status", doc.Status,
	)
	return res, nil
}

// Update replaces the item set, recomputes totals, and applies a single net
// delta per product (reversal of the old items folded into the new ones) in
// the same transaction that rewrites the stored items. A product-id change on
// a line reverses the old product and charges the new one.
func (p *Processor) Update(ctx context.Context, tid tenant.ID, docID id.ID, in UpdateInput) (*Result, error) {
	if tid.IsZero() {
		return nil, apperror.NewNoTenant()
	}

	var res *Result
	err := p.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := p.store.GetByID(ctx, tid, docID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}

		var oldDeltas []Delta
		if doc.IsConfirmed() {
			oldDeltas = doc.Deltas()
		}

		applyHeaderPatch(doc, in)
		items := make([]Item, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, Item{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				TaxRate:   it.TaxRate,
			})
		}
		doc.ReplaceItems(items)
		doc.Touch()

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		products, err := p.validateReferences(ctx, tid, doc)
		if err != nil {
			return err
		}
		// Products dropped from the item set still need reversal metadata.
		for _, dl := range oldDeltas {
			if _, ok := products[dl.ProductID]; ok {
				continue
			}
			prod, err := p.catalog.ProductByID(ctx, tid, dl.ProductID)
			if err != nil {
				return err
			}
			products[dl.ProductID] = prod
		}

		if err := p.store.Update(ctx, tid, doc); err != nil {
			return err
		}
		if err := p.store.ReplaceItems(ctx, tid, doc.ID, doc.Items); err != nil {
			return err
		}

		var balances map[id.ID]types.Quantity
		if doc.IsConfirmed() {
			net := NetDeltas(oldDeltas, doc.Deltas())
			balances, err = p.applyDeltas(ctx, tid, net, products)
			if err != nil {
				return err
			}
		}

		res, err = p.buildResult(ctx, tid, doc, products, balances)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document updated", "id", docID, "number", res.Document.Number)
	return res, nil
}

// Confirm promotes a draft to CONFIRMED, applying ledger deltas atomically
// with the status flip.
func (p *Processor) Confirm(ctx context.Context, tid tenant.ID, docID id.ID) (*Result, error) {
	if tid.IsZero() {
		return nil, apperror.NewNoTenant()
	}

	var res *Result
	err := p.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := p.store.GetByID(ctx, tid, docID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}
		if doc.IsConfirmed() {
			return apperror.NewConflict("document is already confirmed").
				WithDetail("document_id", docID.String())
		}

		products, err := p.validateReferences(ctx, tid, doc)
		if err != nil {
			return err
		}

		doc.Status = StatusConfirmed
		doc.Touch()
		if err := p.store.Update(ctx, tid, doc); err != nil {
			return err
		}

		balances, err := p.applyDeltas(ctx, tid, doc.Deltas(), products)
		if err != nil {
			return err
		}

		res, err = p.buildResult(ctx, tid, doc, products, balances)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document confirmed", "id", docID)
	return res, nil
}

// Delete reverses the document's recorded deltas and marks it CANCELLED in
// one transaction. Items are kept; the number stays reserved for the tenant.
func (p *Processor) Delete(ctx context.Context, tid tenant.ID, docID id.ID) (*Result, error) {
	if tid.IsZero() {
		return nil, apperror.NewNoTenant()
	}

	var res *Result
	err := p.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := p.store.GetByID(ctx, tid, docID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}

		products, err := p.loadProducts(ctx, tid, doc)
		if err != nil {
			return err
		}

		var balances map[id.ID]types.Quantity
		if doc.IsConfirmed() {
			balances, err = p.applyDeltas(ctx, tid, Reversal(doc.Deltas()), products)
			if err != nil {
				return err
			}
		}

		doc.Status = StatusCancelled
		doc.Touch()
		if err := p.store.Update(ctx, tid, doc); err != nil {
			return err
		}

		res, err = p.buildResult(ctx, tid, doc, products, balances)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document cancelled", "id", docID)
	return res, nil
}

// Get returns a document with items.
func (p *Processor) Get(ctx context.Context, tid tenant.ID, docID id.ID) (*Document, error) {
	if tid.IsZero() {
		return nil, apperror.NewNoTenant()
	}
	return p.store.GetByID(ctx, tid, docID)
}

// List returns documents matching the filter.
func (p *Processor) List(ctx context.Context, tid tenant.ID, filter ListFilter) (ListResult, error) {
	if tid.IsZero() {
		return ListResult{}, apperror.NewNoTenant()
	}
	return p.store.List(ctx, tid, filter)
}

// validateReferences checks counterparty and warehouse existence and loads
// every referenced product. All lookups are tenant-scoped: a foreign record
// is indistinguishable from a missing one.
func (p *Processor) validateReferences(ctx context.Context, tid tenant.ID, doc *Document) (map[id.ID]*catalog.Product, error) {
	ok, err := p.catalog.CounterpartyExists(ctx, tid, doc.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("check counterparty: %w", err)
	}
	if !ok {
		return nil, apperror.NewNotFound("counterparty", doc.CounterpartyID.String())
	}

	if doc.WarehouseID != nil {
		ok, err := p.catalog.WarehouseExists(ctx, tid, *doc.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("check warehouse: %w", err)
		}
		if !ok {
			return nil, apperror.NewNotFound("warehouse", doc.WarehouseID.String())
		}
	}

	return p.loadProducts(ctx, tid, doc)
}

// loadProducts fetches every product referenced by the document, deduped.
func (p *Processor) loadProducts(ctx context.Context, tid tenant.ID, doc *Document) (map[id.ID]*catalog.Product, error) {
	products := make(map[id.ID]*catalog.Product, len(doc.Items))
	for _, it := range doc.Items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		prod, err := p.catalog.ProductByID(ctx, tid, it.ProductID)
		if err != nil {
			return nil, err
		}
		products[it.ProductID] = prod
	}
	return products, nil
}

// applyDeltas runs the ledger adjustment for each delta in order, skipping
// service products. Returns the final balance per adjusted product.
func (p *Processor) applyDeltas(ctx context.Context, tid tenant.ID, deltas []Delta, products map[id.ID]*catalog.Product) (map[id.ID]types.Quantity, error) {
	balances := make(map[id.ID]types.Quantity, len(deltas))
	for _, dl := range deltas {
		prod, ok := products[dl.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", dl.ProductID.String())
		}
		if prod.IsService {
			continue
		}
		balance, err := p.ledger.Adjust(ctx, tid, dl.ProductID, dl.Quantity)
		if err != nil {
			return nil, err
		}
		balances[dl.ProductID] = balance
	}
	return balances, nil
}

// buildResult assembles stock levels for every product the document touches,
// in first-appearance item order, plus low-stock warnings.
func (p *Processor) buildResult(ctx context.Context, tid tenant.ID, doc *Document, products map[id.ID]*catalog.Product, balances map[id.ID]types.Quantity) (*Result, error) {
	seen := make(map[id.ID]bool, len(doc.Items))
	levels := make([]stock.Level, 0, len(doc.Items))

	for _, it := range doc.Items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true

		prod := products[it.ProductID]
		qty, ok := balances[it.ProductID]
		if !ok {
			if prod.IsService {
				qty = prod.CurrentStock
			} else {
				// Not adjusted in this unit (draft, or zero net delta):
				// read inside the same transaction.
				var err error
				qty, err = p.ledger.Balance(ctx, tid, it.ProductID)
				if err != nil {
					return nil, err
				}
			}
		}

		levels = append(levels, stock.Level{
			ProductID:   prod.ID,
			ProductCode: prod.Code,
			Quantity:    qty,
			MinStock:    prod.MinStock,
			IsService:   prod.IsService,
		})
	}

	var warnings []stock.Level
	for _, lv := range levels {
		if lv.AtOrBelowMin() {
			warnings = append(warnings, lv)
		}
	}

	return &Result{Document: doc, Stock: levels, Warnings: warnings}, nil
}

func applyHeaderPatch(doc *Document, in UpdateInput) {
	if in.Date != nil {
		doc.Date = *in.Date
	}
	if in.CounterpartyID != nil {
		doc.CounterpartyID = *in.CounterpartyID
	}
	if in.WarehouseID != nil {
		doc.WarehouseID = in.WarehouseID
	}
	if in.Currency != nil {
		doc.Currency = *in.Currency
	}
	if in.DiscountPercent != nil {
		doc.DiscountPercent = *in.DiscountPercent
	}
	if in.Comment != nil {
		doc.Comment = *in.Comment
	}
}
