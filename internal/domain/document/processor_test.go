package document

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalog"
)

// --- In-memory fakes ---
//
// The backend keeps all state in maps guarded by one mutex. The fake
// transaction manager serializes transactions and snapshots the backend
// before running the unit, restoring the snapshot when it fails. That gives
// the same observable all-or-nothing behavior as the real store without a
// database.

type entityKey struct {
	tenant string
	entity id.ID
}

func key(tid tenant.ID, entityID id.ID) entityKey {
	return entityKey{tenant: tid.String(), entity: entityID}
}

type backend struct {
	mu sync.Mutex

	products       map[entityKey]*catalog.Product
	counterparties map[entityKey]bool
	warehouses     map[entityKey]bool
	docs           map[entityKey]*Document
	numbers        map[string]id.ID // tenant|number -> document id
}

func newBackend() *backend {
	return &backend{
		products:       make(map[entityKey]*catalog.Product),
		counterparties: make(map[entityKey]bool),
		warehouses:     make(map[entityKey]bool),
		docs:           make(map[entityKey]*Document),
		numbers:        make(map[string]id.ID),
	}
}

func numberKey(tid tenant.ID, number string) string {
	return tid.String() + "|" + number
}

func copyDoc(doc *Document) *Document {
	cp := *doc
	cp.Items = append([]Item(nil), doc.Items...)
	return &cp
}

type snapshot struct {
	products       map[entityKey]*catalog.Product
	counterparties map[entityKey]bool
	warehouses     map[entityKey]bool
	docs           map[entityKey]*Document
	numbers        map[string]id.ID
}

func (b *backend) snapshot() snapshot {
	s := snapshot{
		products:       make(map[entityKey]*catalog.Product, len(b.products)),
		counterparties: make(map[entityKey]bool, len(b.counterparties)),
		warehouses:     make(map[entityKey]bool, len(b.warehouses)),
		docs:           make(map[entityKey]*Document, len(b.docs)),
		numbers:        make(map[string]id.ID, len(b.numbers)),
	}
	for k, p := range b.products {
		cp := *p
		s.products[k] = &cp
	}
	for k, v := range b.counterparties {
		s.counterparties[k] = v
	}
	for k, v := range b.warehouses {
		s.warehouses[k] = v
	}
	for k, d := range b.docs {
		s.docs[k] = copyDoc(d)
	}
	for k, v := range b.numbers {
		s.numbers[k] = v
	}
	return s
}

func (b *backend) restore(s snapshot) {
	b.products = s.products
	b.counterparties = s.counterparties
	b.warehouses = s.warehouses
	b.docs = s.docs
	b.numbers = s.numbers
}

// fakeTxManager serializes transactions and rolls back failed ones.
type fakeTxManager struct {
	b *backend
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()

	snap := m.b.snapshot()
	if err := fn(ctx); err != nil {
		m.b.restore(snap)
		return err
	}
	return nil
}

type fakeCatalog struct {
	b *backend
}

func (f *fakeCatalog) ProductByID(ctx context.Context, tid tenant.ID, productID id.ID) (*catalog.Product, error) {
	p, ok := f.b.products[key(tid, productID)]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) CounterpartyExists(ctx context.Context, tid tenant.ID, counterpartyID id.ID) (bool, error) {
	return f.b.counterparties[key(tid, counterpartyID)], nil
}

func (f *fakeCatalog) WarehouseExists(ctx context.Context, tid tenant.ID, warehouseID id.ID) (bool, error) {
	return f.b.warehouses[key(tid, warehouseID)], nil
}

type fakeLedger struct {
	b *backend
}

func (f *fakeLedger) Adjust(ctx context.Context, tid tenant.ID, productID id.ID, signedDelta types.Quantity) (types.Quantity, error) {
	p, ok := f.b.products[key(tid, productID)]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}

	next := p.CurrentStock + signedDelta
	if next < 0 {
		return 0, apperror.NewInsufficientStock(
			productID.String(),
			signedDelta.Neg().Float64(),
			p.CurrentStock.Float64(),
		)
	}

	p.CurrentStock = next
	return next, nil
}

func (f *fakeLedger) Balance(ctx context.Context, tid tenant.ID, productID id.ID) (types.Quantity, error) {
	p, ok := f.b.products[key(tid, productID)]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	return p.CurrentStock, nil
}

type fakeStore struct {
	b *backend
}

func (f *fakeStore) Create(ctx context.Context, tid tenant.ID, doc *Document) error {
	nk := numberKey(tid, doc.Number)
	if _, taken := f.b.numbers[nk]; taken {
		return apperror.NewDuplicateDocumentNumber(doc.Number)
	}
	f.b.numbers[nk] = doc.ID
	f.b.docs[key(tid, doc.ID)] = copyDoc(doc)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, tid tenant.ID, docID id.ID) (*Document, error) {
	doc, ok := f.b.docs[key(tid, docID)]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	return copyDoc(doc), nil
}

func (f *fakeStore) Update(ctx context.Context, tid tenant.ID, doc *Document) error {
	k := key(tid, doc.ID)
	stored, ok := f.b.docs[k]
	if !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	cp := copyDoc(doc)
	cp.Items = stored.Items
	f.b.docs[k] = cp
	return nil
}

func (f *fakeStore) ReplaceItems(ctx context.Context, tid tenant.ID, docID id.ID, items []Item) error {
	doc, ok := f.b.docs[key(tid, docID)]
	if !ok {
		return apperror.NewNotFound("document", docID.String())
	}
	doc.Items = append([]Item(nil), items...)
	return nil
}

func (f *fakeStore) List(ctx context.Context, tid tenant.ID, filter ListFilter) (ListResult, error) {
	result := ListResult{Limit: filter.Limit, Offset: filter.Offset}
	for k, doc := range f.b.docs {
		if k.tenant != tid.String() {
			continue
		}
		if filter.Kind != nil && doc.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		result.Items = append(result.Items, copyDoc(doc))
	}
	result.TotalCount = len(result.Items)
	return result, nil
}

// --- Test fixture ---

type fixture struct {
	backend   *backend
	processor *Processor
	tid       tenant.ID

	supplier  id.ID
	client    id.ID
	warehouse id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := newBackend()
	tid := tenant.MustResolve("0190e6a3-6f33-7000-8000-000000000001")

	f := &fixture{
		backend:   b,
		tid:       tid,
		supplier:  id.New(),
		client:    id.New(),
		warehouse: id.New(),
	}
	b.counterparties[key(tid, f.supplier)] = true
	b.counterparties[key(tid, f.client)] = true
	b.warehouses[key(tid, f.warehouse)] = true

	f.processor = NewProcessor(
		&fakeStore{b: b},
		&fakeLedger{b: b},
		&fakeCatalog{b: b},
		&fakeTxManager{b: b},
	)
	return f
}

func (f *fixture) addProduct(t *testing.T, code string, stock float64, isService bool) id.ID {
	t.Helper()

	p := catalog.NewProduct(code, "Product "+code, "pcs")
	p.UnitPrice = types.MustMoney("10.00")
	p.CurrentStock = types.NewQuantityFromFloat64(stock)
	p.MinStock = types.NewQuantityFromFloat64(1)
	p.IsService = isService
	f.backend.products[key(f.tid, p.ID)] = p
	return p.ID
}

func (f *fixture) balance(t *testing.T, productID id.ID) float64 {
	t.Helper()
	p, ok := f.backend.products[key(f.tid, productID)]
	require.True(t, ok)
	return p.CurrentStock.Float64()
}

func saleInput(number string, counterpartyID, productID id.ID, quantity float64) CreateInput {
	return CreateInput{
		Kind:           KindSale,
		Number:         number,
		CounterpartyID: counterpartyID,
		Confirm:        true,
		Items: []ItemInput{
			{ProductID: productID, Quantity: types.NewQuantityFromFloat64(quantity), UnitPrice: types.MustMoney("25.00"), TaxRate: types.MustMoney("20")},
		},
	}
}

// --- Tests ---

func TestCreateConfirmedSaleReducesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	result, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 4))
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, result.Document.Status)
	assert.Equal(t, 6.0, f.balance(t, product))

	require.Len(t, result.Stock, 1)
	assert.Equal(t, types.NewQuantityFromFloat64(6), result.Stock[0].Quantity)
}

func TestCreateConfirmedPurchaseIncreasesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 6, false)

	in := CreateInput{
		Kind:           KindPurchase,
		Number:         "PUR-1",
		CounterpartyID: f.supplier,
		Confirm:        true,
		Items: []ItemInput{
			{ProductID: product, Quantity: types.NewQuantityFromFloat64(20), UnitPrice: types.MustMoney("18.00"), TaxRate: types.MustMoney("20")},
		},
	}

	_, err := f.processor.Create(ctx, f.tid, in)
	require.NoError(t, err)
	assert.Equal(t, 26.0, f.balance(t, product))
}

func TestInsufficientStockAbortsWholeUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 6, false)

	_, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 10))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, product.String(), appErr.Details["product_id"])
	assert.Equal(t, 4.0, appErr.Details["shortfall"])

	// Nothing persisted, nothing adjusted.
	assert.Empty(t, f.backend.docs)
	assert.Equal(t, 6.0, f.balance(t, product))
}

func TestInsufficientStockOnSecondLineRollsBackFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productA := f.addProduct(t, "A", 10, false)
	productB := f.addProduct(t, "B", 1, false)

	in := saleInput("SAL-1", f.client, productA, 4)
	in.Items = append(in.Items, ItemInput{
		ProductID: productB,
		Quantity:  types.NewQuantityFromFloat64(5),
		UnitPrice: types.MustMoney("10.00"),
	})

	_, err := f.processor.Create(ctx, f.tid, in)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The first line's adjustment must not survive the failed unit.
	assert.Equal(t, 10.0, f.balance(t, productA))
	assert.Equal(t, 1.0, f.balance(t, productB))
	assert.Empty(t, f.backend.docs)
}

func TestDuplicateNumberLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	_, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 2))
	require.NoError(t, err)
	assert.Equal(t, 8.0, f.balance(t, product))

	_, err = f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 3))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicateDocumentNumber(err))

	assert.Equal(t, 8.0, f.balance(t, product))
	assert.Len(t, f.backend.docs, 1)
}

func TestServiceProductsBypassStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.addProduct(t, "INSTALL", 0, true)

	result, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, service, 99))
	require.NoError(t, err)

	assert.Equal(t, 0.0, f.balance(t, service))
	require.Len(t, result.Stock, 1)
	assert.True(t, result.Stock[0].IsService)
	assert.Empty(t, result.Warnings)
}

func TestDraftDoesNotTouchLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	in := saleInput("SAL-1", f.client, product, 4)
	in.Confirm = false

	result, err := f.processor.Create(ctx, f.tid, in)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, result.Document.Status)
	assert.Equal(t, 10.0, f.balance(t, product))
}

func TestConfirmAppliesDeltas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	in := saleInput("SAL-1", f.client, product, 4)
	in.Confirm = false

	created, err := f.processor.Create(ctx, f.tid, in)
	require.NoError(t, err)

	confirmed, err := f.processor.Confirm(ctx, f.tid, created.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Document.Status)
	assert.Equal(t, 6.0, f.balance(t, product))

	// Second confirm is rejected and changes nothing.
	_, err = f.processor.Confirm(ctx, f.tid, created.Document.ID)
	require.Error(t, err)
	assert.Equal(t, 6.0, f.balance(t, product))
}

func TestUpdateAppliesSingleNetDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	created, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 4))
	require.NoError(t, err)
	assert.Equal(t, 6.0, f.balance(t, product))

	// 4 -> 6 means a net delta of -2.
	_, err = f.processor.Update(ctx, f.tid, created.Document.ID, UpdateInput{
		Items: []ItemInput{
			{ProductID: product, Quantity: types.NewQuantityFromFloat64(6), UnitPrice: types.MustMoney("25.00"), TaxRate: types.MustMoney("20")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.balance(t, product))
}

func TestUpdateProductSwapReversesOldAndChargesNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productA := f.addProduct(t, "A", 10, false)
	productB := f.addProduct(t, "B", 10, false)

	created, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, productA, 4))
	require.NoError(t, err)

	_, err = f.processor.Update(ctx, f.tid, created.Document.ID, UpdateInput{
		Items: []ItemInput{
			{ProductID: productB, Quantity: types.NewQuantityFromFloat64(4), UnitPrice: types.MustMoney("25.00"), TaxRate: types.MustMoney("20")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, f.balance(t, productA))
	assert.Equal(t, 6.0, f.balance(t, productB))
}

func TestUpdateRejectedWhenNetDeltaOverdraws(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	created, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 4))
	require.NoError(t, err)

	_, err = f.processor.Update(ctx, f.tid, created.Document.ID, UpdateInput{
		Items: []ItemInput{
			{ProductID: product, Quantity: types.NewQuantityFromFloat64(20), UnitPrice: types.MustMoney("25.00"), TaxRate: types.MustMoney("20")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Balance and stored items are unchanged.
	assert.Equal(t, 6.0, f.balance(t, product))
	doc, err := f.processor.Get(ctx, f.tid, created.Document.ID)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, types.NewQuantityFromFloat64(4), doc.Items[0].Quantity)
}

func TestDeleteReversesDeltasAndCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	created, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 4))
	require.NoError(t, err)
	assert.Equal(t, 6.0, f.balance(t, product))

	result, err := f.processor.Delete(ctx, f.tid, created.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, result.Document.Status)
	assert.Equal(t, 10.0, f.balance(t, product))

	// Cancelled documents are immutable.
	_, err = f.processor.Delete(ctx, f.tid, created.Document.ID)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeDocumentCancelled, appErr.Code)

	// The number stays reserved.
	_, err = f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 1))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicateDocumentNumber(err))
}

func TestDeleteDraftSkipsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	in := saleInput("SAL-1", f.client, product, 4)
	in.Confirm = false

	created, err := f.processor.Create(ctx, f.tid, in)
	require.NoError(t, err)

	_, err = f.processor.Delete(ctx, f.tid, created.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, f.balance(t, product))
}

func TestCrossTenantDocumentReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	created, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 1))
	require.NoError(t, err)

	otherTenant := tenant.MustResolve("0190e6a3-6f33-7000-8000-000000000002")
	_, err = f.processor.Get(ctx, otherTenant, created.Document.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestZeroTenantIsHardStop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.processor.Create(ctx, tenant.ID{}, saleInput("SAL-1", f.client, id.New(), 1))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeNoTenant, appErr.Code)
}

func TestUnknownCounterpartyAbortsUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 10, false)

	_, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", id.New(), product, 1))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.backend.docs)
}

func TestLowStockWarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.addProduct(t, "WIDGET", 5, false) // min stock 1

	result, err := f.processor.Create(ctx, f.tid, saleInput("SAL-1", f.client, product, 4))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, product, result.Warnings[0].ProductID)
	assert.Equal(t, types.NewQuantityFromFloat64(1), result.Warnings[0].Quantity)
}

func TestConcurrentSalesOnlyOneOverdraws(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	const each = 3.0
	// Enough stock for n-1 sales, not for all n.
	product := f.addProduct(t, "WIDGET", each*(n-1), false)

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.processor.Create(ctx, f.tid, saleInput(fmt.Sprintf("SAL-%d", i), f.client, product, each))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			assert.True(t, apperror.IsInsufficientStock(err))
			failures++
		}
	}

	assert.Equal(t, 1, failures)
	assert.Equal(t, 0.0, f.balance(t, product))
	assert.Len(t, f.backend.docs, n-1)
}
