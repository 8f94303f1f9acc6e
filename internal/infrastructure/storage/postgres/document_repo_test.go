package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/internal/domain/document"
)

const testTenant = "0190e6a3-6f33-7000-8000-000000000001"

func newTestDocumentRepo() *DocumentRepo {
	return NewDocumentRepo(NewTxManagerFromRawPool(nil))
}

func TestBuildListAlwaysScopesByTenant(t *testing.T) {
	repo := newTestDocumentRepo()
	tid := tenant.MustResolve(testTenant)

	sql, args, err := repo.buildList(tid, document.ListFilter{}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM doc_trade_documents")
	assert.Contains(t, sql, "tenant_id = $1")
	require.Len(t, args, 1)
	assert.Equal(t, tid.UUID(), args[0])
}

func TestBuildListFilters(t *testing.T) {
	repo := newTestDocumentRepo()
	tid := tenant.MustResolve(testTenant)

	kind := document.KindSale
	status := document.StatusConfirmed
	counterparty := id.New()
	warehouse := id.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	filter := document.ListFilter{
		Kind:           &kind,
		Status:         &status,
		CounterpartyID: &counterparty,
		WarehouseID:    &warehouse,
		DateFrom:       &from,
		DateTo:         &to,
		Search:         "SAL-00",
	}

	sql, args, err := repo.buildList(tid, filter).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "kind = ")
	assert.Contains(t, sql, "status = ")
	assert.Contains(t, sql, "counterparty_id = ")
	assert.Contains(t, sql, "warehouse_id = ")
	assert.Contains(t, sql, "date >= ")
	assert.Contains(t, sql, "date <= ")
	assert.Contains(t, sql, "number ILIKE ")
	assert.Contains(t, sql, "comment ILIKE ")

	// tenant + 6 filters + 2 search patterns
	assert.Len(t, args, 9)
	assert.Contains(t, args, "%SAL-00%")
}

func TestBuildListSelectsHeaderColumnsOnly(t *testing.T) {
	repo := newTestDocumentRepo()
	tid := tenant.MustResolve(testTenant)

	sql, _, err := repo.buildList(tid, document.ListFilter{}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "number")
	assert.Contains(t, sql, "grand_total")
	assert.NotContains(t, sql, "product_id")
}
