package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

func qty(f float64) types.Quantity {
	return types.NewQuantityFromFloat64(f)
}

func TestDeltasSignedByKind(t *testing.T) {
	productA := id.New()
	productB := id.New()

	purchase := New(KindPurchase, id.New())
	purchase.AddItem(productA, qty(5), types.MustMoney("10"), types.Zero())
	purchase.AddItem(productB, qty(3), types.MustMoney("20"), types.Zero())

	deltas := purchase.Deltas()
	require.Len(t, deltas, 2)
	assert.Equal(t, productA, deltas[0].ProductID)
	assert.Equal(t, qty(5), deltas[0].Quantity)
	assert.Equal(t, qty(3), deltas[1].Quantity)

	sale := New(KindSale, id.New())
	sale.AddItem(productA, qty(4), types.MustMoney("10"), types.Zero())

	saleDeltas := sale.Deltas()
	require.Len(t, saleDeltas, 1)
	assert.Equal(t, qty(-4), saleDeltas[0].Quantity)
}

func TestReversal(t *testing.T) {
	productA := id.New()
	deltas := []Delta{
		{ProductID: productA, Quantity: qty(5)},
		{ProductID: id.New(), Quantity: qty(-3)},
	}

	rev := Reversal(deltas)
	require.Len(t, rev, 2)
	assert.Equal(t, qty(-5), rev[0].Quantity)
	assert.Equal(t, qty(3), rev[1].Quantity)
	assert.Equal(t, productA, rev[0].ProductID)
}

func TestNetDeltasFoldsPerProduct(t *testing.T) {
	productA := id.New()
	productB := id.New()

	// Sale of 4 A becomes sale of 6 A plus 2 B.
	old := []Delta{{ProductID: productA, Quantity: qty(-4)}}
	new := []Delta{
		{ProductID: productA, Quantity: qty(-6)},
		{ProductID: productB, Quantity: qty(-2)},
	}

	net := NetDeltas(old, new)
	require.Len(t, net, 2)

	byProduct := map[id.ID]types.Quantity{}
	for _, dl := range net {
		byProduct[dl.ProductID] = dl.Quantity
	}
	assert.Equal(t, qty(-2), byProduct[productA])
	assert.Equal(t, qty(-2), byProduct[productB])
}

func TestNetDeltasDropsZeroNet(t *testing.T) {
	productA := id.New()

	old := []Delta{{ProductID: productA, Quantity: qty(-4)}}
	new := []Delta{{ProductID: productA, Quantity: qty(-4)}}

	assert.Empty(t, NetDeltas(old, new))
}

func TestNetDeltasProductSwap(t *testing.T) {
	oldProduct := id.New()
	newProduct := id.New()

	// Line changed product id: old product is fully reversed, new one charged.
	old := []Delta{{ProductID: oldProduct, Quantity: qty(-4)}}
	new := []Delta{{ProductID: newProduct, Quantity: qty(-4)}}

	net := NetDeltas(old, new)
	require.Len(t, net, 2)

	byProduct := map[id.ID]types.Quantity{}
	for _, dl := range net {
		byProduct[dl.ProductID] = dl.Quantity
	}
	assert.Equal(t, qty(4), byProduct[oldProduct])
	assert.Equal(t, qty(-4), byProduct[newProduct])
}

func TestNetDeltasOrderedByProductID(t *testing.T) {
	var new []Delta
	for i := 0; i < 10; i++ {
		new = append(new, Delta{ProductID: id.New(), Quantity: qty(1)})
	}

	net := NetDeltas(nil, new)
	require.Len(t, net, 10)
	for i := 1; i < len(net); i++ {
		assert.True(t, bytes.Compare(net[i-1].ProductID[:], net[i].ProductID[:]) < 0)
	}
}
