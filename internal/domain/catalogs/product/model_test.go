package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

func TestNormalizeSKU(t *testing.T) {
	assert.Equal(t, "FAB-COT-BLU", NormalizeSKU("  fab-cot-blu "))
	assert.Equal(t, "SHIRT-M", NormalizeSKU("Shirt-M"))
	assert.Equal(t, "", NormalizeSKU("   "))
}

func TestProduct_Available(t *testing.T) {
	simple := New("store-001", "SKU-1", "Shirt", KindSimple)
	simple.StockLevel = types.NewQuantityFromFloat64(25)
	assert.Equal(t, types.NewQuantityFromFloat64(25), simple.Available())

	raw := New("store-001", "SKU-2", "Fabric", KindRawMaterial)
	raw.TotalMeters = types.NewQuantityFromFloat64(50)
	raw.StockLevel = types.NewQuantityFromFloat64(999) // stale mirror must not win
	assert.Equal(t, types.NewQuantityFromFloat64(50), raw.Available())
}

func TestProduct_SyncRawMaterialStock(t *testing.T) {
	raw := New("store-001", "SKU-2", "Fabric", KindRawMaterial)
	raw.TotalMeters = types.NewQuantityFromFloat64(37.5)
	raw.SyncRawMaterialStock()
	assert.Equal(t, raw.TotalMeters, raw.StockLevel)

	simple := New("store-001", "SKU-1", "Shirt", KindSimple)
	simple.StockLevel = types.NewQuantityFromFloat64(10)
	simple.TotalMeters = types.NewQuantityFromFloat64(3)
	simple.SyncRawMaterialStock()
	assert.Equal(t, types.NewQuantityFromFloat64(10), simple.StockLevel)
}

func TestProduct_CalculatedUnits(t *testing.T) {
	raw := New("store-001", "SKU-2", "Fabric", KindRawMaterial)
	raw.TotalMeters = types.NewQuantityFromFloat64(10)
	raw.MetersPerUnit = types.NewQuantityFromFloat64(3)
	assert.Equal(t, int64(3), raw.CalculatedUnits())

	raw.MetersPerUnit = 0
	assert.Equal(t, int64(0), raw.CalculatedUnits())

	simple := New("store-001", "SKU-1", "Shirt", KindSimple)
	assert.Equal(t, int64(0), simple.CalculatedUnits())
}

func TestProduct_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid simple", func(t *testing.T) {
		p := New("store-001", "SKU-1", "Shirt", KindSimple)
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("missing sku", func(t *testing.T) {
		p := New("store-001", "  ", "Shirt", KindSimple)
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("unknown kind", func(t *testing.T) {
		p := New("store-001", "SKU-1", "Shirt", Kind("liquid"))
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("negative price", func(t *testing.T) {
		p := New("store-001", "SKU-1", "Shirt", KindSimple)
		p.SellingPrice = types.MustMoney("-1")
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("combo set needs components", func(t *testing.T) {
		p := New("store-001", "SET-1", "Gift Set", KindComboSet)
		require.Error(t, p.Validate(ctx))

		p.ComboComponents = []ComboComponent{{ProductID: id.New(), Quantity: types.NewQuantityFromFloat64(2)}}
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("combo component quantity positive", func(t *testing.T) {
		p := New("store-001", "SET-1", "Gift Set", KindComboSet)
		p.ComboComponents = []ComboComponent{{ProductID: id.New(), Quantity: 0}}
		assert.Error(t, p.Validate(ctx))
	})
}
