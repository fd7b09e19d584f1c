package purchaseorder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/domain/stockentry"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memProducts struct {
	byID map[id.ID]*product.Product
}

func newMemProducts(products ...*product.Product) *memProducts {
	m := &memProducts{byID: make(map[id.ID]*product.Product)}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memProducts) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := m.byID[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (m *memProducts) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) error {
	p, ok := m.byID[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.StockLevel = p.StockLevel.Add(delta)
	return nil
}

func (m *memProducts) SetPrices(ctx context.Context, productID id.ID, buying, selling *types.Money) error {
	p, ok := m.byID[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	if buying != nil {
		p.BuyingPrice = *buying
	}
	if selling != nil {
		p.SellingPrice = *selling
	}
	return nil
}

type memEntryRepo struct {
	entries []*stockentry.Entry
}

func (m *memEntryRepo) Create(ctx context.Context, entry *stockentry.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memEntryRepo) Update(ctx context.Context, entry *stockentry.Entry) error { return nil }

func (m *memEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*stockentry.Entry, error) {
	return nil, apperror.NewNotFound("stock_entry", entryID.String())
}

func (m *memEntryRepo) GetInitialByProduct(ctx context.Context, productID id.ID) (*stockentry.Entry, error) {
	return nil, apperror.NewNotFound("stock_entry", productID.String())
}

func (m *memEntryRepo) ListByProduct(ctx context.Context, productID id.ID, filter domain.ListFilter) (domain.ListResult[*stockentry.Entry], error) {
	return domain.ListResult[*stockentry.Entry]{}, nil
}

func (m *memEntryRepo) DeleteByProduct(ctx context.Context, productID id.ID) error { return nil }

func (m *memEntryRepo) DeleteByReference(ctx context.Context, referenceID id.ID) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.ReferenceID == nil || *e.ReferenceID != referenceID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

type memSuppliers struct {
	balances map[id.ID]types.Money
	links    map[id.ID]map[id.ID]bool
}

func newMemSuppliers() *memSuppliers {
	return &memSuppliers{
		balances: make(map[id.ID]types.Money),
		links:    make(map[id.ID]map[id.ID]bool),
	}
}

func (m *memSuppliers) AdjustBalance(ctx context.Context, supplierID id.ID, delta types.Money) error {
	m.balances[supplierID] = m.balances[supplierID].Add(delta)
	return nil
}

func (m *memSuppliers) AddProduct(ctx context.Context, supplierID, productID id.ID) error {
	if m.links[supplierID] == nil {
		m.links[supplierID] = make(map[id.ID]bool)
	}
	m.links[supplierID][productID] = true
	return nil
}

func (m *memSuppliers) RemoveProduct(ctx context.Context, supplierID, productID id.ID) error {
	delete(m.links[supplierID], productID)
	return nil
}

type memPORepo struct {
	byID map[id.ID]*PurchaseOrder
}

func newMemPORepo() *memPORepo {
	return &memPORepo{byID: make(map[id.ID]*PurchaseOrder)}
}

func (r *memPORepo) Create(ctx context.Context, po *PurchaseOrder) error {
	r.byID[po.ID] = po
	return nil
}

func (r *memPORepo) Update(ctx context.Context, po *PurchaseOrder) error {
	if _, ok := r.byID[po.ID]; !ok {
		return apperror.NewNotFound("purchase_order", po.ID.String())
	}
	r.byID[po.ID] = po
	return nil
}

func (r *memPORepo) GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	po, ok := r.byID[poID]
	if !ok {
		return nil, apperror.NewNotFound("purchase_order", poID.String())
	}
	return po, nil
}

func (r *memPORepo) GetForUpdate(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	return r.GetByID(ctx, poID)
}

func (r *memPORepo) Delete(ctx context.Context, poID id.ID) error {
	if _, ok := r.byID[poID]; !ok {
		return apperror.NewNotFound("purchase_order", poID.String())
	}
	delete(r.byID, poID)
	return nil
}

func (r *memPORepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	var items []*PurchaseOrder
	for _, po := range r.byID {
		items = append(items, po)
	}
	return domain.ListResult[*PurchaseOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

type poFixture struct {
	service   *Service
	repo      *memPORepo
	products  *memProducts
	entries   *memEntryRepo
	suppliers *memSuppliers
}

func newPOFixture(t *testing.T, products ...*product.Product) *poFixture {
	t.Helper()

	f := &poFixture{
		repo:      newMemPORepo(),
		products:  newMemProducts(products...),
		entries:   &memEntryRepo{},
		suppliers: newMemSuppliers(),
	}
	f.service = NewService(ServiceConfig{
		Repo:      f.repo,
		Products:  f.products,
		Entries:   stockentry.NewService(f.entries),
		Suppliers: f.suppliers,
		TxManager: passthroughTx{},
	})
	return f
}

func qty(units float64) types.Quantity {
	return types.NewQuantityFromFloat64(units)
}

func testProduct(stock float64) *product.Product {
	p := product.New("store-001", "FAB-COT-BLU", "Blue Cotton Fabric", product.KindSimple)
	p.StockLevel = qty(stock)
	p.BuyingPrice = types.MustMoney("12")
	p.SellingPrice = types.MustMoney("18.50")
	return p
}

func newPO(supplierID id.ID, productID id.ID, units float64, unitCost string) *PurchaseOrder {
	po := New("store-001", supplierID)
	po.Number = "PO-2026-00001"
	po.Lines = []Line{{ProductID: productID, Quantity: qty(units), UnitCost: types.MustMoney(unitCost)}}
	return po
}

func TestPOCreate_AppliesImmediately(t *testing.T) {
	p := testProduct(50)
	f := newPOFixture(t, p)
	supplierID := id.New()
	ctx := context.Background()

	selling := types.MustMoney("22")
	po := newPO(supplierID, p.ID, 30, "14")
	po.Lines[0].SellingPrice = &selling
	require.NoError(t, f.service.Create(ctx, po))

	// Stock up, prices moved, supplier owed the order total.
	assert.Equal(t, qty(80), p.StockLevel)
	assert.True(t, p.BuyingPrice.Equal(types.MustMoney("14")))
	assert.True(t, p.SellingPrice.Equal(types.MustMoney("22")))
	assert.True(t, po.TotalAmount.Equal(types.MustMoney("420")))
	assert.True(t, f.suppliers.balances[supplierID].Equal(types.MustMoney("420")))

	// Each line leaves a purchase_order entry linked to the document.
	require.Len(t, f.entries.entries, 1)
	entry := f.entries.entries[0]
	assert.Equal(t, stockentry.TypePurchaseOrder, entry.EntryType)
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, po.ID, *entry.ReferenceID)
}

func TestPOCreate_SellingPriceOptional(t *testing.T) {
	p := testProduct(10)
	f := newPOFixture(t, p)
	ctx := context.Background()

	po := newPO(id.New(), p.ID, 5, "14")
	require.NoError(t, f.service.Create(ctx, po))

	// Buying price moves, selling price stays.
	assert.True(t, p.BuyingPrice.Equal(types.MustMoney("14")))
	assert.True(t, p.SellingPrice.Equal(types.MustMoney("18.50")))
}

func TestPOUpdate_FullRetractAndReapply(t *testing.T) {
	p := testProduct(50)
	f := newPOFixture(t, p)
	supplierID := id.New()
	ctx := context.Background()

	po := newPO(supplierID, p.ID, 30, "14")
	require.NoError(t, f.service.Create(ctx, po))
	require.Equal(t, qty(80), p.StockLevel)

	edit := newPO(supplierID, p.ID, 10, "15")
	edit.ID = po.ID
	require.NoError(t, f.service.Update(ctx, edit))

	// Old 30 retracted, new 10 applied: 50 + 10.
	assert.Equal(t, qty(60), p.StockLevel)
	assert.True(t, f.suppliers.balances[supplierID].Equal(types.MustMoney("150")))

	// The old log entries were replaced.
	require.Len(t, f.entries.entries, 1)
	assert.Equal(t, qty(10), f.entries.entries[0].Quantity)
}

func TestPOUpdate_SupplierChangeMovesProductLink(t *testing.T) {
	p := testProduct(50)
	f := newPOFixture(t, p)
	oldSupplier := id.New()
	newSupplier := id.New()
	ctx := context.Background()

	po := newPO(oldSupplier, p.ID, 30, "14")
	require.NoError(t, f.service.Create(ctx, po))
	require.True(t, f.suppliers.links[oldSupplier][p.ID])

	edit := newPO(newSupplier, p.ID, 30, "14")
	edit.ID = po.ID
	require.NoError(t, f.service.Update(ctx, edit))

	// The product follows the order to the new supplier; the old link and
	// the old debt are both gone.
	assert.False(t, f.suppliers.links[oldSupplier][p.ID])
	assert.True(t, f.suppliers.links[newSupplier][p.ID])
	assert.True(t, f.suppliers.balances[oldSupplier].IsZero())
	assert.True(t, f.suppliers.balances[newSupplier].Equal(types.MustMoney("420")))
}

func TestPODelete_KeepsStockAndBalances(t *testing.T) {
	p := testProduct(50)
	f := newPOFixture(t, p)
	supplierID := id.New()
	ctx := context.Background()

	po := newPO(supplierID, p.ID, 30, "14")
	require.NoError(t, f.service.Create(ctx, po))

	require.NoError(t, f.service.Delete(ctx, po.ID))

	// Only the paper is gone; goods and debt stay where the order put them.
	_, err := f.repo.GetByID(ctx, po.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, qty(80), p.StockLevel)
	assert.True(t, f.suppliers.balances[supplierID].Equal(types.MustMoney("420")))
	assert.Len(t, f.entries.entries, 1)
}

func TestPOValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing supplier", func(t *testing.T) {
		po := New("store-001", id.Nil())
		po.Lines = []Line{{ProductID: id.New(), Quantity: qty(1), UnitCost: types.MustMoney("5")}}
		assert.Error(t, po.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		po := New("store-001", id.New())
		assert.Error(t, po.Validate(ctx))
	})

	t.Run("zero quantity", func(t *testing.T) {
		po := New("store-001", id.New())
		po.Lines = []Line{{ProductID: id.New(), Quantity: 0, UnitCost: types.MustMoney("5")}}
		assert.Error(t, po.Validate(ctx))
	})
}

func TestPOComputeTotals(t *testing.T) {
	po := New("store-001", id.New())
	po.Lines = []Line{
		{ProductID: id.New(), Quantity: qty(2.5), UnitCost: types.MustMoney("10")},
		{ProductID: id.New(), Quantity: qty(4), UnitCost: types.MustMoney("3.25")},
	}
	po.ComputeTotals()

	assert.True(t, po.Lines[0].TotalCost.Equal(types.MustMoney("25")))
	assert.True(t, po.Lines[1].TotalCost.Equal(types.MustMoney("13")))
	assert.True(t, po.TotalAmount.Equal(types.MustMoney("38")))
}
