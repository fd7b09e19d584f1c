package stockentry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

type memEntries struct {
	entries []*Entry
}

func (m *memEntries) Create(ctx context.Context, entry *Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memEntries) Update(ctx context.Context, entry *Entry) error {
	for i, e := range m.entries {
		if e.ID == entry.ID {
			m.entries[i] = entry
			return nil
		}
	}
	return apperror.NewNotFound("stock_entry", entry.ID.String())
}

func (m *memEntries) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	for _, e := range m.entries {
		if e.ID == entryID {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("stock_entry", entryID.String())
}

func (m *memEntries) GetInitialByProduct(ctx context.Context, productID id.ID) (*Entry, error) {
	for _, e := range m.entries {
		if e.ProductID == productID && e.IsInitial {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("stock_entry", productID.String())
}

func (m *memEntries) ListByProduct(ctx context.Context, productID id.ID, filter domain.ListFilter) (domain.ListResult[*Entry], error) {
	var items []*Entry
	for _, e := range m.entries {
		if e.ProductID == productID {
			items = append(items, e)
		}
	}
	return domain.ListResult[*Entry]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *memEntries) DeleteByProduct(ctx context.Context, productID id.ID) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memEntries) DeleteByReference(ctx context.Context, referenceID id.ID) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.ReferenceID == nil || *e.ReferenceID != referenceID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

type memSupplierLedger struct {
	balances map[id.ID]types.Money
	links    map[id.ID]map[id.ID]bool
	calls    int
}

func newMemSupplierLedger() *memSupplierLedger {
	return &memSupplierLedger{
		balances: make(map[id.ID]types.Money),
		links:    make(map[id.ID]map[id.ID]bool),
	}
}

func (m *memSupplierLedger) AdjustBalance(ctx context.Context, supplierID id.ID, delta types.Money) error {
	m.calls++
	m.balances[supplierID] = m.balances[supplierID].Add(delta)
	return nil
}

func (m *memSupplierLedger) AddProduct(ctx context.Context, supplierID, productID id.ID) error {
	if m.links[supplierID] == nil {
		m.links[supplierID] = make(map[id.ID]bool)
	}
	m.links[supplierID][productID] = true
	return nil
}

func (m *memSupplierLedger) RemoveProduct(ctx context.Context, supplierID, productID id.ID) error {
	delete(m.links[supplierID], productID)
	return nil
}

func qty(units float64) types.Quantity {
	return types.NewQuantityFromFloat64(units)
}

func TestEnsureInitial_ZeroQuantityIsNoop(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)

	entry, err := r.EnsureInitial(context.Background(), id.New(), "store-001", InitialSpec{
		Quantity: 0,
	})
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Empty(t, entries.entries)
	assert.Zero(t, suppliers.calls)
}

func TestEnsureInitial_CreditsSupplier(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)
	productID := id.New()
	supplierID := id.New()

	entry, err := r.EnsureInitial(context.Background(), productID, "store-001", InitialSpec{
		Quantity:    qty(50),
		BuyingPrice: types.MustMoney("12"),
		SupplierID:  &supplierID,
		Unit:        "m",
	})
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, TypeInitialStock, entry.EntryType)
	assert.True(t, entry.IsInitial)
	assert.Equal(t, "m", entry.Unit)
	assert.True(t, entry.TotalCost.Equal(types.MustMoney("600")))

	// We owe the supplier the receipt cost and carry the product link.
	assert.True(t, suppliers.balances[supplierID].Equal(types.MustMoney("600")))
	assert.True(t, suppliers.links[supplierID][productID])
}

func TestReconcileInitial_UnchangedIsNoop(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)
	productID := id.New()
	supplierID := id.New()

	spec := InitialSpec{
		Quantity:    qty(50),
		BuyingPrice: types.MustMoney("12"),
		SupplierID:  &supplierID,
	}
	initial, err := r.EnsureInitial(context.Background(), productID, "store-001", spec)
	require.NoError(t, err)
	callsAfterCreate := suppliers.calls

	// Reconciling against identical values must not move any balance.
	require.NoError(t, r.ReconcileInitial(context.Background(), initial, spec))
	assert.Equal(t, callsAfterCreate, suppliers.calls)
	assert.True(t, suppliers.balances[supplierID].Equal(types.MustMoney("600")))
}

func TestReconcileInitial_SameSupplierDelta(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)
	productID := id.New()
	supplierID := id.New()

	initial, err := r.EnsureInitial(context.Background(), productID, "store-001", InitialSpec{
		Quantity:    qty(50),
		BuyingPrice: types.MustMoney("12"),
		SupplierID:  &supplierID,
	})
	require.NoError(t, err)

	// 50 @ 12 = 600 becomes 40 @ 10 = 400: the supplier is owed 200 less.
	require.NoError(t, r.ReconcileInitial(context.Background(), initial, InitialSpec{
		Quantity:    qty(40),
		BuyingPrice: types.MustMoney("10"),
		SupplierID:  &supplierID,
	}))

	assert.True(t, suppliers.balances[supplierID].Equal(types.MustMoney("400")))
	assert.Equal(t, qty(40), initial.Quantity)
	assert.True(t, initial.TotalCost.Equal(types.MustMoney("400")))
}

func TestReconcileInitial_SupplierChange(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)
	productID := id.New()
	oldSupplier := id.New()
	newSupplier := id.New()

	initial, err := r.EnsureInitial(context.Background(), productID, "store-001", InitialSpec{
		Quantity:    qty(50),
		BuyingPrice: types.MustMoney("12"),
		SupplierID:  &oldSupplier,
	})
	require.NoError(t, err)

	require.NoError(t, r.ReconcileInitial(context.Background(), initial, InitialSpec{
		Quantity:    qty(30),
		BuyingPrice: types.MustMoney("20"),
		SupplierID:  &newSupplier,
	}))

	// Old supplier fully reversed, new supplier credited the full new total.
	assert.True(t, suppliers.balances[oldSupplier].IsZero())
	assert.True(t, suppliers.balances[newSupplier].Equal(types.MustMoney("600")))
	assert.False(t, suppliers.links[oldSupplier][productID])
	assert.True(t, suppliers.links[newSupplier][productID])
	require.NotNil(t, initial.SupplierID)
	assert.Equal(t, newSupplier, *initial.SupplierID)
}

func TestReconcileInitial_NilEntryIsNoop(t *testing.T) {
	r := NewReconciler(&memEntries{}, newMemSupplierLedger())
	assert.NoError(t, r.ReconcileInitial(context.Background(), nil, InitialSpec{Quantity: qty(5)}))
}

func TestReverseInitial(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)
	productID := id.New()
	supplierID := id.New()

	_, err := r.EnsureInitial(context.Background(), productID, "store-001", InitialSpec{
		Quantity:    qty(10),
		BuyingPrice: types.MustMoney("8"),
		SupplierID:  &supplierID,
	})
	require.NoError(t, err)

	require.NoError(t, r.ReverseInitial(context.Background(), productID))

	assert.True(t, suppliers.balances[supplierID].IsZero())
	assert.False(t, suppliers.links[supplierID][productID])
	assert.Empty(t, entries.entries)
}

func TestReverseInitial_NoHistory(t *testing.T) {
	r := NewReconciler(&memEntries{}, newMemSupplierLedger())
	assert.NoError(t, r.ReverseInitial(context.Background(), id.New()))
}

func TestRestock(t *testing.T) {
	entries := &memEntries{}
	suppliers := newMemSupplierLedger()
	r := NewReconciler(entries, suppliers)
	productID := id.New()
	supplierID := id.New()

	entry, err := r.Restock(context.Background(), productID, "store-001", InitialSpec{
		Quantity:    qty(20),
		BuyingPrice: types.MustMoney("5"),
		SupplierID:  &supplierID,
	})
	require.NoError(t, err)

	assert.Equal(t, TypeRestock, entry.EntryType)
	assert.False(t, entry.IsInitial)
	assert.True(t, suppliers.balances[supplierID].Equal(types.MustMoney("100")))
}

func TestRestock_RejectsNonPositiveQuantity(t *testing.T) {
	r := NewReconciler(&memEntries{}, newMemSupplierLedger())

	_, err := r.Restock(context.Background(), id.New(), "store-001", InitialSpec{Quantity: 0})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestEntry_Validate(t *testing.T) {
	ctx := context.Background()

	entry := NewEntry(id.New(), "store-001", TypeRestock, qty(5), types.MustMoney("3"))
	require.NoError(t, entry.Validate(ctx))

	bad := NewEntry(id.New(), "store-001", "teleport", qty(5), types.MustMoney("3"))
	assert.Error(t, bad.Validate(ctx))

	missing := NewEntry(id.Nil(), "store-001", TypeRestock, qty(5), types.MustMoney("3"))
	assert.Error(t, missing.Validate(ctx))
}

func TestGetInitialEntry_MissingReturnsNil(t *testing.T) {
	svc := NewService(&memEntries{})

	entry, err := svc.GetInitialEntry(context.Background(), id.New())
	require.NoError(t, err)
	assert.Nil(t, entry)
}
