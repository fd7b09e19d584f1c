package sale

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/catalogs/customer"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/domain/ledger"
)

// --- Test doubles ---

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
	if p.Kind == product.KindRawMaterial {
		p.TotalMeters = p.TotalMeters.Add(delta)
		p.SyncRawMaterialStock()
		return nil
	}
	p.StockLevel = p.StockLevel.Add(delta)
	return nil
}

type memCustomers struct {
	byID map[id.ID]*customer.Customer
}

func newMemCustomers(customers ...*customer.Customer) *memCustomers {
	m := &memCustomers{byID: make(map[id.ID]*customer.Customer)}
	for _, c := range customers {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCustomers) UpsertByPhone(ctx context.Context, storeID, phone, name string) (*customer.Customer, error) {
	for _, c := range m.byID {
		if c.StoreID == storeID && c.Phone == phone {
			return c, nil
		}
	}
	c := customer.New(storeID, "", name)
	c.Phone = phone
	m.byID[c.ID] = c
	return c, nil
}

func (m *memCustomers) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	c, ok := m.byID[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	return c, nil
}

func (m *memCustomers) AdjustBalance(ctx context.Context, customerID id.ID, delta types.Money) error {
	c, ok := m.byID[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	c.CurrentBalance = c.CurrentBalance.Add(delta)
	return nil
}

type staticAccounts struct {
	accountID id.ID
}

func (s staticAccounts) EnsureDefaults(ctx context.Context, storeID string) error { return nil }

func (s staticAccounts) ResolveForMethod(ctx context.Context, storeID, method string) (id.ID, error) {
	return s.accountID, nil
}

type posted struct {
	entries []ledger.Entry
	refType ledger.ReferenceType
	refID   id.ID
}

type recordingPoster struct {
	postings []posted
}

func (p *recordingPoster) Post(ctx context.Context, storeID string, entries []ledger.Entry, refType ledger.ReferenceType, refID id.ID, date time.Time, notes string) (*ledger.Transaction, error) {
	p.postings = append(p.postings, posted{entries: entries, refType: refType, refID: refID})
	return &ledger.Transaction{}, nil
}

type memSaleRepo struct {
	sales []*Sale
}

func (r *memSaleRepo) Create(ctx context.Context, s *Sale) error {
	r.sales = append(r.sales, s)
	return nil
}

func (r *memSaleRepo) Update(ctx context.Context, s *Sale) error {
	for i, existing := range r.sales {
		if existing.ID == s.ID {
			r.sales[i] = s
			return nil
		}
	}
	return apperror.NewNotFound("sale", s.ID.String())
}

func (r *memSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	for _, s := range r.sales {
		if s.ID == saleID {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", saleID.String())
}

func (r *memSaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *memSaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	for i, s := range r.sales {
		if s.ID == saleID {
			r.sales = append(r.sales[:i], r.sales[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("sale", saleID.String())
}

func (r *memSaleRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	return domain.ListResult[*Sale]{Items: r.sales, TotalCount: int64(len(r.sales))}, nil
}

func (r *memSaleRepo) ListOutstandingByCustomer(ctx context.Context, customerID id.ID) ([]*Sale, error) {
	var out []*Sale
	for _, s := range r.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID && s.PaymentStatus != StatusPaid {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSaleRepo) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	var count int64
	for _, s := range r.sales {
		if s.LineFor(productID) != nil {
			count++
		}
	}
	return count, nil
}

func (r *memSaleRepo) PendingStats(ctx context.Context, storeID string) (PendingStats, error) {
	stats := PendingStats{TotalOutstanding: types.Zero()}
	for _, s := range r.sales {
		if s.StoreID == storeID && s.PaymentStatus != StatusPaid {
			stats.Count++
			stats.TotalOutstanding = stats.TotalOutstanding.Add(s.Remaining())
		}
	}
	return stats, nil
}

type fixedDiscounts struct {
	amount types.Money
}

func (d fixedDiscounts) BestDiscount(ctx context.Context, storeID string, in DiscountInput) (types.Money, error) {
	return d.amount, nil
}

// --- Fixtures ---

type fixture struct {
	service   *Service
	repo      *memSaleRepo
	products  *memProducts
	customers *memCustomers
	poster    *recordingPoster
	accountID id.ID
}

func newFixture(t *testing.T, products []*product.Product, customers []*customer.Customer) *fixture {
	t.Helper()

	f := &fixture{
		repo:      &memSaleRepo{},
		products:  newMemProducts(products...),
		customers: newMemCustomers(customers...),
		poster:    &recordingPoster{},
		accountID: id.New(),
	}
	f.service = NewService(ServiceConfig{
		Repo:      f.repo,
		Products:  f.products,
		Customers: f.customers,
		Accounts:  staticAccounts{accountID: f.accountID},
		Poster:    f.poster,
		Discounts: fixedDiscounts{amount: types.Zero()},
		TxManager: passthroughTx{},
	})
	return f
}

func qty(units float64) types.Quantity {
	return types.NewQuantityFromFloat64(units)
}

func testProduct(stock float64, buying, selling string) *product.Product {
	p := product.New("store-001", "TEST-SKU", "Test Product", product.KindSimple)
	p.StockLevel = qty(stock)
	p.BuyingPrice = types.MustMoney(buying)
	p.SellingPrice = types.MustMoney(selling)
	return p
}

func newSale(productID id.ID, units float64, method PaymentMethod, paid string) *Sale {
	s := New("store-001", method)
	s.Number = "SALE-2026-00001"
	s.Lines = []Line{{ProductID: productID, Quantity: qty(units)}}
	s.PaidAmount = types.MustMoney(paid)
	return s
}

// --- Create ---

func TestCreate_CashSale(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 3, MethodCash, "300")
	require.NoError(t, f.service.Create(ctx, s))

	// Stock decremented, prices snapshotted, totals derived.
	assert.Equal(t, qty(7), p.StockLevel)
	assert.True(t, s.Subtotal.Equal(types.MustMoney("300")))
	assert.True(t, s.TotalAmount.Equal(types.MustMoney("300")))
	assert.True(t, s.ProfitAmount.Equal(types.MustMoney("150")))
	assert.Equal(t, StatusPaid, s.PaymentStatus)
	assert.Len(t, s.Payments, 1)
	assert.Equal(t, "TEST-SKU", s.Lines[0].SKU)
	assert.True(t, s.Lines[0].SellingPrice.Equal(types.MustMoney("100")))

	// Received money posted as a DEBIT against the sale.
	require.Len(t, f.poster.postings, 1)
	post := f.poster.postings[0]
	assert.Equal(t, ledger.RefSale, post.refType)
	assert.Equal(t, s.ID, post.refID)
	require.Len(t, post.entries, 1)
	assert.Equal(t, ledger.Debit, post.entries[0].EntryType)
	assert.True(t, post.entries[0].Amount.Equal(types.MustMoney("300")))
}

func TestCreate_CreditSaleRaisesCustomerBalance(t *testing.T) {
	p := testProduct(10, "50", "100")
	cust := customer.New("store-001", "CUST-001", "Ama Mensah")
	f := newFixture(t, []*product.Product{p}, []*customer.Customer{cust})
	ctx := context.Background()

	s := newSale(p.ID, 5, MethodCredit, "200")
	s.CustomerID = &cust.ID
	require.NoError(t, f.service.Create(ctx, s))

	assert.True(t, s.TotalAmount.Equal(types.MustMoney("500")))
	assert.Equal(t, StatusPartial, s.PaymentStatus)

	// The unpaid remainder lands on the customer.
	assert.True(t, cust.CurrentBalance.Equal(types.MustMoney("300")))

	// Only the received part is posted.
	require.Len(t, f.poster.postings, 1)
	assert.True(t, f.poster.postings[0].entries[0].Amount.Equal(types.MustMoney("200")))
}

func TestCreate_CreditSaleUpsertsCustomerByPhone(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 2, MethodCredit, "0")
	s.CustomerPhone = "+15550201"
	s.CustomerName = "Walk-in"
	require.NoError(t, f.service.Create(ctx, s))

	require.NotNil(t, s.CustomerID)
	cust, err := f.customers.GetForUpdate(ctx, *s.CustomerID)
	require.NoError(t, err)
	assert.True(t, cust.CurrentBalance.Equal(types.MustMoney("200")))
	assert.Equal(t, StatusPending, s.PaymentStatus)

	// Nothing received, nothing posted.
	assert.Empty(t, f.poster.postings)
}

func TestCreate_InsufficientStock(t *testing.T) {
	p := testProduct(2, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)

	s := newSale(p.ID, 3, MethodCash, "0")
	err := f.service.Create(context.Background(), s)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestCreate_PaidAmountClampedToTotal(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)

	s := newSale(p.ID, 1, MethodCash, "500")
	require.NoError(t, f.service.Create(context.Background(), s))

	assert.True(t, s.PaidAmount.Equal(types.MustMoney("100")))
	assert.Equal(t, StatusPaid, s.PaymentStatus)
}

func TestCreate_OversizedDiscountClampedToSubtotal(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)

	// Subtotal 100; a 500 discount cannot push the total below zero.
	s := newSale(p.ID, 1, MethodCash, "100")
	s.DiscountAmount = types.MustMoney("500")
	s.TaxAmount = types.MustMoney("10")
	require.NoError(t, f.service.Create(context.Background(), s))

	assert.True(t, s.DiscountAmount.Equal(types.MustMoney("100")))
	assert.True(t, s.TotalAmount.Equal(types.MustMoney("10")))
	assert.True(t, s.PaidAmount.Equal(types.MustMoney("10")))
	assert.Equal(t, StatusPaid, s.PaymentStatus)
}

func TestCreate_AutomaticDiscountApplied(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)
	f.service.discounts = fixedDiscounts{amount: types.MustMoney("30")}

	s := newSale(p.ID, 3, MethodCash, "270")
	require.NoError(t, f.service.Create(context.Background(), s))

	assert.True(t, s.DiscountAmount.Equal(types.MustMoney("30")))
	assert.True(t, s.TotalAmount.Equal(types.MustMoney("270")))
	assert.True(t, s.ProfitAmount.Equal(types.MustMoney("120")))
	assert.Equal(t, StatusPaid, s.PaymentStatus)
}

// --- Delete ---

func TestDelete_RestoresStockAndCustomerBalance(t *testing.T) {
	p := testProduct(10, "50", "100")
	cust := customer.New("store-001", "CUST-001", "Ama Mensah")
	f := newFixture(t, []*product.Product{p}, []*customer.Customer{cust})
	ctx := context.Background()

	s := newSale(p.ID, 4, MethodCredit, "100")
	s.CustomerID = &cust.ID
	require.NoError(t, f.service.Create(ctx, s))
	require.Equal(t, qty(6), p.StockLevel)
	require.True(t, cust.CurrentBalance.Equal(types.MustMoney("300")))
	postingsBefore := len(f.poster.postings)

	require.NoError(t, f.service.Delete(ctx, s.ID))

	assert.Equal(t, qty(10), p.StockLevel)
	assert.True(t, cust.CurrentBalance.IsZero())
	_, err := f.repo.GetByID(ctx, s.ID)
	assert.True(t, apperror.IsNotFound(err))

	// Received money stays on the books: no compensating posting.
	assert.Len(t, f.poster.postings, postingsBefore)
}

// --- RecordPayment ---

func TestRecordPayment_CapsAtRemaining(t *testing.T) {
	p := testProduct(10, "50", "100")
	cust := customer.New("store-001", "CUST-001", "Ama Mensah")
	f := newFixture(t, []*product.Product{p}, []*customer.Customer{cust})
	ctx := context.Background()

	s := newSale(p.ID, 5, MethodCredit, "200")
	s.CustomerID = &cust.ID
	require.NoError(t, f.service.Create(ctx, s))

	applied, err := f.service.RecordPayment(ctx, s.ID, types.MustMoney("400"), MethodCash, "")
	require.NoError(t, err)

	assert.True(t, applied.Equal(types.MustMoney("300")))
	assert.True(t, s.PaidAmount.Equal(types.MustMoney("500")))
	assert.Equal(t, StatusPaid, s.PaymentStatus)
	assert.Len(t, s.Payments, 2)

	// Applied amount comes back off the customer balance.
	assert.True(t, cust.CurrentBalance.IsZero())

	// Posted with a payment reference.
	last := f.poster.postings[len(f.poster.postings)-1]
	assert.Equal(t, ledger.RefPayment, last.refType)
	assert.True(t, last.entries[0].Amount.Equal(types.MustMoney("300")))
}

func TestRecordPayment_RejectsSettledSale(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 1, MethodCash, "100")
	require.NoError(t, f.service.Create(ctx, s))
	require.Equal(t, StatusPaid, s.PaymentStatus)

	_, err := f.service.RecordPayment(ctx, s.ID, types.MustMoney("10"), MethodCash, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.service.RecordPayment(context.Background(), id.New(), types.Zero(), MethodCash, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

// --- Refund ---

func TestRefund_WithinCeiling(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 10, MethodCash, "200")
	require.NoError(t, f.service.Create(ctx, s))
	require.Equal(t, qty(0), p.StockLevel)

	refund, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items:  []RefundItem{{ProductID: p.ID, Quantity: qty(3)}},
		Method: MethodCash,
		Reason: "damaged",
	})
	require.NoError(t, err)

	assert.True(t, refund.Amount.Equal(types.MustMoney("60")))
	assert.Equal(t, qty(3), p.StockLevel)
	assert.True(t, s.RefundedAmount.Equal(types.MustMoney("60")))

	// PaidAmount and status are never rewritten by refunds.
	assert.True(t, s.PaidAmount.Equal(types.MustMoney("200")))
	assert.Equal(t, StatusPaid, s.PaymentStatus)
	assert.True(t, s.NetPaid().Equal(types.MustMoney("140")))

	// Money leaving the store is a CREDIT with a refund reference.
	last := f.poster.postings[len(f.poster.postings)-1]
	assert.Equal(t, ledger.RefRefund, last.refType)
	assert.Equal(t, ledger.Credit, last.entries[0].EntryType)
}

func TestRefund_ExceedsPaidCeiling(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	// Partial payment: total 200, paid 100.
	s := newSale(p.ID, 10, MethodCash, "100")
	require.NoError(t, f.service.Create(ctx, s))

	_, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{{ProductID: p.ID, Quantity: qty(3)}},
	})
	require.NoError(t, err)
	require.True(t, s.MaxRefundable().Equal(types.MustMoney("40")))

	// 3 more units would be 60, above the remaining 40.
	_, err = f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{{ProductID: p.ID, Quantity: qty(3)}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRefundLimit, appErr.Code)

	// The rejected refund moved nothing.
	assert.True(t, s.RefundedAmount.Equal(types.MustMoney("60")))
	assert.Equal(t, qty(3), p.StockLevel)
}

func TestRefund_ExceedsSoldQuantity(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 4, MethodCash, "80")
	require.NoError(t, f.service.Create(ctx, s))

	_, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{{ProductID: p.ID, Quantity: qty(3)}},
	})
	require.NoError(t, err)

	// 3 of 4 already refunded; 2 more exceeds the line.
	_, err = f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{{ProductID: p.ID, Quantity: qty(2)}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRefundLimit, appErr.Code)
}

func TestRefund_DuplicateItemRowsShareCeiling(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	// One unit sold; tax keeps the money ceiling above the two-row total so
	// only the quantity ceiling can stop the request.
	s := newSale(p.ID, 1, MethodCash, "100")
	s.TaxAmount = types.MustMoney("80")
	require.NoError(t, f.service.Create(ctx, s))
	require.Equal(t, qty(9), p.StockLevel)
	require.True(t, s.MaxRefundable().Equal(types.MustMoney("100")))

	// Two rows naming the same product are one request for 2 of 1 sold.
	_, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{
			{ProductID: p.ID, Quantity: qty(1)},
			{ProductID: p.ID, Quantity: qty(1)},
		},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRefundLimit, appErr.Code)

	// Nothing moved.
	assert.Equal(t, qty(9), p.StockLevel)
	assert.Equal(t, qty(0), s.RefundedQty(p.ID))
	assert.True(t, s.RefundedAmount.IsZero())
}

func TestRefund_DuplicateItemRowsWithinLimitCombine(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 4, MethodCash, "80")
	require.NoError(t, f.service.Create(ctx, s))

	refund, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{
			{ProductID: p.ID, Quantity: qty(1)},
			{ProductID: p.ID, Quantity: qty(2)},
		},
	})
	require.NoError(t, err)

	assert.True(t, refund.Amount.Equal(types.MustMoney("60")))
	assert.Equal(t, qty(3), s.RefundedQty(p.ID))
	assert.Equal(t, qty(9), p.StockLevel)
}

func TestRefund_UnsoldProduct(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 2, MethodCash, "40")
	require.NoError(t, f.service.Create(ctx, s))

	_, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{{ProductID: id.New(), Quantity: qty(1)}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRefund_UnpaidSale(t *testing.T) {
	p := testProduct(10, "10", "20")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	s := newSale(p.ID, 2, MethodCash, "0")
	require.NoError(t, f.service.Create(ctx, s))

	_, err := f.service.Refund(ctx, s.ID, RefundRequest{
		Items: []RefundItem{{ProductID: p.ID, Quantity: qty(1)}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRefundLimit, appErr.Code)
}

// --- AllocateCustomerPayment ---

func TestAllocateCustomerPayment_OldestFirst(t *testing.T) {
	p := testProduct(100, "50", "100")
	cust := customer.New("store-001", "CUST-001", "Ama Mensah")
	f := newFixture(t, []*product.Product{p}, []*customer.Customer{cust})
	ctx := context.Background()

	// S1: total 100, unpaid. S2: total 50, unpaid.
	s1 := newSale(p.ID, 1, MethodCredit, "0")
	s1.CustomerID = &cust.ID
	require.NoError(t, f.service.Create(ctx, s1))

	s2 := New("store-001", MethodCredit)
	s2.Number = "SALE-2026-00002"
	s2.Lines = []Line{{ProductID: p.ID, Quantity: qty(0.5)}}
	s2.CustomerID = &cust.ID
	require.NoError(t, f.service.Create(ctx, s2))

	require.True(t, cust.CurrentBalance.Equal(types.MustMoney("150")))

	applied, err := f.service.AllocateCustomerPayment(ctx, cust.ID, types.MustMoney("120"), MethodCash, "")
	require.NoError(t, err)

	assert.True(t, applied.Equal(types.MustMoney("120")))
	assert.Equal(t, StatusPaid, s1.PaymentStatus)
	assert.Equal(t, StatusPartial, s2.PaymentStatus)
	assert.True(t, s2.PaidAmount.Equal(types.MustMoney("20")))
	assert.True(t, cust.CurrentBalance.Equal(types.MustMoney("30")))

	// One posting for the whole allocation.
	last := f.poster.postings[len(f.poster.postings)-1]
	assert.Equal(t, ledger.RefPayment, last.refType)
	assert.Equal(t, cust.ID, last.refID)
	assert.True(t, last.entries[0].Amount.Equal(types.MustMoney("120")))
}

func TestAllocateCustomerPayment_AppliesLessThanRequested(t *testing.T) {
	p := testProduct(100, "50", "100")
	cust := customer.New("store-001", "CUST-001", "Ama Mensah")
	f := newFixture(t, []*product.Product{p}, []*customer.Customer{cust})
	ctx := context.Background()

	s1 := newSale(p.ID, 1, MethodCredit, "0")
	s1.CustomerID = &cust.ID
	require.NoError(t, f.service.Create(ctx, s1))

	applied, err := f.service.AllocateCustomerPayment(ctx, cust.ID, types.MustMoney("250"), MethodCash, "")
	require.NoError(t, err)

	assert.True(t, applied.Equal(types.MustMoney("100")))
	assert.Equal(t, StatusPaid, s1.PaymentStatus)
	assert.True(t, cust.CurrentBalance.IsZero())
}

func TestAllocateCustomerPayment_NoOutstandingSales(t *testing.T) {
	cust := customer.New("store-001", "CUST-001", "Ama Mensah")
	f := newFixture(t, nil, []*customer.Customer{cust})

	_, err := f.service.AllocateCustomerPayment(context.Background(), cust.ID, types.MustMoney("50"), MethodCash, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

// --- Product lock predicate ---

func TestCountByProduct(t *testing.T) {
	p := testProduct(10, "50", "100")
	f := newFixture(t, []*product.Product{p}, nil)
	ctx := context.Background()

	count, err := f.service.CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	s := newSale(p.ID, 1, MethodCash, "100")
	require.NoError(t, f.service.Create(ctx, s))

	count, err = f.service.CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
