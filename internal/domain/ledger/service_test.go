package ledger

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
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memTransactions struct {
	created []*Transaction
}

func (m *memTransactions) Create(ctx context.Context, txn *Transaction) error {
	m.created = append(m.created, txn)
	return nil
}

func (m *memTransactions) GetByID(ctx context.Context, txnID id.ID) (*Transaction, error) {
	for _, txn := range m.created {
		if txn.ID == txnID {
			return txn, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", txnID.String())
}

func (m *memTransactions) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Transaction], error) {
	return domain.ListResult[*Transaction]{Items: m.created, TotalCount: int64(len(m.created))}, nil
}

func (m *memTransactions) ListByReference(ctx context.Context, refType ReferenceType, refID id.ID) ([]*Transaction, error) {
	var out []*Transaction
	for _, txn := range m.created {
		if txn.ReferenceType == refType && txn.ReferenceID == refID {
			out = append(out, txn)
		}
	}
	return out, nil
}

type memExpenses struct {
	created []*Expense
}

func (m *memExpenses) Create(ctx context.Context, expense *Expense) error {
	m.created = append(m.created, expense)
	return nil
}

func (m *memExpenses) GetByID(ctx context.Context, expenseID id.ID) (*Expense, error) {
	for _, e := range m.created {
		if e.ID == expenseID {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("expense", expenseID.String())
}

func (m *memExpenses) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Expense], error) {
	return domain.ListResult[*Expense]{Items: m.created, TotalCount: int64(len(m.created))}, nil
}

type memAccounts struct {
	balances map[id.ID]types.Money
}

func newMemAccounts(accountIDs ...id.ID) *memAccounts {
	m := &memAccounts{balances: make(map[id.ID]types.Money)}
	for _, accountID := range accountIDs {
		m.balances[accountID] = types.Zero()
	}
	return m
}

func (m *memAccounts) Exists(ctx context.Context, accountID id.ID) (bool, error) {
	_, ok := m.balances[accountID]
	return ok, nil
}

func (m *memAccounts) AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error {
	balance, ok := m.balances[accountID]
	if !ok {
		return apperror.NewNotFound("account", accountID.String())
	}
	m.balances[accountID] = balance.Add(delta)
	return nil
}

func newTestService() (*Service, *memTransactions, *memExpenses, *memAccounts) {
	transactions := &memTransactions{}
	expenses := &memExpenses{}
	accounts := newMemAccounts()
	svc := NewService(transactions, expenses, accounts, passthroughTx{}, nil)
	return svc, transactions, expenses, accounts
}

func TestPost_AppliesEntries(t *testing.T) {
	svc, transactions, _, accounts := newTestService()
	cashID := id.New()
	bankID := id.New()
	accounts.balances[cashID] = types.Zero()
	accounts.balances[bankID] = types.MustMoney("1000")

	refID := id.New()
	date := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	txn, err := svc.Post(context.Background(), "store-001", []Entry{
		{AccountID: cashID, EntryType: Debit, Amount: types.MustMoney("300")},
		{AccountID: bankID, EntryType: Credit, Amount: types.MustMoney("40")},
	}, RefSale, refID, date, "SALE-2026-00001")
	require.NoError(t, err)
	require.NotNil(t, txn)

	// DEBIT raises the balance, CREDIT lowers it.
	assert.True(t, accounts.balances[cashID].Equal(types.MustMoney("300")))
	assert.True(t, accounts.balances[bankID].Equal(types.MustMoney("960")))

	require.Len(t, transactions.created, 1)
	assert.Len(t, txn.Entries, 2)
	assert.True(t, txn.TotalAmount.Equal(types.MustMoney("340")))
	assert.Equal(t, RefSale, txn.ReferenceType)
	assert.Equal(t, refID, txn.ReferenceID)
	assert.Equal(t, date, txn.TransactionDate)
}

func TestPost_SkipsUnpostableEntries(t *testing.T) {
	svc, transactions, _, accounts := newTestService()
	cashID := id.New()
	accounts.balances[cashID] = types.Zero()

	txn, err := svc.Post(context.Background(), "store-001", []Entry{
		{AccountID: cashID, EntryType: Debit, Amount: types.Zero()},              // non-positive
		{AccountID: id.Nil(), EntryType: Debit, Amount: types.MustMoney("50")},   // no account
		{AccountID: id.New(), EntryType: Debit, Amount: types.MustMoney("70")},   // unknown account
		{AccountID: cashID, EntryType: Debit, Amount: types.MustMoney("100")},    // valid
		{AccountID: cashID, EntryType: Credit, Amount: types.MustMoney("-5")},    // negative
	}, RefPayment, id.New(), time.Now(), "")
	require.NoError(t, err)
	require.NotNil(t, txn)

	// Only the valid entry survives.
	assert.Len(t, txn.Entries, 1)
	assert.True(t, txn.TotalAmount.Equal(types.MustMoney("100")))
	assert.True(t, accounts.balances[cashID].Equal(types.MustMoney("100")))
	assert.Len(t, transactions.created, 1)
}

func TestPost_AllEntriesSkipped(t *testing.T) {
	svc, transactions, _, _ := newTestService()

	txn, err := svc.Post(context.Background(), "store-001", []Entry{
		{AccountID: id.Nil(), EntryType: Debit, Amount: types.MustMoney("50")},
		{AccountID: id.New(), EntryType: Debit, Amount: types.Zero()},
	}, RefSale, id.New(), time.Now(), "")

	// Nothing applicable: no transaction, no error.
	require.NoError(t, err)
	assert.Nil(t, txn)
	assert.Empty(t, transactions.created)
}

func TestPost_DefaultsZeroDate(t *testing.T) {
	svc, _, _, accounts := newTestService()
	cashID := id.New()
	accounts.balances[cashID] = types.Zero()

	before := time.Now().UTC()
	txn, err := svc.Post(context.Background(), "store-001", []Entry{
		{AccountID: cashID, EntryType: Debit, Amount: types.MustMoney("10")},
	}, RefSale, id.New(), time.Time{}, "")
	require.NoError(t, err)

	assert.False(t, txn.TransactionDate.Before(before))
}

func TestRecordExpense(t *testing.T) {
	svc, transactions, expenses, accounts := newTestService()
	cashID := id.New()
	accounts.balances[cashID] = types.MustMoney("500")

	expense := NewExpense("store-001", "rent", types.MustMoney("120"), cashID)
	expense.Number = "EXP-2026-00001"

	require.NoError(t, svc.RecordExpense(context.Background(), expense))

	require.Len(t, expenses.created, 1)
	assert.True(t, accounts.balances[cashID].Equal(types.MustMoney("380")))

	require.Len(t, transactions.created, 1)
	txn := transactions.created[0]
	assert.Equal(t, RefExpense, txn.ReferenceType)
	assert.Equal(t, expense.ID, txn.ReferenceID)
	assert.Equal(t, Credit, txn.Entries[0].EntryType)
}

func TestRecordExpense_Invalid(t *testing.T) {
	svc, _, expenses, _ := newTestService()

	tests := []struct {
		name    string
		expense *Expense
	}{
		{"zero amount", NewExpense("store-001", "rent", types.Zero(), id.New())},
		{"missing category", NewExpense("store-001", "", types.MustMoney("10"), id.New())},
		{"missing account", NewExpense("store-001", "rent", types.MustMoney("10"), id.Nil())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecordExpense(context.Background(), tt.expense)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
	assert.Empty(t, expenses.created)
}

func TestRecordSupplierPayment_RequiresSupplier(t *testing.T) {
	svc, _, _, accounts := newTestService()
	cashID := id.New()
	accounts.balances[cashID] = types.Zero()

	expense := NewExpense("store-001", "supplier_payment", types.MustMoney("80"), cashID)
	expense.Number = "EXP-2026-00002"

	err := svc.RecordSupplierPayment(context.Background(), expense)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRecordSupplierPayment(t *testing.T) {
	svc, transactions, expenses, accounts := newTestService()
	cashID := id.New()
	supplierID := id.New()
	accounts.balances[cashID] = types.MustMoney("200")

	expense := NewExpense("store-001", "supplier_payment", types.MustMoney("80"), cashID)
	expense.Number = "EXP-2026-00003"
	expense.SupplierID = &supplierID

	require.NoError(t, svc.RecordSupplierPayment(context.Background(), expense))

	require.Len(t, expenses.created, 1)
	assert.True(t, accounts.balances[cashID].Equal(types.MustMoney("120")))

	require.Len(t, transactions.created, 1)
	txn := transactions.created[0]
	assert.Equal(t, RefSupplierPayment, txn.ReferenceType)
	assert.Equal(t, supplierID, txn.ReferenceID)
}
