package ledger

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	appctx "tillpoint/internal/core/context"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/pkg/logger"
	"tillpoint/pkg/numerator"
)

// Service is the posting engine. Post is designed to be called as the LAST
// write of a business transaction so a posting failure rolls back the whole
// operation.
type Service struct {
	transactions TransactionRepository
	expenses     ExpenseRepository
	accounts     AccountStore
	txManager    tx.Manager
	numerator    *numerator.Service
}

// NewService creates a ledger service.
func NewService(
	transactions TransactionRepository,
	expenses ExpenseRepository,
	accounts AccountStore,
	txManager tx.Manager,
	num *numerator.Service,
) *Service {
	return &Service{
		transactions: transactions,
		expenses:     expenses,
		accounts:     accounts,
		txManager:    txManager,
		numerator:    num,
	}
}

// Post applies a set of entries and records the transaction.
//
// Entries with a non-positive amount or a missing account are skipped with a
// warning rather than failing the caller; if nothing remains the transaction
// is not recorded at all. DEBIT increases the account balance, CREDIT
// decreases it.
func (s *Service) Post(ctx context.Context, storeID string, entries []Entry, refType ReferenceType, refID id.ID, date time.Time, notes string) (*Transaction, error) {
	applied := make([]Entry, 0, len(entries))
	total := types.Zero()

	for _, e := range entries {
		if !e.Amount.IsPositive() {
			logger.Warn(ctx, "skipping non-positive ledger entry",
				"account_id", e.AccountID,
				"amount", e.Amount,
				"reference_type", string(refType),
				"reference_id", refID,
			)
			continue
		}

		if id.IsNil(e.AccountID) {
			logger.Warn(ctx, "skipping ledger entry without account",
				"reference_type", string(refType),
				"reference_id", refID,
			)
			continue
		}

		exists, err := s.accounts.Exists(ctx, e.AccountID)
		if err != nil {
			return nil, err
		}
		if !exists {
			logger.Warn(ctx, "skipping ledger entry for unknown account",
				"account_id", e.AccountID,
				"reference_type", string(refType),
				"reference_id", refID,
			)
			continue
		}

		delta := e.Amount
		if e.EntryType == Credit {
			delta = delta.Neg()
		}
		if err := s.accounts.AdjustBalance(ctx, e.AccountID, delta); err != nil {
			return nil, err
		}

		applied = append(applied, e)
		total = total.Add(e.Amount)
	}

	if len(applied) == 0 {
		logger.Debug(ctx, "no applicable ledger entries, transaction skipped",
			"reference_type", string(refType),
			"reference_id", refID,
		)
		return nil, nil
	}

	if date.IsZero() {
		date = time.Now().UTC()
	}

	txn := &Transaction{
		BaseEntity:      entity.NewBaseEntity(),
		StoreID:         storeID,
		Entries:         applied,
		TotalAmount:     total,
		ReferenceType:   refType,
		ReferenceID:     refID,
		Notes:           notes,
		CreatedBy:       appctx.GetUserID(ctx),
		TransactionDate: date,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// RecordExpense persists an expense and posts the matching CREDIT on the
// paying account, all in one transaction.
func (s *Service) RecordExpense(ctx context.Context, expense *Expense) error {
	if err := expense.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if expense.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("EXP"), nil, expense.Date)
			if err != nil {
				return err
			}
			expense.Number = number
		}
		expense.CreatedBy = appctx.GetUserID(ctx)

		if err := s.expenses.Create(ctx, expense); err != nil {
			return err
		}

		_, err := s.Post(ctx, expense.StoreID, []Entry{{
			AccountID: expense.AccountID,
			EntryType: Credit,
			Amount:    expense.Amount,
		}}, RefExpense, expense.ID, expense.Date, expense.Category)
		return err
	})
}

// RecordSupplierPayment persists a payment to a supplier as an expense and
// posts the matching CREDIT with a supplier_payment reference. The supplier
// balance itself is adjusted by the caller.
func (s *Service) RecordSupplierPayment(ctx context.Context, expense *Expense) error {
	if err := expense.Validate(ctx); err != nil {
		return err
	}
	if expense.SupplierID == nil || id.IsNil(*expense.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if expense.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("EXP"), nil, expense.Date)
			if err != nil {
				return err
			}
			expense.Number = number
		}
		expense.CreatedBy = appctx.GetUserID(ctx)

		if err := s.expenses.Create(ctx, expense); err != nil {
			return err
		}

		_, err := s.Post(ctx, expense.StoreID, []Entry{{
			AccountID: expense.AccountID,
			EntryType: Credit,
			Amount:    expense.Amount,
		}}, RefSupplierPayment, *expense.SupplierID, expense.Date, expense.Notes)
		return err
	})
}

// ListTransactions returns the transaction log page.
func (s *Service) ListTransactions(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Transaction], error) {
	return s.transactions.List(ctx, filter)
}

// ListByReference returns transactions recorded for a business event.
func (s *Service) ListByReference(ctx context.Context, refType ReferenceType, refID id.ID) ([]*Transaction, error) {
	return s.transactions.ListByReference(ctx, refType, refID)
}

// ListExpenses returns the expense register page.
func (s *Service) ListExpenses(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Expense], error) {
	return s.expenses.List(ctx, filter)
}

// GetExpense retrieves one expense.
func (s *Service) GetExpense(ctx context.Context, expenseID id.ID) (*Expense, error) {
	return s.expenses.GetByID(ctx, expenseID)
}
