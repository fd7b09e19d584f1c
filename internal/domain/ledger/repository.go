package ledger

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

// TransactionRepository persists the append-only transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, txnID id.ID) (*Transaction, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Transaction], error)
	ListByReference(ctx context.Context, refType ReferenceType, refID id.ID) ([]*Transaction, error)
}

// ExpenseRepository persists expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	GetByID(ctx context.Context, expenseID id.ID) (*Expense, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Expense], error)
}

// AccountStore is the slice of account behavior the posting engine needs.
type AccountStore interface {
	// Exists reports whether the account is present.
	Exists(ctx context.Context, accountID id.ID) (bool, error)

	// AdjustBalance applies an atomic additive delta to the account balance.
	AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error
}
