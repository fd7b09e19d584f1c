// Package ledger implements the append-only account transaction log and the
// expense register. Every money movement in the system ends as a posting
// here: DEBIT means money in (balance up), CREDIT means money out.
package ledger

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

// EntryType is the posting direction.
type EntryType string

const (
	Debit  EntryType = "debit"
	Credit EntryType = "credit"
)

// ReferenceType names the business event behind a transaction.
type ReferenceType string

const (
	RefSale            ReferenceType = "sale"
	RefPayment         ReferenceType = "payment"
	RefRefund          ReferenceType = "refund"
	RefExpense         ReferenceType = "expense"
	RefSupplierPayment ReferenceType = "supplier_payment"
)

// Entry is one posting line inside a transaction. Stored as JSONB.
type Entry struct {
	AccountID id.ID       `json:"accountId"`
	EntryType EntryType   `json:"entryType"`
	Amount    types.Money `json:"amount"`
}

// Transaction is an append-only record of applied postings. Transactions are
// never updated or deleted; corrections are posted as new transactions.
type Transaction struct {
	entity.BaseEntity

	StoreID         string        `db:"store_id" json:"storeId"`
	Entries         []Entry       `db:"entries" json:"entries"`
	TotalAmount     types.Money   `db:"total_amount" json:"totalAmount"`
	ReferenceType   ReferenceType `db:"reference_type" json:"referenceType"`
	ReferenceID     id.ID         `db:"reference_id" json:"referenceId"`
	Notes           string        `db:"notes" json:"notes,omitempty"`
	CreatedBy       string        `db:"created_by" json:"createdBy,omitempty"`
	TransactionDate time.Time     `db:"transaction_date" json:"transactionDate"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
}

// Expense is a recorded business expense paid from an account.
type Expense struct {
	entity.Document

	Category   string      `db:"category" json:"category"`
	Amount     types.Money `db:"amount" json:"amount"`
	AccountID  id.ID       `db:"account_id" json:"accountId"`
	SupplierID *id.ID      `db:"supplier_id" json:"supplierId,omitempty"`
	Notes      string      `db:"notes" json:"notes,omitempty"`
}

// NewExpense creates an Expense document.
func NewExpense(storeID, category string, amount types.Money, accountID id.ID) *Expense {
	return &Expense{
		Document:  entity.NewDocument(storeID),
		Category:  category,
		Amount:    amount,
		AccountID: accountID,
	}
}

// Validate implements entity.Validatable.
func (e *Expense) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}
	if e.Category == "" {
		return apperror.NewValidation("category is required").WithDetail("field", "category")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	}
	if id.IsNil(e.AccountID) {
		return apperror.NewValidation("account is required").WithDetail("field", "accountId")
	}
	return nil
}
