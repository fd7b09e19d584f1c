// Package account implements the money accounts postings settle against.
package account

import (
	"context"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/types"
)

// Type classifies an account for reporting.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeRevenue   Type = "revenue"
	TypeExpense   Type = "expense"
	TypeLiability Type = "liability"
)

// Default account names every store starts with.
const (
	DefaultCash = "Cash in Hand"
	DefaultBank = "Bank"
)

// Account is a money account. CurrentBalance moves only through ledger
// postings (and the opening balance at creation).
type Account struct {
	entity.Catalog

	StoreID     string `db:"store_id" json:"storeId"`
	AccountType Type   `db:"account_type" json:"accountType"`

	OpeningBalance types.Money `db:"opening_balance" json:"openingBalance"`
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
}

// New creates an Account with generated ID. The current balance starts at the
// opening balance.
func New(storeID, code, name string, accountType Type, opening types.Money) *Account {
	return &Account{
		Catalog:        entity.NewCatalog(code, name),
		StoreID:        storeID,
		AccountType:    accountType,
		OpeningBalance: opening,
		CurrentBalance: opening,
	}
}

// Validate implements entity.Validatable.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}
	if a.StoreID == "" {
		return apperror.NewValidation("store is required").WithDetail("field", "storeId")
	}
	switch a.AccountType {
	case TypeAsset, TypeRevenue, TypeExpense, TypeLiability:
	default:
		return apperror.NewValidation("unknown account type").
			WithDetail("field", "accountType").
			WithDetail("value", string(a.AccountType))
	}
	return nil
}
