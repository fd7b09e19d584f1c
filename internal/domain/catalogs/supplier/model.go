// Package supplier implements the supplier catalog and the payable balance
// each supplier carries. Stock receipts credit the balance; payments debit it.
package supplier

import (
	"context"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/types"
)

// Supplier is a party the store buys stock from. CurrentBalance is the amount
// owed to the supplier.
type Supplier struct {
	entity.Catalog

	StoreID       string `db:"store_id" json:"storeId"`
	ContactPerson string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         string `db:"phone" json:"phone,omitempty"`
	Email         string `db:"email" json:"email,omitempty"`
	Address       string `db:"address" json:"address,omitempty"`

	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
}

// New creates a Supplier with generated ID.
func New(storeID, code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
		StoreID: storeID,
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}
	if s.StoreID == "" {
		return apperror.NewValidation("store is required").WithDetail("field", "storeId")
	}
	return nil
}
