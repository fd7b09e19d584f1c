// Package customer implements the customer catalog and the receivable balance
// carried by credit customers. Credit sales raise the balance; payments and
// refunds lower it.
package customer

import (
	"context"
	"strings"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/types"
)

// Customer is a buyer known to the store. CurrentBalance is the amount the
// customer owes on credit sales.
type Customer struct {
	entity.Catalog

	StoreID string `db:"store_id" json:"storeId"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Email   string `db:"email" json:"email,omitempty"`
	Address string `db:"address" json:"address,omitempty"`

	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
}

// New creates a Customer with generated ID.
func New(storeID, code, name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(code, name),
		StoreID: storeID,
	}
}

// NormalizePhone strips spaces and dashes so lookups match regardless of
// how the number was typed at the till.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.StoreID == "" {
		return apperror.NewValidation("store is required").WithDetail("field", "storeId")
	}
	return nil
}
