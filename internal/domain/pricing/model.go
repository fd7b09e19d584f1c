// Package pricing implements discount rules evaluated at the till. Rules are
// CEL expressions over the sale's facts; the highest applicable discount
// wins.
package pricing

import (
	"context"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
)

// DiscountRule is a stored discount expression. Expression is a CEL program
// over the variables subtotal (double), item_count (int), customer_linked
// (bool) and payment_method (string), returning the discount amount as a
// number. A rule returning zero or less does not apply.
type DiscountRule struct {
	entity.Catalog

	StoreID    string `db:"store_id" json:"storeId"`
	Expression string `db:"expression" json:"expression"`
	Priority   int    `db:"priority" json:"priority"`
	Active     bool   `db:"active" json:"active"`
}

// New creates a DiscountRule.
func New(storeID, code, name, expression string) *DiscountRule {
	return &DiscountRule{
		Catalog:    entity.NewCatalog(code, name),
		StoreID:    storeID,
		Expression: expression,
		Active:     true,
	}
}

// Validate implements entity.Validatable. Expression syntax is checked
// separately at save time, where a compiler is available.
func (r *DiscountRule) Validate(ctx context.Context) error {
	if err := r.Catalog.Validate(ctx); err != nil {
		return err
	}
	if r.StoreID == "" {
		return apperror.NewValidation("store is required").WithDetail("field", "storeId")
	}
	if r.Expression == "" {
		return apperror.NewValidation("expression is required").WithDetail("field", "expression")
	}
	return nil
}
