package customer

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

// Repository persists customers.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// GetForUpdate loads the customer with a row lock inside a transaction.
	GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error)

	// GetByPhone finds a customer by normalized phone within a store.
	GetByPhone(ctx context.Context, storeID, phone string) (*Customer, error)

	// AdjustBalance applies an atomic additive delta to the customer balance.
	AdjustBalance(ctx context.Context, customerID id.ID, delta types.Money) error
}
