package account

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

// Repository persists accounts. It also satisfies the ledger posting engine's
// account store.
type Repository interface {
	domain.CatalogRepository[*Account]

	// GetByName finds an account by display name within a store.
	GetByName(ctx context.Context, storeID, name string) (*Account, error)

	// AdjustBalance applies an atomic additive delta to the account balance.
	AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error
}
