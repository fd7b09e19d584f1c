package product

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

// Repository persists products.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves the product with a row lock.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	// GetBySKU retrieves a product by normalized SKU within a store.
	GetBySKU(ctx context.Context, storeID, sku string) (*Product, error)

	// AdjustStock applies an additive stock delta. Raw materials move
	// TotalMeters and mirror it into StockLevel in the same statement.
	// Negative deltas are applied unconditionally; availability checks are
	// the caller's job, inside the same transaction.
	AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) error

	// SetPrices overwrites buying/selling price. Nil leaves a price unchanged.
	SetPrices(ctx context.Context, productID id.ID, buying, selling *types.Money) error
}

// SalesCounter reports how many sales reference a product. A product with at
// least one sale is locked: its price, stock, and supplier fields are
// preserved on edits.
type SalesCounter interface {
	CountByProduct(ctx context.Context, productID id.ID) (int64, error)
}
