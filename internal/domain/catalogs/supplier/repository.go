package supplier

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

// Repository persists suppliers and the supplier-product links.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// GetForUpdate loads the supplier with a row lock inside a transaction.
	GetForUpdate(ctx context.Context, supplierID id.ID) (*Supplier, error)

	// AdjustBalance applies an atomic additive delta to the supplier balance.
	AdjustBalance(ctx context.Context, supplierID id.ID, delta types.Money) error

	// AddProduct links a product to the supplier (idempotent).
	AddProduct(ctx context.Context, supplierID, productID id.ID) error

	// RemoveProduct unlinks a product from the supplier.
	RemoveProduct(ctx context.Context, supplierID, productID id.ID) error

	// ProductIDs returns products supplied by the supplier.
	ProductIDs(ctx context.Context, supplierID id.ID) ([]id.ID, error)
}
