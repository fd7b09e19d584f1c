package sale

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

// PendingStats summarizes sales that still carry an unpaid remainder.
type PendingStats struct {
	Count            int64       `json:"count"`
	TotalOutstanding types.Money `json:"totalOutstanding"`
}

// Repository persists sales.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	Update(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)
	Delete(ctx context.Context, saleID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error)

	// ListOutstandingByCustomer returns the customer's non-PAID sales ordered
	// oldest first, locked for update.
	ListOutstandingByCustomer(ctx context.Context, customerID id.ID) ([]*Sale, error)

	// CountByProduct counts sales with a line referencing the product.
	CountByProduct(ctx context.Context, productID id.ID) (int64, error)

	// PendingStats aggregates non-PAID sales for a store.
	PendingStats(ctx context.Context, storeID string) (PendingStats, error)
}
