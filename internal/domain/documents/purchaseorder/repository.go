package purchaseorder

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/domain"
)

// Repository persists purchase orders.
type Repository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	Update(ctx context.Context, po *PurchaseOrder) error
	GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	GetForUpdate(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	Delete(ctx context.Context, poID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*PurchaseOrder], error)
}
