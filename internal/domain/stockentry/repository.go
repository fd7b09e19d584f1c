package stockentry

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/domain"
)

// Repository persists stock entries.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	Update(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)

	// GetInitialByProduct returns the entry that seeded the product's stock.
	// Prefers rows flagged is_initial; the oldest wins if history contains
	// duplicates. Returns NOT_FOUND when the product has no initial entry.
	GetInitialByProduct(ctx context.Context, productID id.ID) (*Entry, error)

	ListByProduct(ctx context.Context, productID id.ID, filter domain.ListFilter) (domain.ListResult[*Entry], error)

	// DeleteByProduct removes all entries for a product (hard product delete).
	DeleteByProduct(ctx context.Context, productID id.ID) error

	// DeleteByReference removes entries created by a document (purchase order
	// revert).
	DeleteByReference(ctx context.Context, referenceID id.ID) error
}
