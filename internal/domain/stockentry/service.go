package stockentry

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/pkg/logger"
)

// SupplierLedger is the slice of supplier behavior the stock log needs.
// Receiving stock credits the supplier (we owe more); reversing a receipt
// debits it.
type SupplierLedger interface {
	AdjustBalance(ctx context.Context, supplierID id.ID, delta types.Money) error
	AddProduct(ctx context.Context, supplierID, productID id.ID) error
	RemoveProduct(ctx context.Context, supplierID, productID id.ID) error
}

// Service provides read/write access to the stock entry log.
type Service struct {
	repo Repository
}

// NewService creates a stock entry service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Log validates and persists an entry.
func (s *Service) Log(ctx context.Context, entry *Entry) error {
	if err := entry.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, entry)
}

// GetInitialEntry returns the product's initial stock entry, or nil when the
// product was created without stock.
func (s *Service) GetInitialEntry(ctx context.Context, productID id.ID) (*Entry, error) {
	entry, err := s.repo.GetInitialByProduct(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// ListByProduct returns the product's receipt history.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID, filter domain.ListFilter) (domain.ListResult[*Entry], error) {
	return s.repo.ListByProduct(ctx, productID, filter)
}

// DeleteByReference removes entries belonging to a reverted document.
func (s *Service) DeleteByReference(ctx context.Context, referenceID id.ID) error {
	return s.repo.DeleteByReference(ctx, referenceID)
}

// InitialSpec describes the desired initial-stock state of a product.
type InitialSpec struct {
	Quantity      types.Quantity
	BuyingPrice   types.Money
	SupplierID    *id.ID
	Unit          string
	InvoiceNumber string
	InvoiceDate   *time.Time
}

// Reconciler keeps the initial stock entry and supplier balances consistent
// with the product's declared initial stock. All methods expect to run inside
// the caller's transaction.
type Reconciler struct {
	entries   Repository
	suppliers SupplierLedger
}

// NewReconciler creates a reconciler over the entry log and supplier ledger.
func NewReconciler(entries Repository, suppliers SupplierLedger) *Reconciler {
	return &Reconciler{entries: entries, suppliers: suppliers}
}

// EnsureInitial records the initial stock entry for a newly created product
// and credits the supplier with the receipt cost. No-op when the product
// starts with zero stock.
func (r *Reconciler) EnsureInitial(ctx context.Context, productID id.ID, storeID string, spec InitialSpec) (*Entry, error) {
	if !spec.Quantity.IsPositive() {
		return nil, nil
	}

	entry := NewEntry(productID, storeID, TypeInitialStock, spec.Quantity, spec.BuyingPrice)
	entry.SupplierID = spec.SupplierID
	if spec.Unit != "" {
		entry.Unit = spec.Unit
	}
	entry.InvoiceNumber = spec.InvoiceNumber
	entry.InvoiceDate = spec.InvoiceDate

	if err := r.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	if spec.SupplierID != nil {
		if err := r.suppliers.AdjustBalance(ctx, *spec.SupplierID, entry.TotalCost); err != nil {
			return nil, err
		}
		if err := r.suppliers.AddProduct(ctx, *spec.SupplierID, productID); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// ReconcileInitial compensates supplier balances after an edit of a product's
// initial stock and rewrites the entry in place.
//
// Same supplier: balance moves by (newTotal - oldTotal), so reconciling an
// unchanged product is a no-op. Supplier change: the old supplier is debited
// the full old total and the new supplier credited the full new total.
func (r *Reconciler) ReconcileInitial(ctx context.Context, old *Entry, spec InitialSpec) error {
	if old == nil {
		return nil
	}

	oldTotal := old.TotalCost
	newTotal := TotalCost(spec.Quantity, spec.BuyingPrice)

	oldSupplier := old.SupplierID
	newSupplier := spec.SupplierID

	switch {
	case sameSupplier(oldSupplier, newSupplier):
		if newSupplier != nil {
			difference := newTotal.Sub(oldTotal)
			if !difference.IsZero() {
				if err := r.suppliers.AdjustBalance(ctx, *newSupplier, difference); err != nil {
					return err
				}
			}
		}

	default:
		if oldSupplier != nil {
			if err := r.suppliers.AdjustBalance(ctx, *oldSupplier, oldTotal.Neg()); err != nil {
				return err
			}
			if err := r.suppliers.RemoveProduct(ctx, *oldSupplier, old.ProductID); err != nil {
				return err
			}
		}
		if newSupplier != nil {
			if err := r.suppliers.AdjustBalance(ctx, *newSupplier, newTotal); err != nil {
				return err
			}
			if err := r.suppliers.AddProduct(ctx, *newSupplier, old.ProductID); err != nil {
				return err
			}
		}
	}

	old.Quantity = spec.Quantity
	old.BuyingPrice = spec.BuyingPrice
	old.TotalCost = newTotal
	old.SupplierID = newSupplier
	if spec.Unit != "" {
		old.Unit = spec.Unit
	}
	if spec.InvoiceNumber != "" {
		old.InvoiceNumber = spec.InvoiceNumber
	}
	if spec.InvoiceDate != nil {
		old.InvoiceDate = spec.InvoiceDate
	}

	return r.entries.Update(ctx, old)
}

// ReverseInitial undoes the supplier credit of a product's receipt history
// and removes its entries. Used when a never-sold product is hard-deleted.
func (r *Reconciler) ReverseInitial(ctx context.Context, productID id.ID) error {
	initial, err := r.entries.GetInitialByProduct(ctx, productID)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	if initial != nil && initial.SupplierID != nil {
		if err := r.suppliers.AdjustBalance(ctx, *initial.SupplierID, initial.TotalCost.Neg()); err != nil {
			return err
		}
		if err := r.suppliers.RemoveProduct(ctx, *initial.SupplierID, productID); err != nil {
			return err
		}
	}

	if err := r.entries.DeleteByProduct(ctx, productID); err != nil {
		return err
	}

	logger.Debug(ctx, "reversed initial stock", "product_id", productID)
	return nil
}

// Restock records an additional receipt and credits the supplier.
func (r *Reconciler) Restock(ctx context.Context, productID id.ID, storeID string, spec InitialSpec) (*Entry, error) {
	if !spec.Quantity.IsPositive() {
		return nil, apperror.NewValidation("restock quantity must be positive").
			WithDetail("field", "quantity")
	}

	entry := NewEntry(productID, storeID, TypeRestock, spec.Quantity, spec.BuyingPrice)
	entry.SupplierID = spec.SupplierID
	if spec.Unit != "" {
		entry.Unit = spec.Unit
	}
	entry.InvoiceNumber = spec.InvoiceNumber
	entry.InvoiceDate = spec.InvoiceDate

	if err := r.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	if spec.SupplierID != nil {
		if err := r.suppliers.AdjustBalance(ctx, *spec.SupplierID, entry.TotalCost); err != nil {
			return nil, err
		}
		if err := r.suppliers.AddProduct(ctx, *spec.SupplierID, productID); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

func sameSupplier(a, b *id.ID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
