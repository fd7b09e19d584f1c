package product

import (
	"context"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/stockentry"
	"tillpoint/pkg/logger"
)

// entityType is the audit log discriminator for products.
const entityType = "product"

// Service implements product lifecycle business logic. Every mutation runs in
// a single transaction so the product row, stock entry log, and supplier
// balances stay consistent.
type Service struct {
	repo       Repository
	entries    *stockentry.Service
	reconciler *stockentry.Reconciler
	sales      SalesCounter
	txManager  tx.Manager
	audit      domain.Auditor
}

// NewService creates a product service.
func NewService(
	repo Repository,
	entries *stockentry.Service,
	reconciler *stockentry.Reconciler,
	sales SalesCounter,
	txManager tx.Manager,
	audit domain.Auditor,
) *Service {
	return &Service{
		repo:       repo,
		entries:    entries,
		reconciler: reconciler,
		sales:      sales,
		txManager:  txManager,
		audit:      audit,
	}
}

// Create persists a new product together with its initial stock entry and
// supplier credit. A product created with zero stock gets no entry.
func (s *Service) Create(ctx context.Context, p *Product) error {
	p.Code = NormalizeSKU(p.Code)
	p.SyncRawMaterialStock()

	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if exists, err := s.repo.ExistsByCode(ctx, p.Code); err != nil {
			return err
		} else if exists {
			return apperror.NewDuplicate(entityType, "sku", p.Code)
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		_, err := s.reconciler.EnsureInitial(ctx, p.ID, p.StoreID, stockentry.InitialSpec{
			Quantity:    p.Available(),
			BuyingPrice: p.BuyingPrice,
			SupplierID:  p.SupplierID,
			Unit:        p.SellByUnit,
		})
		if err != nil {
			return err
		}

		return s.audit.LogChange(ctx, entityType, p.ID, domain.AuditCreate, map[string]any{
			"sku":   p.Code,
			"name":  p.Name,
			"kind":  string(p.Kind),
			"stock": p.Available().String(),
		})
	})
}

// Update applies a product edit.
//
// Products referenced by at least one sale are locked: their price, stock,
// and supplier fields are silently preserved from the current row and the
// preserved field names are recorded in the audit log. The rest of the edit
// goes through. Unlocked products get the full edit, and the initial stock
// entry plus supplier balances are reconciled against the new values.
func (s *Service) Update(ctx context.Context, incoming *Product) (*Product, error) {
	incoming.Code = NormalizeSKU(incoming.Code)

	var updated *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, incoming.ID)
		if err != nil {
			return err
		}

		count, err := s.sales.CountByProduct(ctx, incoming.ID)
		if err != nil {
			return err
		}
		locked := count > 0

		var preserved []string
		if locked {
			preserved = preserveLockedFields(current, incoming)
		}

		incoming.SyncRawMaterialStock()
		if err := incoming.Validate(ctx); err != nil {
			return err
		}

		if !locked {
			initial, err := s.entries.GetInitialEntry(ctx, incoming.ID)
			if err != nil {
				return err
			}

			spec := stockentry.InitialSpec{
				Quantity:    incoming.Available(),
				BuyingPrice: incoming.BuyingPrice,
				SupplierID:  incoming.SupplierID,
				Unit:        incoming.SellByUnit,
			}

			if initial == nil {
				if _, err := s.reconciler.EnsureInitial(ctx, incoming.ID, incoming.StoreID, spec); err != nil {
					return err
				}
			} else if err := s.reconciler.ReconcileInitial(ctx, initial, spec); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, incoming); err != nil {
			return err
		}

		changes := map[string]any{
			"diff": diffProducts(current, incoming),
		}
		if len(preserved) > 0 {
			changes["preserved_fields"] = preserved
			logger.Info(ctx, "locked product edit: fields preserved",
				"product_id", incoming.ID,
				"sales_count", count,
				"preserved", preserved,
			)
		}

		if err := s.audit.LogChange(ctx, entityType, incoming.ID, domain.AuditUpdate, changes); err != nil {
			return err
		}

		updated = incoming
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// preserveLockedFields copies the immutable fields of a locked product from
// the current row into the incoming edit and reports which ones differed.
func preserveLockedFields(current, incoming *Product) []string {
	var preserved []string

	if !incoming.BuyingPrice.Equal(current.BuyingPrice) {
		preserved = append(preserved, "buyingPrice")
	}
	incoming.BuyingPrice = current.BuyingPrice

	if !incoming.SellingPrice.Equal(current.SellingPrice) {
		preserved = append(preserved, "sellingPrice")
	}
	incoming.SellingPrice = current.SellingPrice

	if incoming.StockLevel != current.StockLevel {
		preserved = append(preserved, "stockLevel")
	}
	incoming.StockLevel = current.StockLevel

	if incoming.TotalMeters != current.TotalMeters {
		preserved = append(preserved, "totalMeters")
	}
	incoming.TotalMeters = current.TotalMeters

	if !sameID(incoming.SupplierID, current.SupplierID) {
		preserved = append(preserved, "supplierId")
	}
	incoming.SupplierID = current.SupplierID

	return preserved
}

func sameID(a, b *id.ID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func diffProducts(old, new *Product) map[string]any {
	diff := make(map[string]any)
	if old.Name != new.Name {
		diff["name"] = map[string]any{"old": old.Name, "new": new.Name}
	}
	if old.Code != new.Code {
		diff["sku"] = map[string]any{"old": old.Code, "new": new.Code}
	}
	if !old.SellingPrice.Equal(new.SellingPrice) {
		diff["sellingPrice"] = map[string]any{"old": old.SellingPrice, "new": new.SellingPrice}
	}
	if !old.BuyingPrice.Equal(new.BuyingPrice) {
		diff["buyingPrice"] = map[string]any{"old": old.BuyingPrice, "new": new.BuyingPrice}
	}
	if old.Available() != new.Available() {
		diff["stock"] = map[string]any{"old": old.Available().String(), "new": new.Available().String()}
	}
	return diff
}

// Restock records an additional receipt: a restock entry is logged, stock is
// incremented, the supplier is credited, and prices are optionally updated.
func (s *Service) Restock(ctx context.Context, productID id.ID, spec stockentry.InitialSpec) (*stockentry.Entry, error) {
	var entry *stockentry.Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if spec.Unit == "" {
			spec.Unit = p.SellByUnit
		}
		if spec.SupplierID == nil {
			spec.SupplierID = p.SupplierID
		}

		entry, err = s.reconciler.Restock(ctx, productID, p.StoreID, spec)
		if err != nil {
			return err
		}

		if err := s.repo.AdjustStock(ctx, productID, spec.Quantity); err != nil {
			return err
		}

		if spec.BuyingPrice.IsPositive() && !spec.BuyingPrice.Equal(p.BuyingPrice) {
			if err := s.repo.SetPrices(ctx, productID, &spec.BuyingPrice, nil); err != nil {
				return err
			}
		}

		return s.audit.LogChange(ctx, entityType, productID, domain.AuditUpdate, map[string]any{
			"restock": map[string]any{
				"quantity":   spec.Quantity.String(),
				"totalCost":  entry.TotalCost,
				"supplierId": spec.SupplierID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes a product. Products with sales history are archived
// (soft-deleted) so past sales keep resolving; never-sold products are
// physically removed and their initial supplier credit reversed.
func (s *Service) Delete(ctx context.Context, productID id.ID) (archived bool, err error) {
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		count, err := s.sales.CountByProduct(ctx, productID)
		if err != nil {
			return err
		}

		if count > 0 {
			archived = true
			if err := s.repo.SetDeletionMark(ctx, productID, true); err != nil {
				return err
			}
			return s.audit.LogChange(ctx, entityType, productID, domain.AuditDelete, map[string]any{
				"archived":    true,
				"sales_count": count,
			})
		}

		if err := s.reconciler.ReverseInitial(ctx, productID); err != nil {
			return err
		}
		if err := s.repo.HardDelete(ctx, productID); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, entityType, productID, domain.AuditDelete, map[string]any{
			"archived": false,
			"sku":      p.Code,
		})
	})
	return archived, err
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// CheckSales reports the number of sales referencing a product and whether
// that locks it.
func (s *Service) CheckSales(ctx context.Context, productID id.ID) (count int64, locked bool, err error) {
	count, err = s.sales.CountByProduct(ctx, productID)
	if err != nil {
		return 0, false, err
	}
	return count, count > 0, nil
}

// GetInitialStockEntry returns the entry that seeded the product's stock, or
// nil for products created without stock.
func (s *Service) GetInitialStockEntry(ctx context.Context, productID id.ID) (*stockentry.Entry, error) {
	return s.entries.GetInitialEntry(ctx, productID)
}

// StockHistory returns the product's receipt history.
func (s *Service) StockHistory(ctx context.Context, productID id.ID, filter domain.ListFilter) (domain.ListResult[*stockentry.Entry], error) {
	return s.entries.ListByProduct(ctx, productID, filter)
}
