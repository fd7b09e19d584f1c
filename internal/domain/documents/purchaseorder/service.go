package purchaseorder

import (
	"context"

	"tillpoint/internal/core/apperror"
	appctx "tillpoint/internal/core/context"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/domain/stockentry"
	"tillpoint/pkg/logger"
	"tillpoint/pkg/numerator"
)

const entityType = "purchase_order"

// ProductStore is the product behavior purchase orders need.
// Satisfied by product.Repository.
type ProductStore interface {
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)
	AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) error
	SetPrices(ctx context.Context, productID id.ID, buying, selling *types.Money) error
}

// Service applies purchase orders to stock, prices, supplier balances and the
// stock entry log. Purchase orders bypass the sales-lock rule: receiving
// goods moves prices even on sold products.
type Service struct {
	repo      Repository
	products  ProductStore
	entries   *stockentry.Service
	suppliers stockentry.SupplierLedger
	txManager tx.Manager
	numerator *numerator.Service
	audit     domain.Auditor
}

// ServiceConfig wires the purchase order service dependencies.
type ServiceConfig struct {
	Repo      Repository
	Products  ProductStore
	Entries   *stockentry.Service
	Suppliers stockentry.SupplierLedger
	TxManager tx.Manager
	Numerator *numerator.Service
	Audit     domain.Auditor
}

// NewService creates a purchase order service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Audit == nil {
		cfg.Audit = domain.NopAuditor{}
	}
	return &Service{
		repo:      cfg.Repo,
		products:  cfg.Products,
		entries:   cfg.Entries,
		suppliers: cfg.Suppliers,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		audit:     cfg.Audit,
	}
}

// Create records a purchase order and applies it: stock goes up per line,
// buying prices (and positive selling prices, when given) are overwritten,
// the supplier is credited with the order total, and each line leaves a
// purchase_order entry in the stock log.
func (s *Service) Create(ctx context.Context, po *PurchaseOrder) error {
	po.ComputeTotals()
	if err := po.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if po.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PO"), nil, po.Date)
			if err != nil {
				return err
			}
			po.Number = number
		}
		po.CreatedBy = appctx.GetUserID(ctx)

		if err := s.applyLines(ctx, po); err != nil {
			return err
		}

		if err := s.suppliers.AdjustBalance(ctx, po.SupplierID, po.TotalAmount); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, po); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, entityType, po.ID, domain.AuditCreate, map[string]any{
			"number":       po.Number,
			"supplier_id":  po.SupplierID,
			"total_amount": po.TotalAmount,
			"lines":        len(po.Lines),
		})
	})
}

// Update fully retracts the stored order before applying the new lines:
// stock decrements by the old quantities, the supplier balance gives back the
// old total, the old log entries are dropped, then the new lines are applied
// from scratch. No diffing.
func (s *Service) Update(ctx context.Context, po *PurchaseOrder) error {
	po.ComputeTotals()
	if err := po.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetForUpdate(ctx, po.ID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(entityType, po.ID.String())
			}
			return err
		}

		if err := s.revertLines(ctx, old); err != nil {
			return err
		}
		if err := s.suppliers.AdjustBalance(ctx, old.SupplierID, old.TotalAmount.Neg()); err != nil {
			return err
		}
		if err := s.entries.DeleteByReference(ctx, old.ID); err != nil {
			return err
		}
		if old.SupplierID != po.SupplierID {
			for _, line := range old.Lines {
				if err := s.suppliers.RemoveProduct(ctx, old.SupplierID, line.ProductID); err != nil {
					return err
				}
			}
		}

		if err := s.applyLines(ctx, po); err != nil {
			return err
		}
		if err := s.suppliers.AdjustBalance(ctx, po.SupplierID, po.TotalAmount); err != nil {
			return err
		}

		po.Version = old.Version
		if err := s.repo.Update(ctx, po); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, entityType, po.ID, domain.AuditUpdate, map[string]any{
			"number":       po.Number,
			"total_amount": po.TotalAmount,
			"lines":        len(po.Lines),
		})
	})
}

// Delete removes the order record only. Stock and balances stay where the
// order put them; received goods are on the shelf whether or not the paper
// survives.
func (s *Service) Delete(ctx context.Context, poID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		po, err := s.repo.GetForUpdate(ctx, poID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(entityType, poID.String())
			}
			return err
		}

		if err := s.repo.Delete(ctx, poID); err != nil {
			return err
		}

		logger.Info(ctx, "purchase order deleted, applied stock kept",
			"purchase_order_id", poID,
			"number", po.Number,
		)

		return s.audit.LogChange(ctx, entityType, poID, domain.AuditDelete, map[string]any{
			"number":       po.Number,
			"total_amount": po.TotalAmount,
		})
	})
}

// GetByID retrieves a purchase order.
func (s *Service) GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, poID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityType, poID.String())
		}
		return nil, err
	}
	return po, nil
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) applyLines(ctx context.Context, po *PurchaseOrder) error {
	for i := range po.Lines {
		line := &po.Lines[i]

		p, err := s.products.GetForUpdate(ctx, line.ProductID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", line.ProductID.String())
			}
			return err
		}
		line.ProductName = p.Name
		if line.Unit == "" {
			line.Unit = p.BaseUnit
		}

		if err := s.products.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}

		buying := line.UnitCost
		var selling *types.Money
		if line.SellingPrice != nil && line.SellingPrice.IsPositive() {
			selling = line.SellingPrice
		}
		if err := s.products.SetPrices(ctx, line.ProductID, &buying, selling); err != nil {
			return err
		}

		entry := stockentry.NewEntry(line.ProductID, po.StoreID, stockentry.TypePurchaseOrder, line.Quantity, line.UnitCost)
		entry.SupplierID = &po.SupplierID
		if line.Unit != "" {
			entry.Unit = line.Unit
		}
		entry.ReferenceID = &po.ID
		entry.InvoiceNumber = po.InvoiceNumber
		entry.InvoiceDate = po.InvoiceDate
		if err := s.entries.Log(ctx, entry); err != nil {
			return err
		}

		if err := s.suppliers.AddProduct(ctx, po.SupplierID, line.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) revertLines(ctx context.Context, po *PurchaseOrder) error {
	for _, line := range po.Lines {
		if err := s.products.AdjustStock(ctx, line.ProductID, line.Quantity.Neg()); err != nil {
			return err
		}
	}
	return nil
}
