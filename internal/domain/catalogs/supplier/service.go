package supplier

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/ledger"
)

const entityType = "supplier"

// Service provides supplier business logic.
type Service struct {
	*domain.CatalogService[*Supplier]

	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
	audit     domain.Auditor
}

// NewService creates a supplier service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txManager tx.Manager, audit domain.Auditor) *Service {
	if audit == nil {
		audit = domain.NopAuditor{}
	}
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: entityType,
		}),
		repo:      repo,
		ledger:    ledgerSvc,
		txManager: txManager,
		audit:     audit,
	}
}

// RecordPayment pays down the supplier balance from an account. It records an
// expense, posts the CREDIT on the paying account and decreases the supplier
// balance, all atomically.
func (s *Service) RecordPayment(ctx context.Context, supplierID id.ID, amount types.Money, accountID id.ID, notes string, date time.Time) (*ledger.Expense, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	var expense *ledger.Expense
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.repo.GetForUpdate(ctx, supplierID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(entityType, supplierID.String())
			}
			return err
		}

		expense = ledger.NewExpense(sup.StoreID, "Supplier Payment", amount, accountID)
		expense.SupplierID = &supplierID
		expense.Notes = notes
		if !date.IsZero() {
			expense.Date = date
		}

		if err := s.ledger.RecordSupplierPayment(ctx, expense); err != nil {
			return err
		}

		if err := s.repo.AdjustBalance(ctx, supplierID, amount.Neg()); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, entityType, supplierID, domain.AuditUpdate, map[string]any{
			"payment":    amount,
			"account_id": accountID,
			"expense_id": expense.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// AdjustBalance applies an additive delta to the supplier balance.
func (s *Service) AdjustBalance(ctx context.Context, supplierID id.ID, delta types.Money) error {
	return s.repo.AdjustBalance(ctx, supplierID, delta)
}

// AddProduct links a product to the supplier (idempotent).
func (s *Service) AddProduct(ctx context.Context, supplierID, productID id.ID) error {
	return s.repo.AddProduct(ctx, supplierID, productID)
}

// RemoveProduct unlinks a product from the supplier.
func (s *Service) RemoveProduct(ctx context.Context, supplierID, productID id.ID) error {
	return s.repo.RemoveProduct(ctx, supplierID, productID)
}

// ProductIDs returns the products supplied by the supplier.
func (s *Service) ProductIDs(ctx context.Context, supplierID id.ID) ([]id.ID, error) {
	return s.repo.ProductIDs(ctx, supplierID)
}

// Payments returns the supplier payment history from the expense register.
func (s *Service) Payments(ctx context.Context, supplierID id.ID) ([]*ledger.Transaction, error) {
	return s.ledger.ListByReference(ctx, ledger.RefSupplierPayment, supplierID)
}
