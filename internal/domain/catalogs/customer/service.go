package customer

import (
	"context"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

const entityType = "customer"

// Service provides customer business logic.
type Service struct {
	*domain.CatalogService[*Customer]

	repo      Repository
	txManager tx.Manager
}

// NewService creates a customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: entityType,
		}),
		repo:      repo,
		txManager: txManager,
	}
}

// GetByPhone finds a customer by phone within a store.
func (s *Service) GetByPhone(ctx context.Context, storeID, phone string) (*Customer, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, apperror.NewValidation("phone is required").WithDetail("field", "phone")
	}
	return s.repo.GetByPhone(ctx, storeID, normalized)
}

// UpsertByPhone returns the customer with the given phone, creating one when
// no match exists. Credit sales use this so a walk-in buyer becomes a tracked
// debtor without a separate registration step.
func (s *Service) UpsertByPhone(ctx context.Context, storeID, phone, name string) (*Customer, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, apperror.NewValidation("phone is required for credit sales").
			WithDetail("field", "phone")
	}

	var result *Customer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByPhone(ctx, storeID, normalized)
		if err == nil {
			// Refresh the name when the till operator typed a fuller one.
			if name != "" && existing.Name != name {
				existing.Name = name
				if err := s.repo.Update(ctx, existing); err != nil {
					return err
				}
			}
			result = existing
			return nil
		}
		if !apperror.IsNotFound(err) {
			return err
		}

		if name == "" {
			name = normalized
		}
		created := New(storeID, normalized, name)
		created.Phone = normalized
		if err := created.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, created); err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustBalance applies an additive delta to the customer balance.
func (s *Service) AdjustBalance(ctx context.Context, customerID id.ID, delta types.Money) error {
	return s.repo.AdjustBalance(ctx, customerID, delta)
}

// GetForUpdate loads the customer with a row lock inside a transaction.
func (s *Service) GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetForUpdate(ctx, customerID)
}
