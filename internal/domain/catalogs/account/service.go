package account

import (
	"context"
	"strings"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/pkg/logger"
)

const entityType = "account"

// Service provides account business logic.
type Service struct {
	*domain.CatalogService[*Account]

	repo      Repository
	txManager tx.Manager
}

// NewService creates an account service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Account]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: entityType,
		}),
		repo:      repo,
		txManager: txManager,
	}
}

// EnsureDefaults creates the standard accounts for a store when they are
// missing. Safe to call on every startup.
func (s *Service) EnsureDefaults(ctx context.Context, storeID string) error {
	defaults := []struct {
		code string
		name string
	}{
		{"CASH", DefaultCash},
		{"BANK", DefaultBank},
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, d := range defaults {
			_, err := s.repo.GetByName(ctx, storeID, d.name)
			if err == nil {
				continue
			}
			if !apperror.IsNotFound(err) {
				return err
			}

			acc := New(storeID, d.code, d.name, TypeAsset, types.Zero())
			if err := s.repo.Create(ctx, acc); err != nil {
				return err
			}
			logger.Info(ctx, "created default account",
				"store_id", storeID,
				"name", d.name,
			)
		}
		return nil
	})
}

// GetByName finds an account by display name within a store. Matching is
// case-insensitive on the caller side only for the well-known defaults.
func (s *Service) GetByName(ctx context.Context, storeID, name string) (*Account, error) {
	acc, err := s.repo.GetByName(ctx, storeID, strings.TrimSpace(name))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityType, name)
		}
		return nil, err
	}
	return acc, nil
}

// ResolveForMethod maps a payment method to the default account money for
// that method settles on: bank transfers go to Bank, everything else to Cash
// in Hand.
func (s *Service) ResolveForMethod(ctx context.Context, storeID, method string) (id.ID, error) {
	name := DefaultCash
	if method == "bank_transfer" {
		name = DefaultBank
	}
	acc, err := s.repo.GetByName(ctx, storeID, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return id.Nil(), apperror.NewNotFound(entityType, name)
		}
		return id.Nil(), err
	}
	return acc.ID, nil
}

// AdjustBalance applies an additive delta to the account balance.
func (s *Service) AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error {
	return s.repo.AdjustBalance(ctx, accountID, delta)
}
