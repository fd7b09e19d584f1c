package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalogs/account"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var accountColumns = []string{
	"id", "deletion_mark", "version",
	"code", "name",
	"store_id", "account_type",
	"opening_balance", "current_balance",
}

// AccountRepo implements account.Repository and, through Exists and
// AdjustBalance, the ledger's account store.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

// NewAccountRepo creates an account repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_accounts",
			accountColumns,
			func() *account.Account { return &account.Account{} },
		),
	}
}

// GetByName finds an account by display name within a store.
func (r *AccountRepo) GetByName(ctx context.Context, storeID, name string) (*account.Account, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// AdjustBalance applies an atomic additive delta to the account balance.
func (r *AccountRepo) AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error {
	sql := `
		UPDATE cat_accounts SET
			current_balance = current_balance + $2,
			version = version + 1
		WHERE id = $1`

	result, err := r.Querier(ctx).Exec(ctx, sql, accountID, delta)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("account", accountID.String())
	}
	return nil
}
