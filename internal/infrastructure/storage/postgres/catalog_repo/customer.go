package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalogs/customer"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var customerColumns = []string{
	"id", "deletion_mark", "version",
	"code", "name",
	"store_id", "phone", "email", "address",
	"current_balance",
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_customers",
			customerColumns,
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// GetByPhone finds a customer by normalized phone within a store.
func (r *CustomerRepo) GetByPhone(ctx context.Context, storeID, phone string) (*customer.Customer, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"phone": phone}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// AdjustBalance applies an atomic additive delta to the customer balance.
func (r *CustomerRepo) AdjustBalance(ctx context.Context, customerID id.ID, delta types.Money) error {
	sql := `
		UPDATE cat_customers SET
			current_balance = current_balance + $2,
			version = version + 1
		WHERE id = $1`

	result, err := r.Querier(ctx).Exec(ctx, sql, customerID, delta)
	if err != nil {
		return fmt.Errorf("adjust customer balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}
