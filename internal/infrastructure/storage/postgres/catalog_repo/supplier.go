package catalog_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalogs/supplier"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var supplierColumns = []string{
	"id", "deletion_mark", "version",
	"code", "name",
	"store_id", "contact_person", "phone", "email", "address",
	"current_balance",
}

// SupplierRepo implements supplier.Repository. The supplier-product links
// live in cat_supplier_products.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_suppliers",
			supplierColumns,
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// AdjustBalance applies an atomic additive delta to the supplier balance.
func (r *SupplierRepo) AdjustBalance(ctx context.Context, supplierID id.ID, delta types.Money) error {
	sql := `
		UPDATE cat_suppliers SET
			current_balance = current_balance + $2,
			version = version + 1
		WHERE id = $1`

	result, err := r.Querier(ctx).Exec(ctx, sql, supplierID, delta)
	if err != nil {
		return fmt.Errorf("adjust supplier balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID.String())
	}
	return nil
}

// AddProduct links a product to the supplier. Idempotent.
func (r *SupplierRepo) AddProduct(ctx context.Context, supplierID, productID id.ID) error {
	sql := `
		INSERT INTO cat_supplier_products (supplier_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (supplier_id, product_id) DO NOTHING`

	if _, err := r.Querier(ctx).Exec(ctx, sql, supplierID, productID); err != nil {
		return fmt.Errorf("add supplier product: %w", err)
	}
	return nil
}

// RemoveProduct unlinks a product from the supplier.
func (r *SupplierRepo) RemoveProduct(ctx context.Context, supplierID, productID id.ID) error {
	sql := `DELETE FROM cat_supplier_products WHERE supplier_id = $1 AND product_id = $2`

	if _, err := r.Querier(ctx).Exec(ctx, sql, supplierID, productID); err != nil {
		return fmt.Errorf("remove supplier product: %w", err)
	}
	return nil
}

// ProductIDs returns products supplied by the supplier.
func (r *SupplierRepo) ProductIDs(ctx context.Context, supplierID id.ID) ([]id.ID, error) {
	sql := `SELECT product_id FROM cat_supplier_products WHERE supplier_id = $1`

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.Querier(ctx), &ids, sql, supplierID); err != nil {
		return nil, fmt.Errorf("supplier product ids: %w", err)
	}
	return ids, nil
}
