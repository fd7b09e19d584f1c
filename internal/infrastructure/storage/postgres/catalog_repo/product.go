package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var productColumns = []string{
	"id", "deletion_mark", "version",
	"code", "name",
	"store_id", "barcode", "kind",
	"base_unit", "sell_by_unit",
	"stock_level", "total_meters", "meters_per_unit",
	"combo_components", "can_sell_separate", "can_sell_partial_set",
	"buying_price", "selling_price",
	"supplier_id", "category", "image_url", "is_active",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_products",
			productColumns,
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetBySKU retrieves a product by normalized SKU within a store.
func (r *ProductRepo) GetBySKU(ctx context.Context, storeID, sku string) (*product.Product, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"code": product.NormalizeSKU(sku)}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// AdjustStock applies an additive stock delta. Raw materials move TotalMeters
// and mirror it into StockLevel in the same statement, so the two fields can
// never drift apart.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) error {
	sql := `
		UPDATE cat_products SET
			total_meters = CASE WHEN kind = 'raw_material' THEN total_meters + $2 ELSE total_meters END,
			stock_level  = CASE WHEN kind = 'raw_material' THEN total_meters + $2 ELSE stock_level + $2 END,
			version = version + 1
		WHERE id = $1`

	result, err := r.Querier(ctx).Exec(ctx, sql, productID, delta.Int64Scaled())
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// SetPrices overwrites buying/selling price. Nil leaves a price unchanged.
func (r *ProductRepo) SetPrices(ctx context.Context, productID id.ID, buying, selling *types.Money) error {
	if buying == nil && selling == nil {
		return nil
	}

	q := r.Builder().
		Update(r.TableName()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})
	if buying != nil {
		q = q.Set("buying_price", *buying)
	}
	if selling != nil {
		q = q.Set("selling_price", *selling)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set prices: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set prices: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}
