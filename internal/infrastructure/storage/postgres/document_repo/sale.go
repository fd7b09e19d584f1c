package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/documents/sale"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var saleColumns = []string{
	"id", "deletion_mark", "version",
	"created_at", "updated_at", "created_by", "updated_by",
	"number", "date", "store_id", "comment",
	"customer_id", "customer_name", "customer_phone",
	"lines",
	"subtotal", "discount_amount", "tax_amount", "total_amount",
	"paid_amount", "profit_amount",
	"payment_method", "payment_status", "payments",
	"refunded_amount", "refunds",
}

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sale.Sale]
}

// NewSaleRepo creates a sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_sales",
			saleColumns,
			func() *sale.Sale { return &sale.Sale{} },
		),
	}
}

// Delete physically removes the sale. Deleted sales must stop counting
// toward product locks and outstanding balances.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	return r.HardDelete(ctx, saleID)
}

// ListOutstandingByCustomer returns the customer's non-PAID sales ordered
// oldest first, locked for update.
func (r *SaleRepo) ListOutstandingByCustomer(ctx context.Context, customerID id.ID) ([]*sale.Sale, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"customer_id": customerID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.NotEq{"payment_status": string(sale.StatusPaid)}).
		OrderBy("date ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []*sale.Sale
	if err := pgxscan.Select(ctx, r.Querier(ctx), &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("list outstanding: %w", err)
	}
	return sales, nil
}

// CountByProduct counts sales with a line referencing the product. Lines are
// stored as JSONB, so containment does the lookup.
func (r *SaleRepo) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	sql := `
		SELECT COUNT(*) FROM doc_sales
		WHERE deletion_mark = false
		  AND lines @> $1::jsonb`

	match := fmt.Sprintf(`[{"productId":%q}]`, productID.String())

	var count int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, match).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales by product: %w", err)
	}
	return count, nil
}

// PendingStats aggregates non-PAID sales for a store.
func (r *SaleRepo) PendingStats(ctx context.Context, storeID string) (sale.PendingStats, error) {
	sql := `
		SELECT COUNT(*), COALESCE(SUM(total_amount - paid_amount), 0)
		FROM doc_sales
		WHERE store_id = $1
		  AND deletion_mark = false
		  AND payment_status != $2`

	var stats sale.PendingStats
	err := r.Querier(ctx).QueryRow(ctx, sql, storeID, string(sale.StatusPaid)).
		Scan(&stats.Count, &stats.TotalOutstanding)
	if err != nil {
		return sale.PendingStats{}, fmt.Errorf("pending stats: %w", err)
	}
	return stats, nil
}
