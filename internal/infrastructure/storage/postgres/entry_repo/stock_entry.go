// Package entry_repo provides the PostgreSQL implementation of the stock
// entry log.
package entry_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/stockentry"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var entryColumns = []string{
	"id", "deletion_mark", "version",
	"product_id", "store_id", "supplier_id",
	"quantity", "unit", "buying_price", "total_cost",
	"entry_type", "is_initial", "reference_id",
	"invoice_number", "invoice_date", "created_at",
}

const tableName = "reg_stock_entries"

// StockEntryRepo implements stockentry.Repository.
type StockEntryRepo struct {
	txManager *postgres.TxManager
}

// NewStockEntryRepo creates a stock entry repository.
func NewStockEntryRepo(txManager *postgres.TxManager) *StockEntryRepo {
	return &StockEntryRepo{txManager: txManager}
}

func (r *StockEntryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StockEntryRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *StockEntryRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(entryColumns...).From(tableName)
}

// Create inserts an entry.
func (r *StockEntryRepo) Create(ctx context.Context, entry *stockentry.Entry) error {
	data := postgres.StructToMap(entry)
	filtered := make(map[string]any, len(entryColumns))
	for _, col := range entryColumns {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(tableName).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock entry: %w", err)
	}
	return nil
}

// Update rewrites an entry in place with optimistic locking.
func (r *StockEntryRepo) Update(ctx context.Context, entry *stockentry.Entry) error {
	data := postgres.StructToMap(entry)
	filtered := make(map[string]any, len(entryColumns))
	for _, col := range entryColumns {
		if col == "id" || col == "version" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Update(tableName).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entry.ID}).
		Where(squirrel.Eq{"version": entry.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(tableName, entry.ID)
	}
	return nil
}

// GetByID retrieves an entry.
func (r *StockEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*stockentry.Entry, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": entryID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entry := &stockentry.Entry{}
	if err := pgxscan.Get(ctx, r.querier(ctx), entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock entry", entryID.String())
		}
		return nil, fmt.Errorf("get stock entry: %w", err)
	}
	return entry, nil
}

// GetInitialByProduct returns the entry that seeded the product's stock.
// Rows flagged is_initial sort first; within those the oldest wins, so
// historical duplicates cannot change the reconciliation baseline.
func (r *StockEntryRepo) GetInitialByProduct(ctx context.Context, productID id.ID) (*stockentry.Entry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"entry_type": string(stockentry.TypeInitialStock)}).
		OrderBy("is_initial DESC", "created_at ASC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entry := &stockentry.Entry{}
	if err := pgxscan.Get(ctx, r.querier(ctx), entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("initial stock entry", productID.String())
		}
		return nil, fmt.Errorf("get initial entry: %w", err)
	}
	return entry, nil
}

// ListByProduct returns the product's receipt history, newest first.
func (r *StockEntryRepo) ListByProduct(ctx context.Context, productID id.ID, listFilter domain.ListFilter) (domain.ListResult[*stockentry.Entry], error) {
	result := domain.ListResult[*stockentry.Entry]{
		Limit:  listFilter.Limit,
		Offset: listFilter.Offset,
	}

	q := r.baseSelect().Where(squirrel.Eq{"product_id": productID})

	countSQL, countArgs, err := r.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if listFilter.Limit > 0 {
		q = q.Limit(uint64(listFilter.Limit))
	}
	if listFilter.Offset > 0 {
		q = q.Offset(uint64(listFilter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list entries: %w", err)
	}
	return result, nil
}

// DeleteByProduct removes all entries for a product.
func (r *StockEntryRepo) DeleteByProduct(ctx context.Context, productID id.ID) error {
	sql, args, err := r.builder().Delete(tableName).Where(squirrel.Eq{"product_id": productID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete entries by product: %w", err)
	}
	return nil
}

// DeleteByReference removes entries created by a document.
func (r *StockEntryRepo) DeleteByReference(ctx context.Context, referenceID id.ID) error {
	sql, args, err := r.builder().Delete(tableName).Where(squirrel.Eq{"reference_id": referenceID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete entries by reference: %w", err)
	}
	return nil
}
