// Package ledger_repo provides PostgreSQL implementations of the account
// transaction log and the expense register.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/ledger"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var transactionColumns = []string{
	"id", "deletion_mark", "version",
	"store_id", "entries", "total_amount",
	"reference_type", "reference_id", "notes",
	"created_by", "transaction_date", "created_at",
}

const transactionTable = "reg_transactions"

// TransactionRepo implements ledger.TransactionRepository. The table is
// append-only: no update or delete methods exist.
type TransactionRepo struct {
	txManager *postgres.TxManager
}

// NewTransactionRepo creates a transaction repository.
func NewTransactionRepo(txManager *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{txManager: txManager}
}

func (r *TransactionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *TransactionRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *TransactionRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(transactionColumns...).From(transactionTable)
}

// Create appends a transaction.
func (r *TransactionRepo) Create(ctx context.Context, txn *ledger.Transaction) error {
	data := postgres.StructToMap(txn)
	filtered := make(map[string]any, len(transactionColumns))
	for _, col := range transactionColumns {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(transactionTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction.
func (r *TransactionRepo) GetByID(ctx context.Context, txnID id.ID) (*ledger.Transaction, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": txnID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	txn := &ledger.Transaction{}
	if err := pgxscan.Get(ctx, r.querier(ctx), txn, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", txnID.String())
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return txn, nil
}

// List returns the transaction log page, newest first.
func (r *TransactionRepo) List(ctx context.Context, listFilter domain.ListFilter) (domain.ListResult[*ledger.Transaction], error) {
	result := domain.ListResult[*ledger.Transaction]{
		Limit:  listFilter.Limit,
		Offset: listFilter.Offset,
	}

	q := r.baseSelect()
	if listFilter.StoreID != "" {
		q = q.Where(squirrel.Eq{"store_id": listFilter.StoreID})
	}

	countSQL, countArgs, err := r.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("transaction_date DESC", "created_at DESC")
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
		return result, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// ListByReference returns transactions recorded for a business event.
func (r *TransactionRepo) ListByReference(ctx context.Context, refType ledger.ReferenceType, refID id.ID) ([]*ledger.Transaction, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"reference_type": string(refType)}).
		Where(squirrel.Eq{"reference_id": refID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txns []*ledger.Transaction
	if err := pgxscan.Select(ctx, r.querier(ctx), &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("list by reference: %w", err)
	}
	return txns, nil
}
