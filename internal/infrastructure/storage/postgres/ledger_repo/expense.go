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

var expenseColumns = []string{
	"id", "deletion_mark", "version",
	"created_at", "updated_at", "created_by", "updated_by",
	"number", "date", "store_id", "comment",
	"category", "amount", "account_id", "supplier_id", "notes",
}

const expenseTable = "doc_expenses"

// ExpenseRepo implements ledger.ExpenseRepository.
type ExpenseRepo struct {
	txManager *postgres.TxManager
}

// NewExpenseRepo creates an expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{txManager: txManager}
}

func (r *ExpenseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ExpenseRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *ExpenseRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(expenseColumns...).From(expenseTable)
}

// Create inserts an expense.
func (r *ExpenseRepo) Create(ctx context.Context, expense *ledger.Expense) error {
	data := postgres.StructToMap(expense)
	filtered := make(map[string]any, len(expenseColumns))
	for _, col := range expenseColumns {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(expenseTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense.
func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*ledger.Expense, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": expenseID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	expense := &ledger.Expense{}
	if err := pgxscan.Get(ctx, r.querier(ctx), expense, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense", expenseID.String())
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// List returns the expense register page, newest first.
func (r *ExpenseRepo) List(ctx context.Context, listFilter domain.ListFilter) (domain.ListResult[*ledger.Expense], error) {
	result := domain.ListResult[*ledger.Expense]{
		Limit:  listFilter.Limit,
		Offset: listFilter.Offset,
	}

	q := r.baseSelect().Where(squirrel.Eq{"deletion_mark": false})
	if listFilter.StoreID != "" {
		q = q.Where(squirrel.Eq{"store_id": listFilter.StoreID})
	}
	if listFilter.Search != "" {
		pattern := "%" + listFilter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"category": pattern},
		})
	}

	countSQL, countArgs, err := r.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC")
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
		return result, fmt.Errorf("list expenses: %w", err)
	}
	return result, nil
}
