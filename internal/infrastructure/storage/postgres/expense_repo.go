package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/expense"
)

const expenseTable = "expenses"

// ExpenseRepo is the PostgreSQL implementation of expense.Repository.
type ExpenseRepo struct {
	txManager  *TxManager
	selectCols []string
}

var _ expense.Repository = (*ExpenseRepo)(nil)

func NewExpenseRepo(txManager *TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		txManager:  txManager,
		selectCols: ExtractDBColumns[expense.Expense](),
	}
}

func (r *ExpenseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ExpenseRepo) Create(ctx context.Context, exp *expense.Expense) error {
	q := r.builder().
		Insert(expenseTable).
		SetMap(StructToMap(exp))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", expenseTable, err)
	}
	return nil
}

func (r *ExpenseRepo) List(ctx context.Context) ([]*expense.Expense, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(expenseTable).
		OrderBy("date DESC")
	return r.selectExpenses(ctx, q)
}

func (r *ExpenseRepo) ListRange(ctx context.Context, from, to time.Time) ([]*expense.Expense, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(expenseTable).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		OrderBy("date DESC")
	return r.selectExpenses(ctx, q)
}

func (r *ExpenseRepo) selectExpenses(ctx context.Context, q squirrel.SelectBuilder) ([]*expense.Expense, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var expenses []*expense.Expense
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &expenses, sql, args...); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepo) Delete(ctx context.Context, expenseID id.ID) error {
	q := r.builder().
		Delete(expenseTable).
		Where(squirrel.Eq{"id": expenseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute delete %s: %w", expenseTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", expenseID.String())
	}
	return nil
}
