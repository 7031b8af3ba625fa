package memory

import (
	"context"
	"sort"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/expense"
)

// ExpenseRepo is the in-memory implementation of expense.Repository.
type ExpenseRepo struct {
	store *Store
}

var _ expense.Repository = (*ExpenseRepo)(nil)

func NewExpenseRepo(store *Store) *ExpenseRepo {
	return &ExpenseRepo{store: store}
}

func (r *ExpenseRepo) Create(ctx context.Context, exp *expense.Expense) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	r.store.expenses[exp.ID] = cloneExpense(exp)
	return nil
}

func (r *ExpenseRepo) List(ctx context.Context) ([]*expense.Expense, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.collect(func(*expense.Expense) bool { return true }), nil
}

func (r *ExpenseRepo) ListRange(ctx context.Context, from, to time.Time) ([]*expense.Expense, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.collect(func(e *expense.Expense) bool {
		return !e.Date.Before(from) && e.Date.Before(to)
	}), nil
}

func (r *ExpenseRepo) collect(keep func(*expense.Expense) bool) []*expense.Expense {
	expenses := make([]*expense.Expense, 0, len(r.store.expenses))
	for _, e := range r.store.expenses {
		if keep(e) {
			expenses = append(expenses, cloneExpense(e))
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
	return expenses
}

func (r *ExpenseRepo) Delete(ctx context.Context, expenseID id.ID) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.expenses[expenseID]; !ok {
		return apperror.NewNotFound("expense", expenseID.String())
	}
	delete(r.store.expenses, expenseID)
	return nil
}
