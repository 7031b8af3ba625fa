package expense

import (
	"context"
	"time"

	"tokopos/internal/core/id"
)

// Repository defines the interface for Expense persistence.
type Repository interface {
	Create(ctx context.Context, exp *Expense) error
	List(ctx context.Context) ([]*Expense, error)
	ListRange(ctx context.Context, from, to time.Time) ([]*Expense, error)
	Delete(ctx context.Context, expenseID id.ID) error
}
