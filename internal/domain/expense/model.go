// Package expense provides the Expense records consumed by reporting.
package expense

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Expense is an independent entity: it never touches the catalog or
// the ledger, only the reporting aggregator reads it.
type Expense struct {
	ID          id.ID       `db:"id" json:"id"`
	Category    string      `db:"category" json:"category"`
	Amount      types.Money `db:"amount" json:"amount"`
	Description string      `db:"description" json:"description,omitempty"`
	Date        time.Time   `db:"date" json:"date"`
	RecordedBy  string      `db:"recorded_by" json:"recordedBy,omitempty"`
}

// NewExpense creates an Expense with a generated id.
func NewExpense(category string, amount types.Money, date time.Time) *Expense {
	return &Expense{
		ID:       id.New(),
		Category: category,
		Amount:   amount,
		Date:     date.UTC(),
	}
}

// Validate implements self-validation.
func (e *Expense) Validate(ctx context.Context) error {
	if e.Category == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}
	if e.Amount.IsNegative() {
		return apperror.NewValidation("amount cannot be negative").
			WithDetail("field", "amount")
	}
	if e.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
