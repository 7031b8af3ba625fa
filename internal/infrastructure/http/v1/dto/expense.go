package dto

import (
	"time"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/expense"
)

// CreateExpenseRequest is the body for recording an expense.
type CreateExpenseRequest struct {
	Category    string      `json:"category" binding:"required"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description"`
	Date        *time.Time  `json:"date"`
}

// ToEntity converts the request to a domain expense. A missing date
// defaults to now.
func (r CreateExpenseRequest) ToEntity() *expense.Expense {
	date := time.Now().UTC()
	if r.Date != nil {
		date = *r.Date
	}
	exp := expense.NewExpense(r.Category, r.Amount, date)
	exp.Description = r.Description
	return exp
}
