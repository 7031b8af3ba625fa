package expense

import (
	"context"
	"fmt"

	"tokopos/internal/core/id"
	"tokopos/internal/core/reqctx"
)

// Service provides expense operations.
type Service struct {
	repo Repository
}

// NewService creates a new expense service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records an expense, stamping the acting user when known.
func (s *Service) Create(ctx context.Context, exp *Expense) error {
	if err := exp.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(exp.ID) {
		exp.ID = id.New()
	}
	if exp.RecordedBy == "" {
		if actor := reqctx.GetActor(ctx); actor != nil {
			exp.RecordedBy = actor.Username
		}
	}
	if err := s.repo.Create(ctx, exp); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// List retrieves all expenses.
func (s *Service) List(ctx context.Context) ([]*Expense, error) {
	return s.repo.List(ctx)
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, expenseID id.ID) error {
	return s.repo.Delete(ctx, expenseID)
}
