package ledger

import (
	"context"
	"time"

	"tokopos/internal/core/id"
)

// Repository defines the interface for Sale persistence. A sale is one
// document: items travel with it on every read and write.
//
// Create and Delete are invoked inside the engine's optimistic
// transactions and must resolve the active transaction from context.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// List returns sales ordered by date descending.
	List(ctx context.Context) ([]*Sale, error)

	// ListRange returns sales with date in [from, to), date descending.
	ListRange(ctx context.Context, from, to time.Time) ([]*Sale, error)

	// Update persists reconciliation rewrites (items costs and totals).
	Update(ctx context.Context, sale *Sale) error

	Delete(ctx context.Context, saleID id.ID) error
}
