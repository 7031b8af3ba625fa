package catalog

import (
	"context"

	"tokopos/internal/core/id"
)

// Repository defines the interface for Product persistence.
//
// GetByIDs and UpdateStock participate in the ledger engine's optimistic
// transactions: implementations must resolve the active transaction from
// context so that reads register for conflict detection.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetByIDs batch-reads products. Missing ids are simply absent from
	// the result map; callers decide whether that is fatal.
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)

	List(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, productID id.ID) error

	// UpdateStock writes an absolute stock value for one product.
	// Used by the ledger engine inside a transaction, after all reads.
	UpdateStock(ctx context.Context, productID id.ID, stock int) error

	// Batch operations: one batched storage write each, all-or-nothing
	// at the batch-commit granularity, no pre-read and no per-item
	// error detail.
	CreateBatch(ctx context.Context, products []*Product) error
	UpdateBatch(ctx context.Context, ids []id.ID, patch Patch) error
	DeleteBatch(ctx context.Context, ids []id.ID) error
}
