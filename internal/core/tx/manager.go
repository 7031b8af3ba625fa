// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, never on a concrete
// database implementation.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested reuse.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OptimisticManager extends Manager with the optimistic multi-document
// transaction contract the ledger engine requires: the implementation
// detects at commit time whether a document read inside the transaction
// was concurrently modified by another committed transaction, and if so
// aborts with a conflict error (IsConflictAbort reports true).
//
// The caller must structure the closure with a strict read-then-write
// phase ordering: every read issued before the first write.
type OptimisticManager interface {
	Manager

	// RunOptimistic executes fn with conflict detection on all reads.
	// An aborted transaction leaves no partial writes.
	RunOptimistic(ctx context.Context, fn func(ctx context.Context) error) error

	// IsConflictAbort reports whether err is a transient conflict abort
	// that the caller may retry.
	IsConflictAbort(err error) bool
}
