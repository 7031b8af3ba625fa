// Package memory provides an in-memory storage backend for development
// mode and tests. It implements the same repository and transaction
// contracts as the postgres package.
package memory

import (
	"context"
	"errors"
	"sync"

	"tokopos/internal/core/id"
	"tokopos/internal/core/tx"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/expense"
	"tokopos/internal/domain/ledger"
)

// ErrConflict marks a transaction abort a caller may retry.
var ErrConflict = errors.New("concurrent modification")

// Store holds all in-memory state behind one mutex. Transactions take
// the lock for their whole span, so they are trivially serializable.
type Store struct {
	mu       sync.Mutex
	products map[id.ID]*catalog.Product
	sales    map[id.ID]*ledger.Sale
	expenses map[id.ID]*expense.Expense
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products: make(map[id.ID]*catalog.Product),
		sales:    make(map[id.ID]*ledger.Sale),
		expenses: make(map[id.ID]*expense.Expense),
	}
}

// txKey marks a context as running inside a transaction, so repository
// methods do not re-acquire the store lock.
type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// lock acquires the store mutex unless the context already holds it
// through an enclosing transaction. Returns an unlock func.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// snapshot copies all maps for rollback. Entities are copied too, so a
// failed transaction cannot leave mutated pointers behind.
func (s *Store) snapshot() (map[id.ID]*catalog.Product, map[id.ID]*ledger.Sale, map[id.ID]*expense.Expense) {
	products := make(map[id.ID]*catalog.Product, len(s.products))
	for k, v := range s.products {
		products[k] = cloneProduct(v)
	}
	sales := make(map[id.ID]*ledger.Sale, len(s.sales))
	for k, v := range s.sales {
		sales[k] = cloneSale(v)
	}
	expenses := make(map[id.ID]*expense.Expense, len(s.expenses))
	for k, v := range s.expenses {
		expenses[k] = cloneExpense(v)
	}
	return products, sales, expenses
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	cp := *p
	return &cp
}

func cloneSale(s *ledger.Sale) *ledger.Sale {
	cp := *s
	cp.Items = append([]ledger.SaleItem(nil), s.Items...)
	return &cp
}

func cloneExpense(e *expense.Expense) *expense.Expense {
	cp := *e
	return &cp
}

// TxManager implements the core transaction contracts over the store.
// Both transaction kinds run under the store mutex with snapshot
// rollback on error.
type TxManager struct {
	store *Store
}

var (
	_ tx.Manager           = (*TxManager)(nil)
	_ tx.OptimisticManager = (*TxManager)(nil)
)

// NewTxManager creates a transaction manager for the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		// Nested: reuse the enclosing transaction.
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	products, sales, expenses := m.store.snapshot()

	txCtx := context.WithValue(ctx, txKey{}, true)
	if err := fn(txCtx); err != nil {
		m.store.products = products
		m.store.sales = sales
		m.store.expenses = expenses
		return err
	}
	return nil
}

// RunInTransaction executes fn atomically.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// RunOptimistic executes fn atomically. The store mutex serializes all
// transactions, so conflict aborts cannot occur here.
func (m *TxManager) RunOptimistic(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// IsConflictAbort reports whether err is a retryable conflict.
func (m *TxManager) IsConflictAbort(err error) bool {
	return errors.Is(err, ErrConflict)
}
