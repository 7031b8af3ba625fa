package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalog"
)

func TestTxManager_RollbackRestoresState(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	txm := NewTxManager(store)
	ctx := context.Background()

	p := catalog.NewProduct("Kopi Susu", types.MustMoney("10000"), types.MustMoney("7000"), 10)
	require.NoError(t, products.Create(ctx, p))

	boom := errors.New("boom")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := products.UpdateStock(ctx, p.ID, 0); err != nil {
			return err
		}
		extra := catalog.NewProduct("Es Teh", types.MustMoney("5000"), types.MustMoney("3000"), 5)
		if err := products.Create(ctx, extra); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Both writes are rolled back.
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	all, err := products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTxManager_CommitKeepsWrites(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	txm := NewTxManager(store)
	ctx := context.Background()

	err := txm.RunOptimistic(ctx, func(ctx context.Context) error {
		return products.Create(ctx, catalog.NewProduct("Kopi Susu", types.MustMoney("10000"), types.MustMoney("7000"), 10))
	})
	require.NoError(t, err)

	all, err := products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTxManager_NestedReusesTransaction(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	txm := NewTxManager(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := products.Create(ctx, catalog.NewProduct("A", types.MustMoney("1"), types.MustMoney("1"), 1)); err != nil {
			return err
		}
		// The nested transaction joins the outer one; its writes roll
		// back with the enclosing failure.
		return txm.RunOptimistic(ctx, func(ctx context.Context) error {
			if err := products.Create(ctx, catalog.NewProduct("B", types.MustMoney("2"), types.MustMoney("2"), 2)); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	all, err := products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTxManager_IsConflictAbort(t *testing.T) {
	txm := NewTxManager(NewStore())

	assert.True(t, txm.IsConflictAbort(ErrConflict))
	assert.True(t, txm.IsConflictAbort(errors.Join(errors.New("wrapped"), ErrConflict)))
	assert.False(t, txm.IsConflictAbort(errors.New("other")))
	assert.False(t, txm.IsConflictAbort(nil))
}

func TestRepos_ReturnClones(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	ctx := context.Background()

	p := catalog.NewProduct("Kopi Susu", types.MustMoney("10000"), types.MustMoney("7000"), 10)
	require.NoError(t, products.Create(ctx, p))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Stock = -999

	again, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, again.Stock)
}
