package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/catalog"
)

const productTable = "products"

// ProductRepo is the PostgreSQL implementation of catalog.Repository.
// All queries go through the TxManager querier so they join the active
// transaction when one is in context.
type ProductRepo struct {
	txManager  *TxManager
	selectCols []string
	batch      *BatchInserter
}

var _ catalog.Repository = (*ProductRepo)(nil)

func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{
		txManager:  txManager,
		selectCols: ExtractDBColumns[catalog.Product](),
		batch:      NewBatchInserter(txManager),
	}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(productTable)
}

func (r *ProductRepo) Create(ctx context.Context, product *catalog.Product) error {
	q := r.builder().
		Insert(productTable).
		SetMap(StructToMap(product))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", productTable, err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var product catalog.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &product, nil
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Product, error) {
	result := make(map[id.ID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := r.baseSelect().Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*catalog.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("get by ids: %w", err)
	}

	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*catalog.Product, error) {
	q := r.baseSelect().OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*catalog.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *catalog.Product) error {
	data := StructToMap(product)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update(productTable).
		SetMap(data).
		Where(squirrel.Eq{"id": product.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", productTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", product.ID.String())
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder().
		Delete(productTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("product is referenced elsewhere").
				WithDetail("id", productID.String()).
				WithCause(err)
		}
		return fmt.Errorf("execute delete %s: %w", productTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// UpdateStock writes an absolute stock value. Sales snapshot names and
// prices, so nothing else changes here.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, stock int) error {
	q := r.builder().
		Update(productTable).
		Set("stock", stock).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build stock update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// CreateBatch inserts products via the COPY protocol inside one
// transaction.
func (r *ProductRepo) CreateBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		columns := []string{"id", "name", "price", "cost_price", "stock", "description", "created_at", "updated_at"}
		rows := make([][]any, 0, len(products))
		for _, p := range products {
			rows = append(rows, []any{
				p.ID, p.Name, p.Price, p.CostPrice, p.Stock, p.Description, p.CreatedAt, p.UpdatedAt,
			})
		}

		if _, err := r.batch.CopyFromSlice(ctx, productTable, columns, rows); err != nil {
			return fmt.Errorf("copy products: %w", err)
		}
		return nil
	})
}

// UpdateBatch applies one patch to every listed product in a single
// statement. Ids that match no row are silently skipped.
func (r *ProductRepo) UpdateBatch(ctx context.Context, ids []id.ID, patch catalog.Patch) error {
	if len(ids) == 0 || patch.IsEmpty() {
		return nil
	}

	q := r.builder().Update(productTable)
	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.Price != nil {
		q = q.Set("price", *patch.Price)
	}
	if patch.CostPrice != nil {
		q = q.Set("cost_price", *patch.CostPrice)
	}
	if patch.Stock != nil {
		q = q.Set("stock", *patch.Stock)
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
	}
	q = q.Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build batch update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("batch update %s: %w", productTable, err)
	}
	return nil
}

// DeleteBatch removes the listed products. Ids that match no row are
// silently skipped.
func (r *ProductRepo) DeleteBatch(ctx context.Context, ids []id.ID) error {
	if len(ids) == 0 {
		return nil
	}

	q := r.builder().
		Delete(productTable).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build batch delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("batch delete %s: %w", productTable, err)
	}
	return nil
}
