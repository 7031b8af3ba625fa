package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/ledger"
)

const saleTable = "sales"

// SaleRepo is the PostgreSQL implementation of ledger.Repository.
// A sale is one row; its items live in a jsonb column so the document
// is read and written atomically, matching the one-document model the
// engine relies on.
type SaleRepo struct {
	txManager  *TxManager
	selectCols []string
}

var _ ledger.Repository = (*SaleRepo)(nil)

func NewSaleRepo(txManager *TxManager) *SaleRepo {
	return &SaleRepo{
		txManager:  txManager,
		selectCols: ExtractDBColumns[ledger.Sale](),
	}
}

func (r *SaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *SaleRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(saleTable)
}

func (r *SaleRepo) Create(ctx context.Context, sale *ledger.Sale) error {
	q := r.builder().
		Insert(saleTable).
		SetMap(StructToMap(sale))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", saleTable, err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*ledger.Sale, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale ledger.Sale
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &sale, nil
}

func (r *SaleRepo) List(ctx context.Context) ([]*ledger.Sale, error) {
	return r.selectSales(ctx, r.baseSelect().OrderBy("date DESC"))
}

func (r *SaleRepo) ListRange(ctx context.Context, from, to time.Time) ([]*ledger.Sale, error) {
	q := r.baseSelect().
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		OrderBy("date DESC")
	return r.selectSales(ctx, q)
}

func (r *SaleRepo) selectSales(ctx context.Context, q squirrel.SelectBuilder) ([]*ledger.Sale, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []*ledger.Sale
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (r *SaleRepo) Update(ctx context.Context, sale *ledger.Sale) error {
	data := StructToMap(sale)
	delete(data, "id")

	q := r.builder().
		Update(saleTable).
		SetMap(data).
		Where(squirrel.Eq{"id": sale.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", saleTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", sale.ID.String())
	}
	return nil
}

func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	q := r.builder().
		Delete(saleTable).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute delete %s: %w", saleTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return nil
}
