package memory

import (
	"context"
	"sort"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/ledger"
)

// SaleRepo is the in-memory implementation of ledger.Repository.
type SaleRepo struct {
	store *Store
}

var _ ledger.Repository = (*SaleRepo)(nil)

func NewSaleRepo(store *Store) *SaleRepo {
	return &SaleRepo{store: store}
}

func (r *SaleRepo) Create(ctx context.Context, sale *ledger.Sale) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	r.store.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*ledger.Sale, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	s, ok := r.store.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return cloneSale(s), nil
}

func (r *SaleRepo) List(ctx context.Context) ([]*ledger.Sale, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.collect(func(*ledger.Sale) bool { return true }), nil
}

func (r *SaleRepo) ListRange(ctx context.Context, from, to time.Time) ([]*ledger.Sale, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.collect(func(s *ledger.Sale) bool {
		return !s.Date.Before(from) && s.Date.Before(to)
	}), nil
}

// collect filters and orders sales date descending. Caller holds the
// lock.
func (r *SaleRepo) collect(keep func(*ledger.Sale) bool) []*ledger.Sale {
	sales := make([]*ledger.Sale, 0, len(r.store.sales))
	for _, s := range r.store.sales {
		if keep(s) {
			sales = append(sales, cloneSale(s))
		}
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Date.After(sales[j].Date) })
	return sales
}

func (r *SaleRepo) Update(ctx context.Context, sale *ledger.Sale) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.sales[sale.ID]; !ok {
		return apperror.NewNotFound("sale", sale.ID.String())
	}
	r.store.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.sales[saleID]; !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	delete(r.store.sales, saleID)
	return nil
}
