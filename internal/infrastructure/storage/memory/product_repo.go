package memory

import (
	"context"
	"sort"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/catalog"
)

// ProductRepo is the in-memory implementation of catalog.Repository.
type ProductRepo struct {
	store *Store
}

var _ catalog.Repository = (*ProductRepo)(nil)

func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) Create(ctx context.Context, product *catalog.Product) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	r.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	p, ok := r.store.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return cloneProduct(p), nil
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Product, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	result := make(map[id.ID]*catalog.Product, len(ids))
	for _, pid := range ids {
		if p, ok := r.store.products[pid]; ok {
			result[pid] = cloneProduct(p)
		}
	}
	return result, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*catalog.Product, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	products := make([]*catalog.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, cloneProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *catalog.Product) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.products[product.ID]; !ok {
		return apperror.NewNotFound("product", product.ID.String())
	}
	r.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.products[productID]; !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	delete(r.store.products, productID)
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, stock int) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	p, ok := r.store.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ProductRepo) CreateBatch(ctx context.Context, products []*catalog.Product) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, p := range products {
		r.store.products[p.ID] = cloneProduct(p)
	}
	return nil
}

func (r *ProductRepo) UpdateBatch(ctx context.Context, ids []id.ID, patch catalog.Patch) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, pid := range ids {
		p, ok := r.store.products[pid]
		if !ok {
			continue
		}
		patch.ApplyTo(p)
	}
	return nil
}

func (r *ProductRepo) DeleteBatch(ctx context.Context, ids []id.ID) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, pid := range ids {
		delete(r.store.products, pid)
	}
	return nil
}
