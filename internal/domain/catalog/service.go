package catalog

import (
	"context"
	"fmt"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/pkg/logger"
)

// Invalidator signals downstream catalog views that cached data is stale.
type Invalidator interface {
	InvalidateCatalog(ctx context.Context) error
}

// Service provides business logic for the Product catalog, including
// the bulk mutator used by imports and mass price edits.
type Service struct {
	repo  Repository
	views Invalidator
}

// NewService creates a new catalog service.
func NewService(repo Repository, views Invalidator) *Service {
	return &Service{repo: repo, views: views}
}

// Create inserts a single validated product.
func (s *Service) Create(ctx context.Context, product *Product) error {
	if err := product.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(product.ID) {
		product.ID = id.New()
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves all products.
func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

// Update modifies a single validated product.
func (s *Service) Update(ctx context.Context, product *Product) error {
	if err := product.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a single product. Historical sales referencing it stay
// valid: the reference is weak, there is no cascade.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// --- Bulk mutator ---
//
// Each operation is one batched write: all-or-nothing at the storage
// layer's batch-commit granularity, not a transaction (no pre-read, no
// cross-document consistency check). Business rules are not re-checked
// here; callers pre-filter empty or invalid rows.

// CreateMany bulk-creates products. Returns the number written.
func (s *Service) CreateMany(ctx context.Context, products []*Product) (int, error) {
	if len(products) == 0 {
		return 0, apperror.NewValidation("no products to create")
	}
	for _, p := range products {
		if id.IsNil(p.ID) {
			p.ID = id.New()
		}
	}
	if err := s.repo.CreateBatch(ctx, products); err != nil {
		return 0, fmt.Errorf("create batch: %w", err)
	}
	logger.Info(ctx, "products created in bulk", "count", len(products))
	s.invalidate(ctx)
	return len(products), nil
}

// UpdateMany applies the same partial field set to every id in the list.
// Fields omitted from the patch are left untouched on every target.
func (s *Service) UpdateMany(ctx context.Context, ids []id.ID, patch Patch) (int, error) {
	if len(ids) == 0 {
		return 0, apperror.NewValidation("no products selected")
	}
	if patch.IsEmpty() {
		return 0, apperror.NewValidation("no fields to update")
	}
	if err := s.repo.UpdateBatch(ctx, ids, patch); err != nil {
		return 0, fmt.Errorf("update batch: %w", err)
	}
	logger.Info(ctx, "products updated in bulk", "count", len(ids))
	s.invalidate(ctx)
	return len(ids), nil
}

// DeleteMany bulk-deletes products by id.
func (s *Service) DeleteMany(ctx context.Context, ids []id.ID) (int, error) {
	if len(ids) == 0 {
		return 0, apperror.NewValidation("no products selected")
	}
	if err := s.repo.DeleteBatch(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete batch: %w", err)
	}
	logger.Info(ctx, "products deleted in bulk", "count", len(ids))
	s.invalidate(ctx)
	return len(ids), nil
}

// invalidate is best-effort: a stale view never fails the mutation.
func (s *Service) invalidate(ctx context.Context) {
	if s.views == nil {
		return
	}
	if err := s.views.InvalidateCatalog(ctx); err != nil {
		logger.Warn(ctx, "catalog view invalidation failed", "error", err)
	}
}
