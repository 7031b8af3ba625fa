// Package reconcile provides the cost reconciliation job: a bulk
// rewrite of historical sale costs to match the current catalog.
package reconcile

import (
	"context"
	"fmt"

	"tokopos/internal/core/id"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/ledger"
	"tokopos/pkg/logger"
)

// Result summarizes a reconciliation pass.
type Result struct {
	// Updated counts sales whose costs were rewritten.
	Updated int `json:"updated"`
	// Skipped counts sales already in sync (or with no resolvable
	// products left).
	Skipped int `json:"skipped"`
	// Failed counts sales whose persistence failed; the pass continues
	// past them.
	Failed int `json:"failed"`
}

// Job rewrites items[].costPrice on historical sales to the current
// product cost, recomputing totalCost and profit. It is deliberately
// not transactional: no overarching transaction can span an unbounded
// document set, so the pass is best-effort and tolerates races with
// concurrent sale activity.
type Job struct {
	sales    ledger.Repository
	products catalog.Repository
}

// NewJob creates a reconciliation job.
func NewJob(sales ledger.Repository, products catalog.Repository) *Job {
	return &Job{sales: sales, products: products}
}

// SynchronizeCostPrices runs one pass over every sale. Products no
// longer in the catalog leave their historical costPrice untouched
// (last known value). Running the pass twice with no intervening
// product changes rewrites nothing the second time.
func (j *Job) SynchronizeCostPrices(ctx context.Context) (*Result, error) {
	sales, err := j.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	result := &Result{}
	for _, sale := range sales {
		changed, err := j.reconcileSale(ctx, sale)
		if err != nil {
			logger.Warn(ctx, "cost reconciliation failed for sale",
				"sale_id", sale.ID,
				"error", err,
			)
			result.Failed++
			continue
		}
		if changed {
			result.Updated++
		} else {
			result.Skipped++
		}
	}

	logger.Info(ctx, "cost prices synchronized",
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (j *Job) reconcileSale(ctx context.Context, sale *ledger.Sale) (bool, error) {
	productIDs := make([]id.ID, 0, len(sale.Items))
	for _, item := range sale.Items {
		if !id.IsNil(item.ProductID) {
			productIDs = append(productIDs, item.ProductID)
		}
	}
	products, err := j.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return false, fmt.Errorf("read products: %w", err)
	}

	changed := false
	for i, item := range sale.Items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		if !item.CostPrice.Equal(product.CostPrice) {
			sale.Items[i].CostPrice = product.CostPrice
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	sale.RecomputeTotals()
	if err := j.sales.Update(ctx, sale); err != nil {
		return false, fmt.Errorf("update sale: %w", err)
	}
	return true, nil
}
