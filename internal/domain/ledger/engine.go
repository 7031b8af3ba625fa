package ledger

import (
	"context"
	"fmt"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/tx"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalog"
	"tokopos/pkg/logger"
)

// maxConflictRetries bounds the retry loop around optimistic
// transaction aborts before a Conflict error is surfaced.
const maxConflictRetries = 3

// Numberer issues human-facing transaction numbers.
type Numberer interface {
	NextTransactionNumber(ctx context.Context) (string, error)
}

// Invalidator signals downstream catalog and reporting views after a
// ledger mutation.
type Invalidator interface {
	InvalidateCatalog(ctx context.Context) error
	InvalidateReports(ctx context.Context) error
}

// RecordResult is the outcome of a successful RecordSale. DroppedLines
// counts cart lines discarded during validation: a partial-success
// signal, distinct from the hard-fail paths.
type RecordResult struct {
	Sale         *Sale
	DroppedLines int
}

// Engine creates and reverses sales while keeping product stock
// consistent. All numbers are recomputed here from the validated cart
// and authoritative catalog data; client-submitted totals are never
// trusted.
type Engine struct {
	sales    Repository
	products catalog.Repository
	txm      tx.OptimisticManager
	numbers  Numberer
	views    Invalidator
}

// NewEngine creates a ledger engine.
func NewEngine(sales Repository, products catalog.Repository, txm tx.OptimisticManager, numbers Numberer, views Invalidator) *Engine {
	return &Engine{
		sales:    sales,
		products: products,
		txm:      txm,
		numbers:  numbers,
		views:    views,
	}
}

// RecordSale converts a cart into a Sale and decrements stock for every
// referenced product, in one optimistic transaction.
//
// Lines without a resolvable product id are dropped before anything
// else; an empty remainder fails with InvalidCart. The subtotal is
// computed from the validated lines' own prices; the catalog is
// consulted only for existence, cost price, and the stock decrement.
// Stock is not floored: it may go negative.
func (e *Engine) RecordSale(ctx context.Context, lines []CartLine, discountPercent types.Money, date time.Time) (*RecordResult, error) {
	valid := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if id.IsNil(line.ProductID) || line.Quantity < 1 {
			continue
		}
		valid = append(valid, line)
	}
	dropped := len(lines) - len(valid)
	if len(valid) == 0 {
		return nil, apperror.NewInvalidCart("cart has no valid line items")
	}

	if discountPercent.IsNegative() || discountPercent.GreaterThan(types.NewMoneyFromInt(100)) {
		return nil, apperror.NewValidation("discount percentage must be between 0 and 100").
			WithDetail("field", "discountPercentage")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	subtotal := types.Zero()
	for _, line := range valid {
		subtotal = subtotal.Add(line.UnitPrice.Mul(types.NewMoneyFromInt(int64(line.Quantity))))
	}
	discountAmount := types.Percent(subtotal, discountPercent)
	total := subtotal.Sub(discountAmount)

	// The number is allocated outside the optimistic transaction so
	// retries reuse it. A hard abort (for example a missing product)
	// burns the number and leaves a gap in the sequence.
	number, err := e.numbers.NextTransactionNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate transaction number: %w", err)
	}

	productIDs := make([]id.ID, 0, len(valid))
	qtyByProduct := make(map[id.ID]int, len(valid))
	for _, line := range valid {
		if _, seen := qtyByProduct[line.ProductID]; !seen {
			productIDs = append(productIDs, line.ProductID)
		}
		qtyByProduct[line.ProductID] += line.Quantity
	}

	var sale *Sale
	err = e.withConflictRetry(ctx, "record sale", func(ctx context.Context) error {
		// Read phase: every product the transaction touches, before
		// any write. The backend contract forbids interleaving.
		products, err := e.products.GetByIDs(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("read products: %w", err)
		}
		for _, pid := range productIDs {
			if _, ok := products[pid]; !ok {
				return apperror.NewNotFound("product", pid.String())
			}
		}

		items := make([]SaleItem, 0, len(valid))
		totalCost := types.Zero()
		for _, line := range valid {
			product := products[line.ProductID]
			name := line.ProductName
			if name == "" {
				name = product.Name
			}
			items = append(items, SaleItem{
				ProductID:   line.ProductID,
				ProductName: name,
				Quantity:    line.Quantity,
				Price:       line.UnitPrice,
				CostPrice:   product.CostPrice,
			})
			totalCost = totalCost.Add(product.CostPrice.Mul(types.NewMoneyFromInt(int64(line.Quantity))))
		}

		sale = &Sale{
			ID:            id.New(),
			TransactionID: number,
			Items:         items,
			Subtotal:      subtotal,
			Discount:      discountAmount,
			Total:         total,
			TotalCost:     totalCost,
			Profit:        subtotal.Sub(totalCost),
			Date:          date.UTC(),
		}

		// Write phase.
		if err := e.sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		for pid, qty := range qtyByProduct {
			if err := e.products.UpdateStock(ctx, pid, products[pid].Stock-qty); err != nil {
				return fmt.Errorf("decrement stock for %s: %w", pid, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", sale.ID,
		"transaction_id", sale.TransactionID,
		"lines", len(valid),
		"dropped_lines", dropped,
		"total", sale.Total,
	)
	e.invalidate(ctx)

	return &RecordResult{Sale: sale, DroppedLines: dropped}, nil
}

// DeleteSale removes a sale and restocks exactly what it sold, in one
// optimistic transaction: the compensating inverse of RecordSale.
//
// Items whose product has since been deleted are skipped silently (the
// stock increment has no target); the sale itself is always deleted.
func (e *Engine) DeleteSale(ctx context.Context, sale *Sale) error {
	if sale == nil || id.IsNil(sale.ID) {
		return apperror.NewInvalidSale("sale id is required")
	}

	productIDs := make([]id.ID, 0, len(sale.Items))
	qtyByProduct := make(map[id.ID]int, len(sale.Items))
	for _, item := range sale.Items {
		if id.IsNil(item.ProductID) {
			continue
		}
		if _, seen := qtyByProduct[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		qtyByProduct[item.ProductID] += item.Quantity
	}

	err := e.withConflictRetry(ctx, "delete sale", func(ctx context.Context) error {
		products, err := e.products.GetByIDs(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("read products: %w", err)
		}

		for pid, qty := range qtyByProduct {
			product, ok := products[pid]
			if !ok {
				// Product deleted since the sale: documented loss.
				continue
			}
			if err := e.products.UpdateStock(ctx, pid, product.Stock+qty); err != nil {
				return fmt.Errorf("restock %s: %w", pid, err)
			}
		}
		if err := e.sales.Delete(ctx, sale.ID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted",
		"sale_id", sale.ID,
		"transaction_id", sale.TransactionID,
		"restocked_products", len(productIDs),
	)
	e.invalidate(ctx)

	return nil
}

// GetByID retrieves a sale.
func (e *Engine) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return e.sales.GetByID(ctx, saleID)
}

// List retrieves all sales, date descending.
func (e *Engine) List(ctx context.Context) ([]*Sale, error) {
	return e.sales.List(ctx)
}

// withConflictRetry runs fn in an optimistic transaction, restarting on
// transient conflict aborts a bounded number of times. The state
// machine is Reading → Computing → Committing → {Done, Retry, Aborted}:
// each retry restarts from a fresh read snapshot.
func (e *Engine) withConflictRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = e.txm.RunOptimistic(ctx, fn)
		if err == nil {
			return nil
		}
		if !e.txm.IsConflictAbort(err) {
			return err
		}
		logger.Warn(ctx, "optimistic transaction aborted, retrying",
			"op", op,
			"attempt", attempt,
		)
	}
	return apperror.NewConflict(fmt.Sprintf("%s: concurrent modification, retries exhausted", op)).
		WithCause(err)
}

// invalidate is best-effort: stale views never fail the mutation.
func (e *Engine) invalidate(ctx context.Context) {
	if e.views == nil {
		return
	}
	if err := e.views.InvalidateCatalog(ctx); err != nil {
		logger.Warn(ctx, "catalog view invalidation failed", "error", err)
	}
	if err := e.views.InvalidateReports(ctx); err != nil {
		logger.Warn(ctx, "reports view invalidation failed", "error", err)
	}
}
