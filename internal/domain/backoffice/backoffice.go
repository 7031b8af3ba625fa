// Package backoffice is the operation boundary of the back office. It
// wraps the domain services and converts their errors into flat
// success/message results so callers never branch on error types.
package backoffice

import (
	"context"
	"fmt"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reconcile"
	"tokopos/pkg/logger"
)

// AuditRecorder records who did what. Recording is best-effort: a
// failed audit write never fails the operation it describes.
type AuditRecorder interface {
	RecordOperation(ctx context.Context, entityType string, entityID id.ID, action string, details map[string]any) error
}

// OpResult is the flat outcome of a back-office operation.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Succeeded reports the flat outcome, also through embedding.
func (r OpResult) Succeeded() bool { return r.Success }

// SaleResult carries the recorded sale alongside the flat outcome.
type SaleResult struct {
	OpResult
	Sale *ledger.Sale `json:"sale,omitempty"`
}

// ReconcileResult carries the reconciliation counters.
type ReconcileResult struct {
	OpResult
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Facade exposes the back-office operations.
type Facade struct {
	engine    *ledger.Engine
	products  *catalog.Service
	reconcile *reconcile.Job
	audit     AuditRecorder
}

func New(engine *ledger.Engine, products *catalog.Service, job *reconcile.Job, audit AuditRecorder) *Facade {
	return &Facade{engine: engine, products: products, reconcile: job, audit: audit}
}

// RecordSale posts a cart. Lines referencing unknown products are
// dropped before posting; a cart with no valid lines fails.
func (f *Facade) RecordSale(ctx context.Context, lines []ledger.CartLine, discountPercent types.Money, date time.Time) SaleResult {
	res, err := f.engine.RecordSale(ctx, lines, discountPercent, date)
	if err != nil {
		return SaleResult{OpResult: failure(ctx, "record sale", err)}
	}

	msg := "transaction recorded"
	if res.DroppedLines > 0 {
		msg = fmt.Sprintf("transaction recorded, %d unknown item(s) skipped", res.DroppedLines)
	}
	f.recordAudit(ctx, "sale", res.Sale.ID, "create", map[string]any{
		"transaction_id": res.Sale.TransactionID,
		"total":          res.Sale.Total,
		"dropped_lines":  res.DroppedLines,
	})
	return SaleResult{
		OpResult: OpResult{Success: true, Message: msg, Count: len(res.Sale.Items)},
		Sale:     res.Sale,
	}
}

// DeleteSale removes a sale and restores stock for products that
// still exist.
func (f *Facade) DeleteSale(ctx context.Context, saleID id.ID) OpResult {
	if id.IsNil(saleID) {
		return OpResult{Success: false, Message: "sale id is required"}
	}
	sale, err := f.engine.GetByID(ctx, saleID)
	if err != nil {
		return failure(ctx, "delete sale", err)
	}
	if err := f.engine.DeleteSale(ctx, sale); err != nil {
		return failure(ctx, "delete sale", err)
	}
	f.recordAudit(ctx, "sale", saleID, "delete", nil)
	return OpResult{Success: true, Message: "transaction deleted, stock restored"}
}

// CreateProducts inserts a batch of products.
func (f *Facade) CreateProducts(ctx context.Context, products []*catalog.Product) OpResult {
	created, err := f.products.CreateMany(ctx, products)
	if err != nil {
		return failure(ctx, "create products", err)
	}
	f.recordAudit(ctx, "product", id.Nil(), "create", map[string]any{"count": created})
	return OpResult{Success: true, Message: fmt.Sprintf("%d product(s) created", created), Count: created}
}

// UpdateProducts applies one patch to every listed product.
func (f *Facade) UpdateProducts(ctx context.Context, ids []id.ID, patch catalog.Patch) OpResult {
	updated, err := f.products.UpdateMany(ctx, ids, patch)
	if err != nil {
		return failure(ctx, "update products", err)
	}
	f.recordAudit(ctx, "product", id.Nil(), "update", map[string]any{"ids": ids, "count": updated})
	return OpResult{Success: true, Message: fmt.Sprintf("%d product(s) updated", updated), Count: updated}
}

// DeleteProducts removes a batch of products. Recorded sales keep
// their snapshotted names and prices.
func (f *Facade) DeleteProducts(ctx context.Context, ids []id.ID) OpResult {
	deleted, err := f.products.DeleteMany(ctx, ids)
	if err != nil {
		return failure(ctx, "delete products", err)
	}
	f.recordAudit(ctx, "product", id.Nil(), "delete", map[string]any{"ids": ids, "count": deleted})
	return OpResult{Success: true, Message: fmt.Sprintf("%d product(s) deleted", deleted), Count: deleted}
}

// SynchronizeCostPrices rewrites historical sale costs from the
// current catalog.
func (f *Facade) SynchronizeCostPrices(ctx context.Context) ReconcileResult {
	res, err := f.reconcile.SynchronizeCostPrices(ctx)
	if err != nil {
		return ReconcileResult{OpResult: failure(ctx, "synchronize cost prices", err)}
	}
	f.recordAudit(ctx, "sale", id.Nil(), "reconcile", map[string]any{
		"updated": res.Updated, "skipped": res.Skipped, "failed": res.Failed,
	})
	msg := fmt.Sprintf("%d sale(s) updated, %d unchanged", res.Updated, res.Skipped)
	if res.Failed > 0 {
		msg = fmt.Sprintf("%s, %d failed", msg, res.Failed)
	}
	return ReconcileResult{
		OpResult: OpResult{Success: true, Message: msg, Count: res.Updated},
		Updated:  res.Updated,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
	}
}

func (f *Facade) recordAudit(ctx context.Context, entityType string, entityID id.ID, action string, details map[string]any) {
	if f.audit == nil {
		return
	}
	if err := f.audit.RecordOperation(ctx, entityType, entityID, action, details); err != nil {
		logger.Warn(ctx, "audit record failed", "entity_type", entityType, "action", action, "error", err)
	}
}

// failure maps a domain error to a user-facing result. Business codes
// keep their message; anything unexpected collapses to a storage
// failure so internals never leak.
func failure(ctx context.Context, op string, err error) OpResult {
	if appErr, ok := apperror.AsAppError(err); ok {
		switch appErr.Code {
		case apperror.CodeInvalidCart,
			apperror.CodeInvalidSale,
			apperror.CodeNotFound,
			apperror.CodeConflict,
			apperror.CodeValidation:
			return OpResult{Success: false, Message: appErr.Message}
		}
	}
	storageErr := apperror.NewStorage(err)
	logger.Error(ctx, "operation failed", "operation", op, "code", storageErr.Code, "error", storageErr)
	return OpResult{Success: false, Message: "a storage failure occurred, please retry"}
}
