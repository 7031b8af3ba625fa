// Package ledger provides the sale-transaction engine: it turns a cart
// into an immutable Sale while atomically adjusting product stock, and
// reverses that exact adjustment when a sale is deleted.
package ledger

import (
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// CartLine is one line of a submitted cart. ProductID may be nil when
// the client failed to resolve a product reference; such lines are
// dropped during validation. UnitPrice is the price the cashier chose,
// which may differ from the current catalog price (manual per-line
// discounting).
type CartLine struct {
	ProductID   id.ID       `json:"productId"`
	ProductName string      `json:"productName"`
	UnitPrice   types.Money `json:"unitPrice"`
	Quantity    int         `json:"quantity"`
}

// SaleItem is a value snapshot embedded in a Sale. Name, price and cost
// are captured at sale time and stay stable under later catalog edits;
// only CostPrice may be rewritten, by the reconciliation job.
type SaleItem struct {
	ProductID   id.ID       `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	Price       types.Money `json:"price"`
	CostPrice   types.Money `json:"costPrice"`
}

// Sale is an immutable sale record. The reconciliation job is the only
// writer after creation, and it touches items[].costPrice, TotalCost
// and Profit only.
//
// Profit is gross profit before discount: Subtotal − TotalCost. The
// same formula is applied everywhere (ledger, reconciliation, reports).
type Sale struct {
	ID            id.ID       `db:"id" json:"id"`
	TransactionID string      `db:"transaction_id" json:"transactionId"`
	Items         []SaleItem  `db:"items" json:"items"`
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
	Discount      types.Money `db:"discount" json:"discount"`
	Total         types.Money `db:"total" json:"total"`
	TotalCost     types.Money `db:"total_cost" json:"totalCost"`
	Profit        types.Money `db:"profit" json:"profit"`
	Date          time.Time   `db:"date" json:"date"`
}

// RecomputeTotals rederives TotalCost and Profit from the items.
// Used after the reconciliation job rewrites item costs.
func (s *Sale) RecomputeTotals() {
	totalCost := types.Zero()
	for _, item := range s.Items {
		totalCost = totalCost.Add(item.CostPrice.Mul(types.NewMoneyFromInt(int64(item.Quantity))))
	}
	s.TotalCost = totalCost
	s.Profit = s.Subtotal.Sub(totalCost)
}
