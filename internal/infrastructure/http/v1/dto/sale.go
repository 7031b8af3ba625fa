package dto

import (
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/ledger"
)

// CartLineRequest is one line of a submitted cart. ProductID may be
// empty or malformed; such lines are dropped by the ledger engine, not
// rejected here.
type CartLineRequest struct {
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName"`
	UnitPrice   types.Money `json:"unitPrice"`
	Quantity    int         `json:"quantity"`
}

// RecordSaleRequest is the body for posting a sale.
type RecordSaleRequest struct {
	Items              []CartLineRequest `json:"items" binding:"required"`
	DiscountPercentage types.Money       `json:"discountPercentage"`
	Date               *time.Time        `json:"date"`
}

// ToCartLines converts request items to domain cart lines. Unparseable
// product ids map to the nil id, which the engine drops during
// validation.
func (r RecordSaleRequest) ToCartLines() []ledger.CartLine {
	lines := make([]ledger.CartLine, 0, len(r.Items))
	for _, item := range r.Items {
		pid, err := id.Parse(item.ProductID)
		if err != nil {
			pid = id.Nil()
		}
		lines = append(lines, ledger.CartLine{
			ProductID:   pid,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return lines
}

// SaleDate returns the requested date or zero for "now".
func (r RecordSaleRequest) SaleDate() time.Time {
	if r.Date != nil {
		return *r.Date
	}
	return time.Time{}
}
