// Package reports provides read-only derivations over sales and
// expenses. Nothing here is persisted; every report is recomputed from
// the two source collections on request.
package reports

import (
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// ActivityKind discriminates merged activity entries.
type ActivityKind string

const (
	KindSale    ActivityKind = "sale"
	KindExpense ActivityKind = "expense"
)

// ActivityEntry is one row of the merged sales+expenses feed.
type ActivityEntry struct {
	Kind        ActivityKind `json:"kind"`
	ID          id.ID        `json:"id"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description"`
	// Amount is the sale total or the expense amount.
	Amount types.Money `json:"amount"`
}

// ActivityFilter restricts the activity feed.
type ActivityFilter struct {
	From  *time.Time
	To    *time.Time
	Kind  ActivityKind // empty means both
	Limit int
}

// SummaryBucket is one day of aggregated sale economics.
type SummaryBucket struct {
	Date     string      `json:"date"` // YYYY-MM-DD
	Revenue  types.Money `json:"revenue"`
	Cost     types.Money `json:"cost"`
	Profit   types.Money `json:"profit"`
	Expenses types.Money `json:"expenses"`
	Sales    int         `json:"sales"`
}

// Summary is the date-bucketed report over a range.
type Summary struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Buckets []SummaryBucket `json:"buckets"`

	TotalRevenue  types.Money `json:"totalRevenue"`
	TotalCost     types.Money `json:"totalCost"`
	TotalProfit   types.Money `json:"totalProfit"`
	TotalExpenses types.Money `json:"totalExpenses"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}
