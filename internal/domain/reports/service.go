package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/expense"
	"tokopos/internal/domain/ledger"
)

// Service generates reports from the sales and expense collections.
// Profit is gross profit before discount (subtotal − totalCost), the
// one formula used across the whole system.
type Service struct {
	sales    ledger.Repository
	expenses expense.Repository
}

// NewService creates a new reports service.
func NewService(sales ledger.Repository, expenses expense.Repository) *Service {
	return &Service{sales: sales, expenses: expenses}
}

// ActivityFeed merges sales and expenses into one feed, date
// descending.
func (s *Service) ActivityFeed(ctx context.Context, filter ActivityFilter) ([]ActivityEntry, error) {
	entries := make([]ActivityEntry, 0, 64)

	if filter.Kind == "" || filter.Kind == KindSale {
		sales, err := s.listSales(ctx, filter.From, filter.To)
		if err != nil {
			return nil, fmt.Errorf("list sales: %w", err)
		}
		for _, sale := range sales {
			entries = append(entries, ActivityEntry{
				Kind:        KindSale,
				ID:          sale.ID,
				Date:        sale.Date,
				Description: sale.TransactionID,
				Amount:      sale.Total,
			})
		}
	}

	if filter.Kind == "" || filter.Kind == KindExpense {
		expenses, err := s.listExpenses(ctx, filter.From, filter.To)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		for _, exp := range expenses {
			desc := exp.Category
			if exp.Description != "" {
				desc = desc + ": " + exp.Description
			}
			entries = append(entries, ActivityEntry{
				Kind:        KindExpense,
				ID:          exp.ID,
				Date:        exp.Date,
				Description: desc,
				Amount:      exp.Amount,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// Summary computes date-bucketed revenue, cost, profit and expenses
// over [from, to).
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("from and to are required")
	}
	if from.After(to) {
		return nil, fmt.Errorf("from must be before to")
	}

	sales, err := s.sales.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	expenses, err := s.expenses.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	byDay := make(map[string]*SummaryBucket)
	bucket := func(t time.Time) *SummaryBucket {
		day := t.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &SummaryBucket{
				Date:     day,
				Revenue:  types.Zero(),
				Cost:     types.Zero(),
				Profit:   types.Zero(),
				Expenses: types.Zero(),
			}
			byDay[day] = b
		}
		return b
	}

	summary := &Summary{
		From:          from,
		To:            to,
		TotalRevenue:  types.Zero(),
		TotalCost:     types.Zero(),
		TotalProfit:   types.Zero(),
		TotalExpenses: types.Zero(),
	}

	for _, sale := range sales {
		b := bucket(sale.Date)
		profit := sale.Subtotal.Sub(sale.TotalCost)
		b.Revenue = b.Revenue.Add(sale.Total)
		b.Cost = b.Cost.Add(sale.TotalCost)
		b.Profit = b.Profit.Add(profit)
		b.Sales++

		summary.TotalRevenue = summary.TotalRevenue.Add(sale.Total)
		summary.TotalCost = summary.TotalCost.Add(sale.TotalCost)
		summary.TotalProfit = summary.TotalProfit.Add(profit)
	}
	for _, exp := range expenses {
		b := bucket(exp.Date)
		b.Expenses = b.Expenses.Add(exp.Amount)
		summary.TotalExpenses = summary.TotalExpenses.Add(exp.Amount)
	}

	summary.Buckets = make([]SummaryBucket, 0, len(byDay))
	for _, b := range byDay {
		summary.Buckets = append(summary.Buckets, *b)
	}
	sort.Slice(summary.Buckets, func(i, j int) bool {
		return summary.Buckets[i].Date > summary.Buckets[j].Date
	})

	return summary, nil
}

// TopProducts returns the n best-selling product names by summed
// quantity across [from, to). Names are summed as snapshotted on the
// sale items, so renamed or deleted products keep their historical
// identity.
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, n int) ([]TopProduct, error) {
	if n < 1 {
		n = 5
	}
	sales, err := s.sales.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	qtyByName := make(map[string]int)
	for _, sale := range sales {
		for _, item := range sale.Items {
			qtyByName[item.ProductName] += item.Quantity
		}
	}

	top := make([]TopProduct, 0, len(qtyByName))
	for name, qty := range qtyByName {
		top = append(top, TopProduct{ProductName: name, Quantity: qty})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity == top[j].Quantity {
			return top[i].ProductName < top[j].ProductName
		}
		return top[i].Quantity > top[j].Quantity
	})
	if len(top) > n {
		top = top[:n]
	}
	return top, nil
}

func (s *Service) listSales(ctx context.Context, from, to *time.Time) ([]*ledger.Sale, error) {
	if from != nil || to != nil {
		lo, hi := rangeBounds(from, to)
		return s.sales.ListRange(ctx, lo, hi)
	}
	return s.sales.List(ctx)
}

func (s *Service) listExpenses(ctx context.Context, from, to *time.Time) ([]*expense.Expense, error) {
	if from != nil || to != nil {
		lo, hi := rangeBounds(from, to)
		return s.expenses.ListRange(ctx, lo, hi)
	}
	return s.expenses.List(ctx)
}

func rangeBounds(from, to *time.Time) (time.Time, time.Time) {
	lo := time.Time{}
	hi := time.Now().UTC().Add(24 * time.Hour)
	if from != nil {
		lo = *from
	}
	if to != nil {
		hi = *to
	}
	return lo, hi
}
