package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/expense"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/storage/memory"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d.UTC()
}

func addSale(t *testing.T, repo *memory.SaleRepo, number string, date time.Time, total, cost string, items ...ledger.SaleItem) {
	t.Helper()
	sale := &ledger.Sale{
		ID:            id.New(),
		TransactionID: number,
		Items:         items,
		Subtotal:      types.MustMoney(total),
		Total:         types.MustMoney(total),
		TotalCost:     types.MustMoney(cost),
		Profit:        types.MustMoney(total).Sub(types.MustMoney(cost)),
		Date:          date,
	}
	require.NoError(t, repo.Create(context.Background(), sale))
}

func addExpense(t *testing.T, repo *memory.ExpenseRepo, category, amount string, date time.Time) {
	t.Helper()
	exp := expense.NewExpense(category, types.MustMoney(amount), date)
	require.NoError(t, repo.Create(context.Background(), exp))
}

func newReportsFixture(t *testing.T) (*reports.Service, *memory.SaleRepo, *memory.ExpenseRepo) {
	t.Helper()
	store := memory.NewStore()
	sales := memory.NewSaleRepo(store)
	expenses := memory.NewExpenseRepo(store)
	return reports.NewService(sales, expenses), sales, expenses
}

func TestActivityFeed_MergesDateDescending(t *testing.T) {
	svc, sales, expenses := newReportsFixture(t)
	ctx := context.Background()

	addSale(t, sales, "TRX-2026-00001", day(t, "2026-03-01"), "10000", "6000")
	addExpense(t, expenses, "Listrik", "500", day(t, "2026-03-02"))
	addSale(t, sales, "TRX-2026-00002", day(t, "2026-03-03"), "20000", "12000")

	feed, err := svc.ActivityFeed(ctx, reports.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, feed, 3)

	assert.Equal(t, reports.KindSale, feed[0].Kind)
	assert.Equal(t, "TRX-2026-00002", feed[0].Description)
	assert.Equal(t, reports.KindExpense, feed[1].Kind)
	assert.Equal(t, "Listrik", feed[1].Description)
	assert.Equal(t, "TRX-2026-00001", feed[2].Description)
}

func TestActivityFeed_KindAndLimit(t *testing.T) {
	svc, sales, expenses := newReportsFixture(t)
	ctx := context.Background()

	addSale(t, sales, "TRX-2026-00001", day(t, "2026-03-01"), "10000", "6000")
	addSale(t, sales, "TRX-2026-00002", day(t, "2026-03-02"), "20000", "12000")
	addExpense(t, expenses, "Listrik", "500", day(t, "2026-03-03"))

	onlySales, err := svc.ActivityFeed(ctx, reports.ActivityFilter{Kind: reports.KindSale})
	require.NoError(t, err)
	assert.Len(t, onlySales, 2)
	for _, e := range onlySales {
		assert.Equal(t, reports.KindSale, e.Kind)
	}

	limited, err := svc.ActivityFeed(ctx, reports.ActivityFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, reports.KindExpense, limited[0].Kind)
}

func TestActivityFeed_ExpenseDescription(t *testing.T) {
	svc, _, expenses := newReportsFixture(t)
	ctx := context.Background()

	exp := expense.NewExpense("Sewa", types.MustMoney("1000"), day(t, "2026-03-01"))
	exp.Description = "ruko bulan Maret"
	require.NoError(t, expenses.Create(ctx, exp))

	feed, err := svc.ActivityFeed(ctx, reports.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Sewa: ruko bulan Maret", feed[0].Description)
}

func TestSummary_BucketsByDay(t *testing.T) {
	svc, sales, expenses := newReportsFixture(t)
	ctx := context.Background()

	addSale(t, sales, "TRX-2026-00001", day(t, "2026-03-01"), "10000", "6000")
	addSale(t, sales, "TRX-2026-00002", day(t, "2026-03-01").Add(5*time.Hour), "20000", "12000")
	addSale(t, sales, "TRX-2026-00003", day(t, "2026-03-02"), "5000", "3000")
	addExpense(t, expenses, "Listrik", "700", day(t, "2026-03-02"))

	summary, err := svc.Summary(ctx, day(t, "2026-03-01"), day(t, "2026-03-03"))
	require.NoError(t, err)

	assert.True(t, summary.TotalRevenue.Equal(types.MustMoney("35000")))
	assert.True(t, summary.TotalCost.Equal(types.MustMoney("21000")))
	assert.True(t, summary.TotalProfit.Equal(types.MustMoney("14000")))
	assert.True(t, summary.TotalExpenses.Equal(types.MustMoney("700")))

	require.Len(t, summary.Buckets, 2)
	// Buckets are date descending.
	assert.Equal(t, "2026-03-02", summary.Buckets[0].Date)
	assert.Equal(t, 1, summary.Buckets[0].Sales)
	assert.True(t, summary.Buckets[0].Expenses.Equal(types.MustMoney("700")))

	assert.Equal(t, "2026-03-01", summary.Buckets[1].Date)
	assert.Equal(t, 2, summary.Buckets[1].Sales)
	assert.True(t, summary.Buckets[1].Revenue.Equal(types.MustMoney("30000")))
	assert.True(t, summary.Buckets[1].Profit.Equal(types.MustMoney("12000")))
}

func TestSummary_RangeIsHalfOpen(t *testing.T) {
	svc, sales, _ := newReportsFixture(t)
	ctx := context.Background()

	addSale(t, sales, "TRX-2026-00001", day(t, "2026-03-01"), "10000", "6000")
	addSale(t, sales, "TRX-2026-00002", day(t, "2026-03-03"), "20000", "12000")

	summary, err := svc.Summary(ctx, day(t, "2026-03-01"), day(t, "2026-03-03"))
	require.NoError(t, err)
	// The `to` bound is exclusive.
	assert.True(t, summary.TotalRevenue.Equal(types.MustMoney("10000")))
}

func TestSummary_InvalidRange(t *testing.T) {
	svc, _, _ := newReportsFixture(t)
	ctx := context.Background()

	_, err := svc.Summary(ctx, time.Time{}, day(t, "2026-03-01"))
	require.Error(t, err)

	_, err = svc.Summary(ctx, day(t, "2026-03-02"), day(t, "2026-03-01"))
	require.Error(t, err)
}

func TestTopProducts(t *testing.T) {
	svc, sales, _ := newReportsFixture(t)
	ctx := context.Background()

	addSale(t, sales, "TRX-2026-00001", day(t, "2026-03-01"), "10000", "6000",
		ledger.SaleItem{ProductName: "Kopi Susu", Quantity: 3},
		ledger.SaleItem{ProductName: "Es Teh", Quantity: 5},
	)
	addSale(t, sales, "TRX-2026-00002", day(t, "2026-03-02"), "5000", "3000",
		ledger.SaleItem{ProductName: "Kopi Susu", Quantity: 2},
		ledger.SaleItem{ProductName: "Roti Bakar", Quantity: 5},
	)

	top, err := svc.TopProducts(ctx, day(t, "2026-03-01"), day(t, "2026-03-03"), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// Quantities tie at 5; names break the tie alphabetically.
	assert.Equal(t, "Es Teh", top[0].ProductName)
	assert.Equal(t, 5, top[0].Quantity)
	assert.Equal(t, "Kopi Susu", top[1].ProductName)
	assert.Equal(t, 5, top[1].Quantity)
}

func TestTopProducts_DefaultN(t *testing.T) {
	svc, sales, _ := newReportsFixture(t)
	ctx := context.Background()

	items := make([]ledger.SaleItem, 0, 7)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		items = append(items, ledger.SaleItem{ProductName: name, Quantity: 1})
	}
	addSale(t, sales, "TRX-2026-00001", day(t, "2026-03-01"), "7000", "3500", items...)

	top, err := svc.TopProducts(ctx, day(t, "2026-03-01"), day(t, "2026-03-02"), 0)
	require.NoError(t, err)
	assert.Len(t, top, 5)
}
