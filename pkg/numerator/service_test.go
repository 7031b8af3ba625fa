package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sequences table: each call advances the
// stored value by the increment found in args (1 for strict).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}
	m.currentValue += increment
	m.calls++
	return &mockRow{val: m.currentValue}
}

func year() string { return time.Now().UTC().Format("2006") }

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TRX")

	num, err := svc.GetNextNumber(ctx, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TRX-%s-00001", year()), num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TRX-%s-00002", year()), num)

	// Strict hits the database on every call.
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("ORD")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	// First call reserves 1..10; the next nine come from memory.
	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%s-%05d", year(), i), num)
	}
	assert.Equal(t, 1, q.calls)

	// The eleventh exhausts the range and reserves 11..20.
	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ORD-%s-00011", year()), num)
	assert.Equal(t, 2, q.calls)
}

func TestBuildKey_ResetPeriods(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "TRX_2026", buildKey(Config{Prefix: "TRX", ResetPeriod: "year"}, period))
	assert.Equal(t, "TRX_2026_03", buildKey(Config{Prefix: "TRX", ResetPeriod: "month"}, period))
	assert.Equal(t, "TRX", buildKey(Config{Prefix: "TRX", ResetPeriod: "never"}, period))
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	cfg := DefaultConfig("TRX")
	assert.Equal(t, "TRX-2026-00042", FormatNumber(cfg, period, 42))

	cfg.IncludeYear = false
	assert.Equal(t, "TRX-00042", FormatNumber(cfg, period, 42))

	cfg.PadWidth = 0
	assert.Equal(t, "TRX-00007", FormatNumber(cfg, period, 7))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("TRX-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("TRX-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestMemoryGenerator(t *testing.T) {
	gen := NewMemory()
	ctx := context.Background()

	num, err := gen.GetNextNumber(ctx, DefaultConfig("TRX"), nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TRX-%s-00001", year()), num)

	// Independent prefixes keep independent counters.
	num, err = gen.GetNextNumber(ctx, DefaultConfig("EXP"), nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("EXP-%s-00001", year()), num)
}

func TestTransactionNumberer(t *testing.T) {
	n := NewTransactionNumberer(NewMemory())
	ctx := context.Background()

	first, err := n.NextTransactionNumber(ctx)
	require.NoError(t, err)
	second, err := n.NextTransactionNumber(ctx)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("TRX-%s-00001", year()), first)
	assert.Equal(t, fmt.Sprintf("TRX-%s-00002", year()), second)
	assert.Equal(t, int64(1), ParseNumber(first))
}
