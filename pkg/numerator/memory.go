package numerator

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Generator for development mode and tests.
// Numbers reset when the process restarts.
type Memory struct {
	mu       sync.Mutex
	counters map[string]int64
}

var _ Generator = (*Memory)(nil)

// NewMemory creates an in-memory generator.
func NewMemory() *Memory {
	return &Memory{counters: make(map[string]int64)}
}

func (m *Memory) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := buildKey(cfg, period)
	m.counters[key]++
	return FormatNumber(cfg, period, m.counters[key]), nil
}
