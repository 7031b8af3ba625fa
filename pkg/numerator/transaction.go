package numerator

import (
	"context"
	"time"
)

// TransactionNumberer issues sale transaction numbers in the
// TRX-YYYY-NNNNN format, restarting the counter each year.
type TransactionNumberer struct {
	gen Generator
	cfg Config
}

// NewTransactionNumberer wraps a Generator with the sale numbering
// configuration.
func NewTransactionNumberer(gen Generator) *TransactionNumberer {
	return &TransactionNumberer{
		gen: gen,
		cfg: DefaultConfig("TRX"),
	}
}

// NextTransactionNumber returns the next sale number for the current
// period. Strict strategy: customer-facing numbers must not have gaps.
func (n *TransactionNumberer) NextTransactionNumber(ctx context.Context) (string, error) {
	return n.gen.GetNextNumber(ctx, n.cfg, DefaultOptions(), time.Now().UTC())
}
