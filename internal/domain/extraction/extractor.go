// Package extraction turns an uploaded document (price list photo,
// supplier invoice) into product candidates for catalog import.
//
// Output is untrusted review data: no guarantee of completeness or
// accuracy. Callers filter candidates before feeding the bulk mutator.
package extraction

import (
	"context"

	"tokopos/internal/core/types"
)

// ProductCandidate is one extracted row, mirroring the fields a catalog
// import needs.
type ProductCandidate struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       types.Money `json:"price"`
	CostPrice   types.Money `json:"costPrice"`
	Stock       int         `json:"stock"`
}

// Extractor extracts product candidates from a binary document payload.
type Extractor interface {
	ExtractProducts(ctx context.Context, document []byte, mimeType string) ([]ProductCandidate, error)
}
