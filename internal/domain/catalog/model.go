// Package catalog provides the Product catalog: the leaf store every
// other component consumes.
package catalog

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Product represents a catalog item.
// Stock is mutated concurrently by sale creation/deletion and batch
// edits; it is intentionally not clamped at zero (overselling drives
// it negative, preserved behavior).
type Product struct {
	ID          id.ID       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Price       types.Money `db:"price" json:"price"`
	CostPrice   types.Money `db:"cost_price" json:"costPrice"`
	Stock       int         `db:"stock" json:"stock"`
	Description *string     `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a Product with a generated id and timestamps.
func NewProduct(name string, price, costPrice types.Money, stock int) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		Name:      name,
		Price:     price,
		CostPrice: costPrice,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements self-validation for single-item operations.
// Batch operations bypass this on purpose: callers pre-filter rows.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}
	return nil
}

// Patch is a partial field set applied uniformly to every target of a
// bulk update. Nil fields leave the target column untouched.
type Patch struct {
	Name        *string      `json:"name,omitempty"`
	Price       *types.Money `json:"price,omitempty"`
	CostPrice   *types.Money `json:"costPrice,omitempty"`
	Stock       *int         `json:"stock,omitempty"`
	Description *string      `json:"description,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.CostPrice == nil &&
		p.Stock == nil && p.Description == nil
}

// ApplyTo copies the patch fields onto a product.
func (p Patch) ApplyTo(target *Product) {
	if p.Name != nil {
		target.Name = *p.Name
	}
	if p.Price != nil {
		target.Price = *p.Price
	}
	if p.CostPrice != nil {
		target.CostPrice = *p.CostPrice
	}
	if p.Stock != nil {
		target.Stock = *p.Stock
	}
	if p.Description != nil {
		target.Description = p.Description
	}
	target.UpdatedAt = time.Now().UTC()
}
