// Package dto defines request and response shapes for HTTP API v1.
package dto

import (
	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalog"
)

// CreateProductRequest is the body for single and batch product
// creation.
type CreateProductRequest struct {
	Name        string      `json:"name" binding:"required"`
	Price       types.Money `json:"price"`
	CostPrice   types.Money `json:"costPrice"`
	Stock       int         `json:"stock"`
	Description *string     `json:"description"`
}

// ToEntity converts the request to a domain product.
func (r CreateProductRequest) ToEntity() *catalog.Product {
	p := catalog.NewProduct(r.Name, r.Price, r.CostPrice, r.Stock)
	p.Description = r.Description
	return p
}

// UpdateProductRequest is a full-field single product update.
type UpdateProductRequest struct {
	Name        string      `json:"name" binding:"required"`
	Price       types.Money `json:"price"`
	CostPrice   types.Money `json:"costPrice"`
	Stock       int         `json:"stock"`
	Description *string     `json:"description"`
}

// ApplyTo copies the request fields onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *catalog.Product) {
	p.Name = r.Name
	p.Price = r.Price
	p.CostPrice = r.CostPrice
	p.Stock = r.Stock
	p.Description = r.Description
}

// BatchCreateProductsRequest bulk-creates products.
type BatchCreateProductsRequest struct {
	Products []CreateProductRequest `json:"products" binding:"required"`
}

// PatchRequest is the partial field set of a bulk update. Omitted
// fields leave the column untouched on every target.
type PatchRequest struct {
	Name        *string      `json:"name"`
	Price       *types.Money `json:"price"`
	CostPrice   *types.Money `json:"costPrice"`
	Stock       *int         `json:"stock"`
	Description *string      `json:"description"`
}

// ToPatch converts the request into a domain patch.
func (r PatchRequest) ToPatch() catalog.Patch {
	return catalog.Patch{
		Name:        r.Name,
		Price:       r.Price,
		CostPrice:   r.CostPrice,
		Stock:       r.Stock,
		Description: r.Description,
	}
}

// BatchUpdateProductsRequest applies one patch to every listed id.
type BatchUpdateProductsRequest struct {
	IDs   []string     `json:"ids" binding:"required"`
	Patch PatchRequest `json:"patch"`
}

// BatchDeleteProductsRequest removes every listed id.
type BatchDeleteProductsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
