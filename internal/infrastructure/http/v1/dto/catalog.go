package dto

import (
	"github.com/shopspring/decimal"

	"margem/internal/domain/catalog"
)

// CreateProductRequest is the payload for POST /products.
type CreateProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	SKU      *string `json:"sku"`
	UnitCost string  `json:"unitCost" binding:"required"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"minStock"`
}

// UpdateProductRequest is the payload for PUT /products/:id.
type UpdateProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	SKU      *string `json:"sku"`
	UnitCost string  `json:"unitCost" binding:"required"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"minStock"`
}

// AdjustStockRequest is the payload for POST /products/:id/adjust-stock.
type AdjustStockRequest struct {
	Stock    int     `json:"stock"`
	UnitCost *string `json:"unitCost"`
}

// ListProductsQuery holds catalog listing parameters.
type ListProductsQuery struct {
	ListQuery
	Name     string `form:"name"`
	LowStock bool   `form:"lowStock"`
}

// ProductResponse is the API view of a product.
type ProductResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	SKU      *string `json:"sku,omitempty"`
	UnitCost string  `json:"unitCost"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"minStock"`
	LowStock bool    `json:"lowStock"`
}

// FromProduct converts a domain product to its API view.
func FromProduct(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		SKU:      p.SKU,
		UnitCost: p.UnitCost.StringFixed(2),
		Stock:    p.Stock,
		MinStock: p.MinStock,
		LowStock: p.IsLowStock(),
	}
}

// FromProducts converts a product slice.
func FromProducts(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, FromProduct(&products[i]))
	}
	return out
}

// ParseMoney parses a decimal request field.
func ParseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
