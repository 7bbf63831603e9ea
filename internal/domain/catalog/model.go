// Package catalog provides the product catalog.
// Products are the matching targets for imported marketplace sales.
package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
)

// Product represents a catalog item tracked by SKU and stock quantity.
type Product struct {
	// ID is the numeric identity assigned by the database
	ID int64 `db:"id" json:"id"`

	// Name is the display name, also used as fallback match key on import
	Name string `db:"name" json:"name"`

	// SKU is the stock-keeping code. Optional, unique when present.
	SKU *string `db:"sku" json:"sku,omitempty"`

	// UnitCost is the acquisition cost per unit
	UnitCost decimal.Decimal `db:"unit_cost" json:"unitCost"`

	// Stock is the current stock quantity. Decremented per imported sale.
	Stock int `db:"stock" json:"stock"`

	// MinStock triggers the low-stock flag on reports
	MinStock int `db:"min_stock" json:"minStock"`
}

// NewProduct creates a Product with required fields.
func NewProduct(name string, unitCost decimal.Decimal, stock int) *Product {
	return &Product{
		Name:     name,
		UnitCost: unitCost,
		Stock:    stock,
	}
}

// Validate checks invariants before persistence.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}

	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	if p.SKU != nil && strings.TrimSpace(*p.SKU) == "" {
		return apperror.NewValidation("sku cannot be blank, omit it instead").
			WithDetail("field", "sku")
	}

	return nil
}

// HasSKU reports whether the product carries a stock-keeping code.
func (p *Product) HasSKU() bool {
	return p.SKU != nil && *p.SKU != ""
}

// IsLowStock reports whether stock fell to or below the minimum.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
