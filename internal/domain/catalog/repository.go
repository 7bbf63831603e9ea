package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// CRUD

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID int64) error
	GetByID(ctx context.Context, productID int64) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)

	// Import matching

	// FindBySKU returns the product with the given SKU, or NotFound.
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByName returns the product with the exact name, or NotFound.
	FindByName(ctx context.Context, name string) (*Product, error)

	// Stock mutation

	// DecrementStock subtracts quantity from the product's stock.
	// The importer calls this inside the batch transaction, paired
	// with the sale insert.
	DecrementStock(ctx context.Context, productID int64, quantity int) error

	// AdjustStock sets a new stock level and optionally a new unit cost.
	AdjustStock(ctx context.Context, productID int64, stock int, unitCost *decimal.Decimal) error
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	NameContains string
	LowStockOnly bool
	Limit        int
	Offset       int
}
