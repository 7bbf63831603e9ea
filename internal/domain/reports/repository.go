package reports

import (
	"context"
)

// Repository defines the read-side queries backing reports.
type Repository interface {
	// GetSaleTotals aggregates revenue, cost and commission over the
	// filtered sales.
	GetSaleTotals(ctx context.Context, filter ProfitFilter) (SaleTotals, error)

	// GetSaleLines returns the filtered sales joined with product names.
	GetSaleLines(ctx context.Context, filter ProfitFilter) ([]SaleLine, error)

	// GetStockLines returns current stock per product.
	GetStockLines(ctx context.Context, lowStockOnly bool) ([]StockLine, error)
}
