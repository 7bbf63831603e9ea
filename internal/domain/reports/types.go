// Package reports aggregates sales and stock into operator reports.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"margem/internal/domain/sales"
)

// ProfitFilter selects the sales included in a profit report.
type ProfitFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	BatchID  *string
	Channel  *sales.Channel
}

// ProfitRates holds the percentage deductions applied on top of the
// recorded commission. Defaults mirror the operator's spreadsheet:
// 5% tax over gross revenue, 3.5% expenses over net revenue.
type ProfitRates struct {
	TaxRate     decimal.Decimal
	ExpenseRate decimal.Decimal
}

// DefaultProfitRates returns the operator defaults.
func DefaultProfitRates() ProfitRates {
	return ProfitRates{
		TaxRate:     decimal.NewFromFloat(0.05),
		ExpenseRate: decimal.NewFromFloat(0.035),
	}
}

// ProfitSummary is the aggregated profit report.
type ProfitSummary struct {
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Commission decimal.Decimal `json:"commission"`
	Tax        decimal.Decimal `json:"tax"`
	Expenses   decimal.Decimal `json:"expenses"`
	NetProfit  decimal.Decimal `json:"netProfit"`
	SaleCount  int             `json:"saleCount"`
}

// SaleTotals is the raw aggregation the repository returns.
type SaleTotals struct {
	Revenue    decimal.Decimal `db:"revenue"`
	Cost       decimal.Decimal `db:"cost"`
	Commission decimal.Decimal `db:"commission"`
	SaleCount  int             `db:"sale_count"`
}

// ProfitLine is one sale with its derived deductions, the per-row
// profit report.
type ProfitLine struct {
	SaleID      int64           `json:"saleId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	SaleDate    *time.Time      `json:"saleDate,omitempty"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Commission  decimal.Decimal `json:"commission"`
	Tax         decimal.Decimal `json:"tax"`
	Expenses    decimal.Decimal `json:"expenses"`
	Profit      decimal.Decimal `json:"profit"`
}

// SaleLine is the repository row backing a ProfitLine.
type SaleLine struct {
	SaleID      int64           `db:"sale_id"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	SaleDate    *time.Time      `db:"sale_date"`
	Quantity    int             `db:"quantity"`
	Revenue     decimal.Decimal `db:"revenue"`
	Cost        decimal.Decimal `db:"cost"`
	Commission  decimal.Decimal `db:"commission"`
}

// StockLine is one product on the stock report.
type StockLine struct {
	ProductID int64           `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	SKU       *string         `db:"sku" json:"sku,omitempty"`
	UnitCost  decimal.Decimal `db:"unit_cost" json:"unitCost"`
	Stock     int             `db:"stock" json:"stock"`
	MinStock  int             `db:"min_stock" json:"minStock"`
	LowStock  bool            `db:"low_stock" json:"lowStock"`
}
