package dto

import (
	"time"

	"margem/internal/domain/reports"
)

// ProfitReportQuery holds profit report parameters.
type ProfitReportQuery struct {
	FromDate *string `form:"fromDate"`
	ToDate   *string `form:"toDate"`
	BatchID  *string `form:"batchId"`
	Channel  *string `form:"channel"`
}

// ProfitSummaryResponse is the aggregated profit dashboard.
type ProfitSummaryResponse struct {
	Revenue    string `json:"revenue"`
	Cost       string `json:"cost"`
	Commission string `json:"commission"`
	Tax        string `json:"tax"`
	Expenses   string `json:"expenses"`
	NetProfit  string `json:"netProfit"`
	SaleCount  int    `json:"saleCount"`
}

// FromProfitSummary converts a profit summary to its API view.
func FromProfitSummary(s reports.ProfitSummary) ProfitSummaryResponse {
	return ProfitSummaryResponse{
		Revenue:    s.Revenue.StringFixed(2),
		Cost:       s.Cost.StringFixed(2),
		Commission: s.Commission.StringFixed(2),
		Tax:        s.Tax.StringFixed(2),
		Expenses:   s.Expenses.StringFixed(2),
		NetProfit:  s.NetProfit.StringFixed(2),
		SaleCount:  s.SaleCount,
	}
}

// ProfitLineResponse is one row of the per-sale profit report.
type ProfitLineResponse struct {
	SaleID      int64      `json:"saleId"`
	ProductID   int64      `json:"productId"`
	ProductName string     `json:"productName"`
	SaleDate    *time.Time `json:"saleDate,omitempty"`
	Quantity    int        `json:"quantity"`
	Revenue     string     `json:"revenue"`
	Cost        string     `json:"cost"`
	Commission  string     `json:"commission"`
	Tax         string     `json:"tax"`
	Expenses    string     `json:"expenses"`
	Profit      string     `json:"profit"`
}

// FromProfitLines converts profit lines to their API view.
func FromProfitLines(lines []reports.ProfitLine) []ProfitLineResponse {
	out := make([]ProfitLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, ProfitLineResponse{
			SaleID:      l.SaleID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			SaleDate:    l.SaleDate,
			Quantity:    l.Quantity,
			Revenue:     l.Revenue.StringFixed(2),
			Cost:        l.Cost.StringFixed(2),
			Commission:  l.Commission.StringFixed(2),
			Tax:         l.Tax.StringFixed(2),
			Expenses:    l.Expenses.StringFixed(2),
			Profit:      l.Profit.StringFixed(2),
		})
	}
	return out
}

// StockLineResponse is one row of the stock report.
type StockLineResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	SKU       *string `json:"sku,omitempty"`
	UnitCost  string  `json:"unitCost"`
	Stock     int     `json:"stock"`
	MinStock  int     `json:"minStock"`
	LowStock  bool    `json:"lowStock"`
}

// FromStockLines converts stock lines to their API view.
func FromStockLines(lines []reports.StockLine) []StockLineResponse {
	out := make([]StockLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, StockLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			UnitCost:  l.UnitCost.StringFixed(2),
			Stock:     l.Stock,
			MinStock:  l.MinStock,
			LowStock:  l.LowStock,
		})
	}
	return out
}
