package reports

import (
	"context"
	"fmt"
)

// Service computes operator reports from persisted sales and stock.
type Service struct {
	repo  Repository
	rates ProfitRates
}

// NewService creates a new reports service.
func NewService(repo Repository, rates ProfitRates) *Service {
	return &Service{
		repo:  repo,
		rates: rates,
	}
}

// GetProfitSummary aggregates the filtered sales into the profit
// dashboard figures: tax applies over gross revenue, expenses over
// revenue net of commission, profit nets out everything including
// cost of goods.
func (s *Service) GetProfitSummary(ctx context.Context, filter ProfitFilter) (ProfitSummary, error) {
	totals, err := s.repo.GetSaleTotals(ctx, filter)
	if err != nil {
		return ProfitSummary{}, fmt.Errorf("aggregate sales: %w", err)
	}

	tax := totals.Revenue.Mul(s.rates.TaxRate)
	expenses := totals.Revenue.Sub(totals.Commission).Mul(s.rates.ExpenseRate)
	profit := totals.Revenue.
		Sub(totals.Cost).
		Sub(totals.Commission).
		Sub(tax).
		Sub(expenses)

	return ProfitSummary{
		Revenue:    totals.Revenue,
		Cost:       totals.Cost,
		Commission: totals.Commission,
		Tax:        tax.Round(2),
		Expenses:   expenses.Round(2),
		NetProfit:  profit.Round(2),
		SaleCount:  totals.SaleCount,
	}, nil
}

// GetProfitLines returns the per-sale profit report with derived
// deduction columns.
func (s *Service) GetProfitLines(ctx context.Context, filter ProfitFilter) ([]ProfitLine, error) {
	rows, err := s.repo.GetSaleLines(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	lines := make([]ProfitLine, 0, len(rows))
	for _, row := range rows {
		tax := row.Revenue.Mul(s.rates.TaxRate)
		expenses := row.Revenue.Sub(row.Commission).Mul(s.rates.ExpenseRate)
		profit := row.Revenue.
			Sub(row.Cost).
			Sub(row.Commission).
			Sub(tax).
			Sub(expenses)

		lines = append(lines, ProfitLine{
			SaleID:      row.SaleID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			SaleDate:    row.SaleDate,
			Quantity:    row.Quantity,
			Revenue:     row.Revenue,
			Cost:        row.Cost,
			Commission:  row.Commission,
			Tax:         tax.Round(2),
			Expenses:    expenses.Round(2),
			Profit:      profit.Round(2),
		})
	}

	return lines, nil
}

// GetStockReport returns current stock levels, optionally restricted
// to products at or below their minimum.
func (s *Service) GetStockReport(ctx context.Context, lowStockOnly bool) ([]StockLine, error) {
	return s.repo.GetStockLines(ctx, lowStockOnly)
}
