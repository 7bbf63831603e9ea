package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	totals SaleTotals
	lines  []SaleLine
	stock  []StockLine
}

func (f *fakeRepo) GetSaleTotals(ctx context.Context, filter ProfitFilter) (SaleTotals, error) {
	return f.totals, nil
}

func (f *fakeRepo) GetSaleLines(ctx context.Context, filter ProfitFilter) ([]SaleLine, error) {
	return f.lines, nil
}

func (f *fakeRepo) GetStockLines(ctx context.Context, lowStockOnly bool) ([]StockLine, error) {
	return f.stock, nil
}

func TestGetProfitSummary(t *testing.T) {
	repo := &fakeRepo{
		totals: SaleTotals{
			Revenue:    decimal.NewFromInt(1000),
			Cost:       decimal.NewFromInt(400),
			Commission: decimal.NewFromInt(100),
			SaleCount:  12,
		},
	}
	svc := NewService(repo, DefaultProfitRates())

	summary, err := svc.GetProfitSummary(context.Background(), ProfitFilter{})
	require.NoError(t, err)

	// tax = 5% of 1000, expenses = 3.5% of (1000 - 100)
	assert.True(t, summary.Tax.Equal(decimal.NewFromInt(50)), "tax %s", summary.Tax)
	assert.True(t, summary.Expenses.Equal(decimal.NewFromFloat(31.5)), "expenses %s", summary.Expenses)
	// profit = 1000 - 400 - 100 - 50 - 31.50
	assert.True(t, summary.NetProfit.Equal(decimal.NewFromFloat(418.5)), "profit %s", summary.NetProfit)
	assert.Equal(t, 12, summary.SaleCount)
}

func TestGetProfitSummary_ZeroSales(t *testing.T) {
	svc := NewService(&fakeRepo{}, DefaultProfitRates())

	summary, err := svc.GetProfitSummary(context.Background(), ProfitFilter{})
	require.NoError(t, err)

	assert.True(t, summary.NetProfit.IsZero())
	assert.Equal(t, 0, summary.SaleCount)
}

func TestGetProfitLines(t *testing.T) {
	saleDate := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		lines: []SaleLine{
			{
				SaleID:      1,
				ProductID:   7,
				ProductName: "Capa de Celular",
				SaleDate:    &saleDate,
				Quantity:    2,
				Revenue:     decimal.NewFromInt(100),
				Cost:        decimal.NewFromInt(20),
				Commission:  decimal.NewFromInt(10),
			},
		},
	}
	svc := NewService(repo, DefaultProfitRates())

	lines, err := svc.GetProfitLines(context.Background(), ProfitFilter{})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.True(t, line.Tax.Equal(decimal.NewFromInt(5)), "tax %s", line.Tax)
	assert.True(t, line.Expenses.Equal(decimal.NewFromFloat(3.15)), "expenses %s", line.Expenses)
	// 100 - 20 - 10 - 5 - 3.15
	assert.True(t, line.Profit.Equal(decimal.NewFromFloat(61.85)), "profit %s", line.Profit)
	assert.Equal(t, "Capa de Celular", line.ProductName)
}

func TestGetProfitSummary_CustomRates(t *testing.T) {
	repo := &fakeRepo{
		totals: SaleTotals{
			Revenue:    decimal.NewFromInt(200),
			Cost:       decimal.NewFromInt(50),
			Commission: decimal.NewFromInt(20),
			SaleCount:  1,
		},
	}
	svc := NewService(repo, ProfitRates{
		TaxRate:     decimal.NewFromFloat(0.10),
		ExpenseRate: decimal.Zero,
	})

	summary, err := svc.GetProfitSummary(context.Background(), ProfitFilter{})
	require.NoError(t, err)

	assert.True(t, summary.Tax.Equal(decimal.NewFromInt(20)), "tax %s", summary.Tax)
	assert.True(t, summary.Expenses.IsZero())
	assert.True(t, summary.NetProfit.Equal(decimal.NewFromInt(110)), "profit %s", summary.NetProfit)
}

func TestGetStockReport(t *testing.T) {
	repo := &fakeRepo{
		stock: []StockLine{
			{ProductID: 1, Name: "Capa", Stock: 3, MinStock: 10, LowStock: true},
			{ProductID: 2, Name: "Cabo", Stock: 50, MinStock: 10, LowStock: false},
		},
	}
	svc := NewService(repo, DefaultProfitRates())

	lines, err := svc.GetStockReport(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}
