package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"margem/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetSaleTotals aggregates revenue, cost and commission over filtered sales.
func (r *ReportRepo) GetSaleTotals(ctx context.Context, filter reports.ProfitFilter) (reports.SaleTotals, error) {
	q := r.builder.Select(
		"COALESCE(SUM(revenue), 0) AS revenue",
		"COALESCE(SUM(cost), 0) AS cost",
		"COALESCE(SUM(commission), 0) AS commission",
		"COUNT(*) AS sale_count",
	).From(salesTable)

	q = applyProfitFilter(q, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return reports.SaleTotals{}, fmt.Errorf("build query: %w", err)
	}

	var totals reports.SaleTotals
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &totals, sql, args...); err != nil {
		return reports.SaleTotals{}, fmt.Errorf("aggregate sales: %w", err)
	}

	return totals, nil
}

// GetSaleLines returns the filtered sales joined with product names.
func (r *ReportRepo) GetSaleLines(ctx context.Context, filter reports.ProfitFilter) ([]reports.SaleLine, error) {
	q := r.builder.Select(
		"s.id AS sale_id",
		"s.product_id",
		"p.name AS product_name",
		"s.sale_date",
		"s.quantity",
		"s.revenue",
		"s.cost",
		"s.commission",
	).From(salesTable + " s").
		Join(productsTable + " p ON p.id = s.product_id").
		OrderBy("s.sale_date DESC NULLS LAST", "s.id DESC")

	q = applyProfitFilterPrefixed(q, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []reports.SaleLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select sale lines: %w", err)
	}

	return lines, nil
}

// GetStockLines returns current stock per product.
func (r *ReportRepo) GetStockLines(ctx context.Context, lowStockOnly bool) ([]reports.StockLine, error) {
	q := r.builder.Select(
		"id AS product_id",
		"name",
		"sku",
		"unit_cost",
		"stock",
		"min_stock",
		"(stock <= min_stock) AS low_stock",
	).From(productsTable).
		OrderBy("name")

	if lowStockOnly {
		q = q.Where("stock <= min_stock")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []reports.StockLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock lines: %w", err)
	}

	return lines, nil
}

func applyProfitFilter(q squirrel.SelectBuilder, filter reports.ProfitFilter) squirrel.SelectBuilder {
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"sale_date": *filter.ToDate})
	}
	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"batch_id": *filter.BatchID})
	}
	if filter.Channel != nil {
		q = q.Where(squirrel.Eq{"channel": *filter.Channel})
	}
	return q
}

func applyProfitFilterPrefixed(q squirrel.SelectBuilder, filter reports.ProfitFilter) squirrel.SelectBuilder {
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"s.sale_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"s.sale_date": *filter.ToDate})
	}
	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"s.batch_id": *filter.BatchID})
	}
	if filter.Channel != nil {
		q = q.Where(squirrel.Eq{"s.channel": *filter.Channel})
	}
	return q
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
