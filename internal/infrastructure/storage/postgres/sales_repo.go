package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"margem/internal/core/apperror"
	"margem/internal/domain/sales"
)

const salesTable = "sale_records"

var saleColumns = []string{
	"id", "product_id", "sale_date", "quantity", "unit_price",
	"revenue", "cost", "commission", "contribution_margin",
	"channel", "order_number", "batch_id", "created_at",
}

// SalesRepo implements sales.Repository.
type SalesRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewSalesRepo creates a new sales repository.
func NewSalesRepo(txManager *TxManager) *SalesRepo {
	return &SalesRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert stores a sale record and assigns its ID and creation time.
func (r *SalesRepo) Insert(ctx context.Context, sale *sales.SaleRecord) error {
	q := r.builder.Insert(salesTable).
		Columns(
			"product_id", "sale_date", "quantity", "unit_price",
			"revenue", "cost", "commission", "contribution_margin",
			"channel", "order_number", "batch_id",
		).
		Values(
			sale.ProductID, sale.SaleDate, sale.Quantity, sale.UnitPrice,
			sale.Revenue, sale.Cost, sale.Commission, sale.ContributionMargin,
			sale.Channel, sale.OrderNumber, sale.BatchID,
		).
		Suffix("RETURNING id, created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&sale.ID, &sale.CreatedAt); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

// GetByID retrieves a sale record.
func (r *SalesRepo) GetByID(ctx context.Context, saleID int64) (*sales.SaleRecord, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.SaleRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &sale, nil
}

// List retrieves sale records matching the filter.
func (r *SalesRepo) List(ctx context.Context, filter sales.ListFilter) ([]sales.SaleRecord, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		OrderBy("sale_date DESC NULLS LAST", "id DESC")

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Channel != nil {
		q = q.Where(squirrel.Eq{"channel": *filter.Channel})
	}
	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"batch_id": *filter.BatchID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"sale_date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []sales.SaleRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}

	return records, nil
}

// DeleteByBatch removes every sale of one import batch, returning the
// deleted records so the caller can restore stock.
func (r *SalesRepo) DeleteByBatch(ctx context.Context, batchID string) ([]sales.SaleRecord, error) {
	q := r.builder.Delete(salesTable).
		Where(squirrel.Eq{"batch_id": batchID}).
		Suffix("RETURNING " + strings.Join(saleColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete: %w", err)
	}

	var deleted []sales.SaleRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &deleted, sql, args...); err != nil {
		return nil, fmt.Errorf("delete batch sales: %w", err)
	}

	return deleted, nil
}

// Ensure interface compliance.
var _ sales.Repository = (*SalesRepo)(nil)
