package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
	"margem/internal/domain/catalog"
)

const productsTable = "products"

var productColumns = []string{"id", "name", "sku", "unit_cost", "stock", "min_stock"}

// CatalogRepo implements catalog.Repository.
type CatalogRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewCatalogRepo creates a new catalog repository.
func NewCatalogRepo(txManager *TxManager) *CatalogRepo {
	return &CatalogRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a product and assigns its ID.
func (r *CatalogRepo) Create(ctx context.Context, p *catalog.Product) error {
	q := r.builder.Insert(productsTable).
		Columns("name", "sku", "unit_cost", "stock", "min_stock").
		Values(p.Name, p.SKU, p.UnitCost, p.Stock, p.MinStock).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "sku", derefOrEmpty(p.SKU))
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Update stores changes to an existing product.
func (r *CatalogRepo) Update(ctx context.Context, p *catalog.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("sku", p.SKU).
		Set("unit_cost", p.UnitCost).
		Set("stock", p.Stock).
		Set("min_stock", p.MinStock).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "sku", derefOrEmpty(p.SKU))
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product.
func (r *CatalogRepo) Delete(ctx context.Context, productID int64) error {
	q := r.builder.Delete(productsTable).Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}

	return nil
}

// GetByID retrieves a product by ID.
func (r *CatalogRepo) GetByID(ctx context.Context, productID int64) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": productID}, "product", productID)
}

// FindBySKU retrieves a product by its stock-keeping code.
func (r *CatalogRepo) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"sku": sku}, "product", sku)
}

// FindByName retrieves a product by exact name.
func (r *CatalogRepo) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, "product", name)
}

func (r *CatalogRepo) getOne(ctx context.Context, where squirrel.Eq, entity string, key any) (*catalog.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}

	return &p, nil
}

// List retrieves products matching the filter.
func (r *CatalogRepo) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		OrderBy("name")

	if filter.NameContains != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.NameContains + "%"})
	}
	if filter.LowStockOnly {
		q = q.Where("stock <= min_stock")
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

	var products []catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	return products, nil
}

// DecrementStock subtracts quantity from stock. A negative quantity
// restores stock (batch revert).
func (r *CatalogRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	sql := `UPDATE products SET stock = stock - $1 WHERE id = $2`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}

	return nil
}

// AdjustStock sets a new stock level and optionally a new unit cost.
func (r *CatalogRepo) AdjustStock(ctx context.Context, productID int64, stock int, unitCost *decimal.Decimal) error {
	q := r.builder.Update(productsTable).
		Set("stock", stock).
		Where(squirrel.Eq{"id": productID})

	if unitCost != nil {
		q = q.Set("unit_cost", *unitCost)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}

	return nil
}

// isUniqueViolation checks for PostgreSQL unique constraint errors.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure interface compliance.
var _ catalog.Repository = (*CatalogRepo)(nil)
