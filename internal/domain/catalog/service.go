package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
	"margem/internal/core/tx"
	"margem/pkg/logger"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new catalog service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if p.HasSKU() {
		if exists, _ := s.skuExists(ctx, *p.SKU, 0); exists {
			return apperror.NewDuplicate("product", "sku", *p.SKU)
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// Update validates and stores changes to an existing product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if p.HasSKU() {
		if exists, _ := s.skuExists(ctx, *p.SKU, p.ID); exists {
			return apperror.NewDuplicate("product", "sku", *p.SKU)
		}
	}

	return s.repo.Update(ctx, p)
}

// Delete removes a product from the catalog.
// Products referenced by sale records are protected by the schema.
func (s *Service) Delete(ctx context.Context, productID int64) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, productID)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID int64) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// FindBySKU retrieves a product by stock-keeping code.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.FindBySKU(ctx, sku)
}

// AdjustStock applies an explicit stock adjustment, optionally updating
// the unit cost at the same time.
func (s *Service) AdjustStock(ctx context.Context, productID int64, stock int, unitCost *decimal.Decimal) error {
	if unitCost != nil && unitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, productID); err != nil {
			return err
		}
		return s.repo.AdjustStock(ctx, productID, stock, unitCost)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock adjusted", "product_id", productID, "stock", stock)
	return nil
}

// skuExists checks whether another product already uses the SKU.
func (s *Service) skuExists(ctx context.Context, sku string, excludeID int64) (bool, error) {
	existing, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}
