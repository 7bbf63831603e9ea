package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
	"margem/internal/core/tx"
	"margem/internal/domain/catalog"
	"margem/pkg/logger"
)

// Service provides business operations for sale records.
type Service struct {
	repo      Repository
	catalog   catalog.Repository
	txManager tx.Manager
}

// NewService creates a new sales service.
func NewService(repo Repository, catalogRepo catalog.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalogRepo,
		txManager: txManager,
	}
}

// Create records a manual sale and decrements stock.
// The insert and the stock decrement are applied in one transaction,
// same pairing discipline as the importer.
func (s *Service) Create(ctx context.Context, sale *SaleRecord) error {
	if sale.Channel == "" {
		sale.Channel = ChannelManual
	}
	if err := sale.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		product, err := s.catalog.GetByID(ctx, sale.ProductID)
		if err != nil {
			return err
		}

		// Derive cost and margin from the catalog at sale time.
		sale.Cost = product.UnitCost.Mul(decimal.NewFromInt(int64(sale.Quantity)))
		sale.ContributionMargin = sale.Revenue.Sub(sale.Cost).Sub(sale.Commission)

		if err := s.repo.Insert(ctx, sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if err := s.catalog.DecrementStock(ctx, sale.ProductID, sale.Quantity); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale recorded", "id", sale.ID, "product_id", sale.ProductID)
	return nil
}

// GetByID retrieves a sale record.
func (s *Service) GetByID(ctx context.Context, saleID int64) (*SaleRecord, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List retrieves sale records matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]SaleRecord, error) {
	return s.repo.List(ctx, filter)
}

// RevertBatch deletes every sale of an import batch and restores the
// stock that the batch consumed, all in one transaction.
func (s *Service) RevertBatch(ctx context.Context, batchID string) (int, error) {
	var reverted int

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.repo.DeleteByBatch(ctx, batchID)
		if err != nil {
			return fmt.Errorf("delete batch sales: %w", err)
		}
		if len(deleted) == 0 {
			return apperror.NewNotFound("import batch", batchID)
		}

		for _, sale := range deleted {
			// Negative decrement puts the quantity back.
			if err := s.catalog.DecrementStock(ctx, sale.ProductID, -sale.Quantity); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", sale.ProductID, err)
			}
		}

		reverted = len(deleted)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "import batch reverted", "batch_id", batchID, "sales", reverted)
	return reverted, nil
}
