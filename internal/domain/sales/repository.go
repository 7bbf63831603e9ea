package sales

import (
	"context"
	"time"
)

// Repository defines persistence operations for sale records.
type Repository interface {
	// Insert stores a new sale record and assigns its ID.
	Insert(ctx context.Context, sale *SaleRecord) error

	// GetByID retrieves a sale record.
	GetByID(ctx context.Context, saleID int64) (*SaleRecord, error)

	// List retrieves sale records matching the filter.
	List(ctx context.Context, filter ListFilter) ([]SaleRecord, error)

	// DeleteByBatch removes every sale record of one import batch.
	// Returns the deleted records so stock can be restored.
	DeleteByBatch(ctx context.Context, batchID string) ([]SaleRecord, error)
}

// ListFilter narrows sale listings.
type ListFilter struct {
	ProductID *int64
	Channel   *Channel
	BatchID   *string
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}
