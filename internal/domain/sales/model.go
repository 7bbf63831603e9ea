// Package sales provides sale records and their lifecycle.
// A sale is created either manually or by the spreadsheet importer;
// the import path never mutates a sale after creation.
package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
)

// Channel identifies the path that produced a sale record.
type Channel string

const (
	ChannelMercadoLivre Channel = "mercado_livre"
	ChannelTemplate     Channel = "template"
	ChannelManual       Channel = "manual"
)

// SaleRecord represents one sale of one product.
type SaleRecord struct {
	// ID is the numeric identity assigned by the database
	ID int64 `db:"id" json:"id"`

	// ProductID references the catalog product
	ProductID int64 `db:"product_id" json:"productId"`

	// SaleDate is nullable: unparseable source dates do not block the record
	SaleDate *time.Time `db:"sale_date" json:"saleDate,omitempty"`

	// Quantity is the number of units sold
	Quantity int `db:"quantity" json:"quantity"`

	// UnitPrice is revenue divided by quantity (zero when quantity is zero)
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`

	// Revenue is the gross product revenue for the row
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`

	// Cost is product unit cost times quantity at import time
	Cost decimal.Decimal `db:"cost" json:"cost"`

	// Commission is the marketplace fee, always stored as a positive deduction
	Commission decimal.Decimal `db:"commission" json:"commission"`

	// ContributionMargin is revenue minus cost minus commission
	ContributionMargin decimal.Decimal `db:"contribution_margin" json:"contributionMargin"`

	// Channel tags the import path that created the record
	Channel Channel `db:"channel" json:"channel"`

	// OrderNumber is the marketplace order reference, when the source has one
	OrderNumber *string `db:"order_number" json:"orderNumber,omitempty"`

	// BatchID groups all records created by one import invocation
	BatchID *string `db:"batch_id" json:"batchId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks invariants before persistence.
func (s *SaleRecord) Validate(ctx context.Context) error {
	if s.ProductID == 0 {
		return apperror.NewValidation("product reference is required").
			WithDetail("field", "productId")
	}

	if s.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	if !isValidChannel(s.Channel) {
		return apperror.NewValidation("invalid sale channel").
			WithDetail("field", "channel").
			WithDetail("value", string(s.Channel))
	}

	return nil
}

func isValidChannel(c Channel) bool {
	switch c {
	case ChannelMercadoLivre, ChannelTemplate, ChannelManual:
		return true
	}
	return false
}
