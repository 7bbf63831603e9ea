// Package importer implements spreadsheet import and reconciliation:
// row-by-row matching of marketplace sale rows against the product
// catalog, derived-field computation and compensating stock updates,
// all within a single all-or-nothing transaction per file.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"margem/internal/core/apperror"
	"margem/internal/core/tx"
	"margem/internal/domain/catalog"
	"margem/internal/domain/sales"
	"margem/pkg/logger"
)

var tracer = otel.Tracer("margem/importer")

const (
	// mercadoLivreSheet is the sheet name of the native export.
	mercadoLivreSheet = "Vendas"

	// mercadoLivreHeaderOffset is the zero-based header row of the
	// native export; the rows above it are report boilerplate.
	mercadoLivreHeaderOffset = 5

	// templateSheet is the sheet name of the manual consolidation template.
	templateSheet = "Vendas"

	// batchIDLayout derives the batch identifier from the invocation
	// start time, second precision.
	batchIDLayout = "20060102-150405"
)

// mlRequiredColumns is the column contract of the Mercado Livre export.
// SKU and title columns are optional per-row match keys, not required.
var mlRequiredColumns = []string{
	colMLOrderNumber, colMLDate, colMLUnits, colMLRevenue, colMLCommission,
}

// ImportFunc is the shared signature of the per-format import entry
// points.
type ImportFunc func(ctx context.Context, r io.Reader, fileName string) (*Summary, error)

// Summary is the return contract of one import invocation.
type Summary struct {
	BatchID          string `json:"batchId"`
	Imported         int    `json:"imported"`
	SkippedNoKey     int    `json:"skippedNoKey"`
	SkippedUnmatched int    `json:"skippedUnmatched"`
}

// BatchRecord is the audit entry persisted for one import run.
type BatchRecord struct {
	BatchID          string
	Channel          sales.Channel
	FileName         string
	Imported         int
	SkippedNoKey     int
	SkippedUnmatched int
	Rows             []DecodedRow
	CreatedAt        time.Time
}

// BatchStore persists import batch audit records.
type BatchStore interface {
	SaveBatch(ctx context.Context, batch *BatchRecord) error
}

// Service is the reconciliation importer.
type Service struct {
	catalog   catalog.Repository
	sales     sales.Repository
	batches   BatchStore
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new importer.
func NewService(
	catalogRepo catalog.Repository,
	salesRepo sales.Repository,
	batches BatchStore,
	txManager tx.Manager,
) *Service {
	return &Service{
		catalog:   catalogRepo,
		sales:     salesRepo,
		batches:   batches,
		txManager: txManager,
		now:       time.Now,
	}
}

// ImportMercadoLivre ingests a Mercado Livre sales export.
// Rows with a blank order number are report footers and are dropped
// before any classification.
func (s *Service) ImportMercadoLivre(ctx context.Context, r io.Reader, fileName string) (*Summary, error) {
	sheet, err := ReadSheet(r, mercadoLivreSheet, mercadoLivreHeaderOffset)
	if err != nil {
		return nil, err
	}

	dec := newRowDecoder(sheet.Header)
	if missing := dec.hasColumns(mlRequiredColumns); len(missing) > 0 {
		return nil, apperror.NewImportFormat("export is missing required columns").
			WithDetail("missing", missing)
	}

	var rows []DecodedRow
	for _, raw := range sheet.Rows {
		row := dec.decodeMercadoLivre(raw)
		if !row.HasOrderNumber() {
			continue
		}
		rows = append(rows, row)
	}

	// The export reports fees as signed values, typically negative.
	// Negating yields the canonical positive deduction.
	return s.runBatch(ctx, sales.ChannelMercadoLivre, fileName, rows, decimal.Decimal.Neg)
}

// ImportTemplate ingests the manual consolidation template. The header
// row is auto-detected; the fixed column set is mandatory. Rows with a
// non-positive quantity are placeholders and are dropped before
// classification.
func (s *Service) ImportTemplate(ctx context.Context, r io.Reader, fileName string) (*Summary, error) {
	sheet, err := ReadSheetAutoHeader(r, templateSheet, templateRequiredColumns)
	if err != nil {
		return nil, err
	}

	dec := newRowDecoder(sheet.Header)

	var rows []DecodedRow
	for _, raw := range sheet.Rows {
		row := dec.decodeTemplate(raw)
		if ParseQuantity(row.Quantity).Value <= 0 {
			continue
		}
		rows = append(rows, row)
	}

	// Template commission is already a positive deduction.
	identity := func(d decimal.Decimal) decimal.Decimal { return d }
	return s.runBatch(ctx, sales.ChannelTemplate, fileName, rows, identity)
}

// runBatch applies one import invocation: every row shares one batch
// identifier and one transaction. Row-data errors become counters and
// never abort the batch; any persistence failure rolls back everything.
func (s *Service) runBatch(
	ctx context.Context,
	channel sales.Channel,
	fileName string,
	rows []DecodedRow,
	commissionDeduction func(decimal.Decimal) decimal.Decimal,
) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "import_batch",
		trace.WithAttributes(
			attribute.String("import.channel", string(channel)),
			attribute.String("import.file", fileName),
			attribute.Int("import.rows", len(rows)),
		))
	defer span.End()

	startedAt := s.now()
	summary := &Summary{BatchID: startedAt.Format(batchIDLayout)}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, row := range rows {
			product, err := s.matchProduct(ctx, row)
			if err != nil {
				return err
			}
			if product == nil {
				if row.SKU == "" {
					summary.SkippedNoKey++
				} else {
					summary.SkippedUnmatched++
				}
				continue
			}

			if err := s.importRow(ctx, row, product, channel, summary.BatchID, commissionDeduction); err != nil {
				return err
			}
			summary.Imported++
		}

		if s.batches != nil {
			batch := &BatchRecord{
				BatchID:          summary.BatchID,
				Channel:          channel,
				FileName:         fileName,
				Imported:         summary.Imported,
				SkippedNoKey:     summary.SkippedNoKey,
				SkippedUnmatched: summary.SkippedUnmatched,
				Rows:             rows,
				CreatedAt:        startedAt,
			}
			if err := s.batches.SaveBatch(ctx, batch); err != nil {
				return fmt.Errorf("save batch audit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "import batch committed",
		"batch_id", summary.BatchID,
		"channel", channel,
		"file", fileName,
		"imported", summary.Imported,
		"skipped_no_key", summary.SkippedNoKey,
		"skipped_unmatched", summary.SkippedUnmatched,
	)

	return summary, nil
}

// matchProduct resolves the catalog product for a row: SKU first, then
// exact title as fallback. Returns (nil, nil) when the row has no
// catalog hit; the caller classifies the skip. Database failures
// propagate and abort the batch.
func (s *Service) matchProduct(ctx context.Context, row DecodedRow) (*catalog.Product, error) {
	if row.SKU != "" {
		product, err := s.catalog.FindBySKU(ctx, row.SKU)
		if err == nil {
			return product, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}

	if row.Title != "" {
		product, err := s.catalog.FindByName(ctx, row.Title)
		if err == nil {
			return product, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}

	return nil, nil
}

// importRow normalizes one matched row, derives the financial fields
// and applies the paired sale insert + stock decrement.
func (s *Service) importRow(
	ctx context.Context,
	row DecodedRow,
	product *catalog.Product,
	channel sales.Channel,
	batchID string,
	commissionDeduction func(decimal.Decimal) decimal.Decimal,
) error {
	quantity := ParseQuantity(row.Quantity).Value
	revenue := ParseBRL(row.Revenue).Value
	commission := commissionDeduction(ParseBRL(row.Commission).Value)

	unitPrice := decimal.Zero
	if quantity > 0 {
		unitPrice = revenue.Div(decimal.NewFromInt(int64(quantity))).Round(4)
	}

	cost := product.UnitCost.Mul(decimal.NewFromInt(int64(quantity)))
	contribution := revenue.Sub(cost).Sub(commission)

	var saleDate *time.Time
	if t, ok := ParseDate(row.Date); ok {
		saleDate = &t
	}

	var orderNumber *string
	if row.OrderNumber != "" {
		orderNumber = &row.OrderNumber
	}

	sale := &sales.SaleRecord{
		ProductID:          product.ID,
		SaleDate:           saleDate,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		Revenue:            revenue,
		Cost:               cost,
		Commission:         commission,
		ContributionMargin: contribution,
		Channel:            channel,
		OrderNumber:        orderNumber,
		BatchID:            &batchID,
	}

	if err := s.sales.Insert(ctx, sale); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	if err := s.catalog.DecrementStock(ctx, product.ID, quantity); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}
