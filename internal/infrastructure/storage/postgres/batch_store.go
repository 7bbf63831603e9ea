package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"margem/internal/core/apperror"
	"margem/internal/domain/importer"
)

const importBatchesTable = "import_batches"

// compressThreshold is the payload size above which row payloads are
// stored zstd-compressed.
const compressThreshold = 10 * 1024

// CompressionAlgo specifies the compression algorithm used for the
// stored row payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// batchRow is the table representation of one import batch.
type batchRow struct {
	BatchID          string          `db:"batch_id"`
	Channel          string          `db:"channel"`
	FileName         string          `db:"file_name"`
	Imported         int             `db:"imported"`
	SkippedNoKey     int             `db:"skipped_no_key"`
	SkippedUnmatched int             `db:"skipped_unmatched"`
	RowsPayload      []byte          `db:"rows_payload"`
	CompressionAlgo  CompressionAlgo `db:"compression_algo"`
	CreatedAt        time.Time       `db:"created_at"`
}

// BatchSummary is a stored batch without its row payload.
type BatchSummary struct {
	BatchID          string    `db:"batch_id" json:"batchId"`
	Channel          string    `db:"channel" json:"channel"`
	FileName         string    `db:"file_name" json:"fileName"`
	Imported         int       `db:"imported" json:"imported"`
	SkippedNoKey     int       `db:"skipped_no_key" json:"skippedNoKey"`
	SkippedUnmatched int       `db:"skipped_unmatched" json:"skippedUnmatched"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// ImportBatchStore persists import batch audit records with the decoded
// row payload kept for troubleshooting. Large payloads are stored
// zstd-compressed.
type ImportBatchStore struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewImportBatchStore creates a new import batch store.
func NewImportBatchStore(txManager *TxManager) (*ImportBatchStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ImportBatchStore{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// SaveBatch stores the audit record for one import run. Called inside
// the batch transaction so the audit entry and the sales commit or
// roll back together.
func (s *ImportBatchStore) SaveBatch(ctx context.Context, batch *importer.BatchRecord) error {
	payload, err := json.Marshal(batch.Rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	algo := CompressionNone
	if len(payload) > compressThreshold {
		payload = s.encoder.EncodeAll(payload, nil)
		algo = CompressionZstd
	}

	q := s.builder.Insert(importBatchesTable).
		Columns(
			"batch_id", "channel", "file_name",
			"imported", "skipped_no_key", "skipped_unmatched",
			"rows_payload", "compression_algo", "created_at",
		).
		Values(
			batch.BatchID, string(batch.Channel), batch.FileName,
			batch.Imported, batch.SkippedNoKey, batch.SkippedUnmatched,
			payload, algo, batch.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := s.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	return nil
}

// ListBatches returns stored batch summaries, newest first.
func (s *ImportBatchStore) ListBatches(ctx context.Context, limit, offset int) ([]BatchSummary, error) {
	q := s.builder.Select(
		"batch_id", "channel", "file_name",
		"imported", "skipped_no_key", "skipped_unmatched",
		"created_at",
	).From(importBatchesTable).
		OrderBy("created_at DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []BatchSummary
	querier := s.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}

	return batches, nil
}

// GetBatchRows returns the decoded rows stored for one batch.
func (s *ImportBatchStore) GetBatchRows(ctx context.Context, batchID string) ([]importer.DecodedRow, error) {
	q := s.builder.Select("rows_payload", "compression_algo").
		From(importBatchesTable).
		Where(squirrel.Eq{"batch_id": batchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		RowsPayload     []byte          `db:"rows_payload"`
		CompressionAlgo CompressionAlgo `db:"compression_algo"`
	}
	querier := s.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("import batch", batchID)
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}

	payload := row.RowsPayload
	if row.CompressionAlgo == CompressionZstd {
		payload, err = s.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
	}

	var rows []importer.DecodedRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal rows: %w", err)
	}

	return rows, nil
}

// Ensure interface compliance.
var _ importer.BatchStore = (*ImportBatchStore)(nil)
