package dto

import (
	"margem/internal/domain/importer"
)

// ImportSummaryResponse is the result of one import invocation.
type ImportSummaryResponse struct {
	BatchID          string `json:"batchId"`
	Imported         int    `json:"imported"`
	SkippedNoKey     int    `json:"skippedNoKey"`
	SkippedUnmatched int    `json:"skippedUnmatched"`
}

// FromImportSummary converts an importer summary to its API view.
func FromImportSummary(s *importer.Summary) ImportSummaryResponse {
	return ImportSummaryResponse{
		BatchID:          s.BatchID,
		Imported:         s.Imported,
		SkippedNoKey:     s.SkippedNoKey,
		SkippedUnmatched: s.SkippedUnmatched,
	}
}
