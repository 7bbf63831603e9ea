package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"margem/internal/core/apperror"
)

// Sheet is the parsed tabular content of one spreadsheet sheet:
// a header row plus the data rows below it.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadSheet parses the named sheet from an .xlsx stream, treating the
// row at headerOffset (zero-based) as the header. Returns a format
// error when the sheet is absent or too short.
func ReadSheet(r io.Reader, sheetName string, headerOffset int) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewImportFormat("unable to open spreadsheet").WithCause(err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperror.NewImportFormat(fmt.Sprintf("sheet %q not found", sheetName)).WithCause(err)
	}

	if len(rows) <= headerOffset {
		return nil, apperror.NewImportFormat(
			fmt.Sprintf("sheet %q has no header at row %d", sheetName, headerOffset+1))
	}

	return &Sheet{
		Name:   sheetName,
		Header: normalizeHeader(rows[headerOffset]),
		Rows:   rows[headerOffset+1:],
	}, nil
}

// ReadSheetAutoHeader parses the named sheet and locates the header by
// scanning the first rows for one containing every required column.
// Used by the template format, where operators paste above the table.
func ReadSheetAutoHeader(r io.Reader, sheetName string, required []string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewImportFormat("unable to open spreadsheet").WithCause(err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperror.NewImportFormat(fmt.Sprintf("sheet %q not found", sheetName)).WithCause(err)
	}

	offset := findHeaderRow(rows, required)
	if offset < 0 {
		return nil, apperror.NewImportFormat("required columns not found").
			WithDetail("columns", required)
	}

	return &Sheet{
		Name:   sheetName,
		Header: normalizeHeader(rows[offset]),
		Rows:   rows[offset+1:],
	}, nil
}

// headerScanLimit bounds how deep the auto-detection looks.
const headerScanLimit = 10

func findHeaderRow(rows [][]string, required []string) int {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		header := normalizeHeader(rows[i])
		if containsAll(header, required) {
			return i
		}
	}
	return -1
}

func containsAll(header, required []string) bool {
	for _, want := range required {
		found := false
		for _, col := range header {
			if col == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func normalizeHeader(row []string) []string {
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = strings.TrimSpace(cell)
	}
	return header
}
