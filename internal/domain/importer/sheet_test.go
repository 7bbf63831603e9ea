package importer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"margem/internal/core/apperror"
)

func writeRows(t *testing.T, sheetName string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheetName))
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+1), &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadSheet(t *testing.T) {
	buf := writeRows(t, "Vendas", [][]any{
		{"boilerplate"},
		{"more boilerplate"},
		{"SKU", "Receita"},
		{"A-1", "10,00"},
		{"A-2", "20,00"},
	})

	sheet, err := ReadSheet(buf, "Vendas", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"SKU", "Receita"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "A-1", sheet.Rows[0][0])
}

func TestReadSheet_WrongSheetName(t *testing.T) {
	buf := writeRows(t, "Outra", [][]any{{"SKU"}})

	_, err := ReadSheet(buf, "Vendas", 0)
	require.Error(t, err)
	assert.True(t, apperror.IsImportFormat(err))
}

func TestReadSheet_HeaderBeyondContent(t *testing.T) {
	buf := writeRows(t, "Vendas", [][]any{{"só uma linha"}})

	_, err := ReadSheet(buf, "Vendas", 5)
	require.Error(t, err)
	assert.True(t, apperror.IsImportFormat(err))
}

func TestReadSheet_NotASpreadsheet(t *testing.T) {
	_, err := ReadSheet(bytes.NewBufferString("csv,not,xlsx"), "Vendas", 0)
	require.Error(t, err)
	assert.True(t, apperror.IsImportFormat(err))
}

func TestReadSheetAutoHeader(t *testing.T) {
	buf := writeRows(t, "Vendas", [][]any{
		{"anotações do operador"},
		{},
		{"SKU", "Quantidade", "Receita"},
		{"A-1", "2", "30,00"},
	})

	sheet, err := ReadSheetAutoHeader(buf, "Vendas", []string{"SKU", "Quantidade", "Receita"})
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "A-1", sheet.Rows[0][0])
}

func TestReadSheetAutoHeader_ScanLimit(t *testing.T) {
	rows := make([][]any, 0, headerScanLimit+2)
	for i := 0; i < headerScanLimit; i++ {
		rows = append(rows, []any{"filler"})
	}
	// Header below the scan window is never found.
	rows = append(rows, []any{"SKU", "Quantidade"})
	rows = append(rows, []any{"A-1", "1"})
	buf := writeRows(t, "Vendas", rows)

	_, err := ReadSheetAutoHeader(buf, "Vendas", []string{"SKU", "Quantidade"})
	require.Error(t, err)
	assert.True(t, apperror.IsImportFormat(err))
}

func TestReadSheet_TrimsHeaderWhitespace(t *testing.T) {
	buf := writeRows(t, "Vendas", [][]any{
		{" SKU ", "Receita "},
		{"A-1", "10,00"},
	})

	sheet, err := ReadSheet(buf, "Vendas", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "Receita"}, sheet.Header)
}
