package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"margem/internal/core/apperror"
	"margem/internal/domain/catalog"
	"margem/internal/domain/sales"
)

// --- Fakes ---

type fakeCatalog struct {
	products   []*catalog.Product
	decrements map[int64]int
}

func newFakeCatalog(products ...*catalog.Product) *fakeCatalog {
	return &fakeCatalog{products: products, decrements: make(map[int64]int)}
}

func (f *fakeCatalog) Create(ctx context.Context, p *catalog.Product) error { return nil }
func (f *fakeCatalog) Update(ctx context.Context, p *catalog.Product) error { return nil }
func (f *fakeCatalog) Delete(ctx context.Context, productID int64) error    { return nil }

func (f *fakeCatalog) GetByID(ctx context.Context, productID int64) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", productID)
}

func (f *fakeCatalog) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.SKU != nil && *p.SKU == sku {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (f *fakeCatalog) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", name)
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	f.decrements[productID] += quantity
	return nil
}

func (f *fakeCatalog) AdjustStock(ctx context.Context, productID int64, stock int, unitCost *decimal.Decimal) error {
	return nil
}

type fakeSales struct {
	inserted   []sales.SaleRecord
	failInsert bool
}

func (f *fakeSales) Insert(ctx context.Context, sale *sales.SaleRecord) error {
	if f.failInsert {
		return errors.New("insert failed")
	}
	sale.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *sale)
	return nil
}

func (f *fakeSales) GetByID(ctx context.Context, saleID int64) (*sales.SaleRecord, error) {
	return nil, apperror.NewNotFound("sale", saleID)
}

func (f *fakeSales) List(ctx context.Context, filter sales.ListFilter) ([]sales.SaleRecord, error) {
	return nil, nil
}

func (f *fakeSales) DeleteByBatch(ctx context.Context, batchID string) ([]sales.SaleRecord, error) {
	return nil, nil
}

type fakeBatchStore struct {
	saved []*BatchRecord
	fail  bool
}

func (f *fakeBatchStore) SaveBatch(ctx context.Context, batch *BatchRecord) error {
	if f.fail {
		return errors.New("save failed")
	}
	f.saved = append(f.saved, batch)
	return nil
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// --- Spreadsheet builders ---

func buildSheet(t *testing.T, fillerRows int, header []string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Vendas"))

	line := 1
	for i := 0; i < fillerRows; i++ {
		cell := fmt.Sprintf("A%d", line)
		require.NoError(t, f.SetSheetRow("Vendas", cell, &[]any{"relatório"}))
		line++
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	require.NoError(t, f.SetSheetRow("Vendas", fmt.Sprintf("A%d", line), &headerCells))
	line++

	for _, row := range rows {
		require.NoError(t, f.SetSheetRow("Vendas", fmt.Sprintf("A%d", line), &row))
		line++
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var mlHeader = []string{
	"N.º de venda", "SKU", "Título do anúncio", "Data da venda",
	"Unidades", "Receita por produtos (BRL)", "Tarifa de venda e impostos",
}

func buildMercadoLivreExport(t *testing.T, rows [][]any) *bytes.Buffer {
	return buildSheet(t, 5, mlHeader, rows)
}

var templateHeader = []string{
	"SKU", "Título", "Quantidade", "Receita", "Comissão", "Preço Médio",
}

func buildTemplate(t *testing.T, fillerRows int, rows [][]any) *bytes.Buffer {
	return buildSheet(t, fillerRows, templateHeader, rows)
}

func strPtr(s string) *string { return &s }

func testProducts() []*catalog.Product {
	return []*catalog.Product{
		{ID: 1, Name: "Capa de Celular", SKU: strPtr("SKU-A"), UnitCost: decimal.NewFromInt(10), Stock: 100},
		{ID: 2, Name: "Película de Vidro", SKU: strPtr("SKU-B"), UnitCost: decimal.NewFromInt(3), Stock: 50},
		{ID: 3, Name: "Produto C", UnitCost: decimal.NewFromInt(5), Stock: 30},
	}
}

func newTestService(catalogRepo *fakeCatalog, salesRepo *fakeSales, batches *fakeBatchStore) *Service {
	svc := NewService(catalogRepo, salesRepo, batches, &fakeTxManager{})
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	}
	return svc
}

// --- Tests ---

func TestImportMercadoLivre(t *testing.T) {
	catalogRepo := newFakeCatalog(testProducts()...)
	salesRepo := &fakeSales{}
	batches := &fakeBatchStore{}
	svc := newTestService(catalogRepo, salesRepo, batches)

	file := buildMercadoLivreExport(t, [][]any{
		{"2001", "SKU-A", "Capa de Celular", "05 de março de 2024 14:30", "2", "R$ 100,00", "-R$ 10,00"},
		{"2002", "", "Produto C", "05 de março de 2024 15:00", "1", "R$ 25,00", "-R$ 2,50"},
		{"2003", "SKU-B", "Película de Vidro", "06/03/2024", "4", "R$ 40,00", "-4,00"},
		{"2004", "", "Desconhecido", "05 de março de 2024 16:00", "1", "R$ 10,00", "-1,00"},
		{"2005", "SKU-X", "Item sem cadastro", "05 de março de 2024 17:00", "1", "R$ 15,00", "-1,50"},
		{"", "", "", "", "", "Total: R$ 190,00", ""},
	})

	summary, err := svc.ImportMercadoLivre(context.Background(), file, "vendas.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "20240305-143000", summary.BatchID)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 1, summary.SkippedNoKey)
	assert.Equal(t, 1, summary.SkippedUnmatched)

	require.Len(t, salesRepo.inserted, 3)

	first := salesRepo.inserted[0]
	assert.Equal(t, int64(1), first.ProductID)
	assert.Equal(t, 2, first.Quantity)
	assert.True(t, first.Revenue.Equal(decimal.NewFromInt(100)), "revenue %s", first.Revenue)
	// Signed export fee becomes a positive deduction.
	assert.True(t, first.Commission.Equal(decimal.NewFromInt(10)), "commission %s", first.Commission)
	assert.True(t, first.Cost.Equal(decimal.NewFromInt(20)), "cost %s", first.Cost)
	assert.True(t, first.ContributionMargin.Equal(decimal.NewFromInt(70)), "margin %s", first.ContributionMargin)
	assert.True(t, first.UnitPrice.Equal(decimal.NewFromInt(50)), "unit price %s", first.UnitPrice)
	require.NotNil(t, first.SaleDate)
	assert.Equal(t, time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC), *first.SaleDate)
	require.NotNil(t, first.OrderNumber)
	assert.Equal(t, "2001", *first.OrderNumber)
	assert.Equal(t, sales.ChannelMercadoLivre, first.Channel)

	// Title-only match lands on the SKU-less product.
	assert.Equal(t, int64(3), salesRepo.inserted[1].ProductID)

	// Every imported sale carries the batch id and decrements stock.
	for _, sale := range salesRepo.inserted {
		require.NotNil(t, sale.BatchID)
		assert.Equal(t, summary.BatchID, *sale.BatchID)
	}
	assert.Equal(t, 2, catalogRepo.decrements[1])
	assert.Equal(t, 4, catalogRepo.decrements[2])
	assert.Equal(t, 1, catalogRepo.decrements[3])

	// Audit record captures the decoded rows and counters.
	require.Len(t, batches.saved, 1)
	batch := batches.saved[0]
	assert.Equal(t, summary.BatchID, batch.BatchID)
	assert.Equal(t, 3, batch.Imported)
	assert.Len(t, batch.Rows, 5) // footer row dropped before classification
	assert.Equal(t, "vendas.xlsx", batch.FileName)
}

func TestImportMercadoLivre_InvariantPerRow(t *testing.T) {
	catalogRepo := newFakeCatalog(testProducts()...)
	salesRepo := &fakeSales{}
	svc := newTestService(catalogRepo, salesRepo, &fakeBatchStore{})

	file := buildMercadoLivreExport(t, [][]any{
		{"3001", "SKU-A", "Capa de Celular", "05 de março de 2024 14:30", "3", "R$ 1.234,56", "-R$ 123,45"},
	})

	_, err := svc.ImportMercadoLivre(context.Background(), file, "vendas.xlsx")
	require.NoError(t, err)
	require.Len(t, salesRepo.inserted, 1)

	sale := salesRepo.inserted[0]
	want := sale.Revenue.Sub(sale.Cost).Sub(sale.Commission)
	assert.True(t, sale.ContributionMargin.Equal(want),
		"margin %s != revenue - cost - commission %s", sale.ContributionMargin, want)
	assert.True(t, sale.Revenue.Equal(decimal.NewFromFloat(1234.56)))
}

func TestImportMercadoLivre_MissingColumns(t *testing.T) {
	svc := newTestService(newFakeCatalog(), &fakeSales{}, &fakeBatchStore{})

	file := buildSheet(t, 5,
		[]string{"N.º de venda", "SKU", "Unidades"},
		[][]any{{"1", "SKU-A", "2"}},
	)

	_, err := svc.ImportMercadoLivre(context.Background(), file, "vendas.xlsx")
	require.Error(t, err)
	assert.True(t, apperror.IsImportFormat(err))
}

func TestImportMercadoLivre_InsertFailureAbortsBatch(t *testing.T) {
	catalogRepo := newFakeCatalog(testProducts()...)
	salesRepo := &fakeSales{failInsert: true}
	batches := &fakeBatchStore{}
	svc := newTestService(catalogRepo, salesRepo, batches)

	file := buildMercadoLivreExport(t, [][]any{
		{"4001", "SKU-A", "Capa de Celular", "05 de março de 2024 14:30", "1", "R$ 50,00", "-R$ 5,00"},
	})

	_, err := svc.ImportMercadoLivre(context.Background(), file, "vendas.xlsx")
	require.Error(t, err)
	assert.Empty(t, batches.saved)
}

func TestImportTemplate(t *testing.T) {
	catalogRepo := newFakeCatalog(testProducts()...)
	salesRepo := &fakeSales{}
	svc := newTestService(catalogRepo, salesRepo, &fakeBatchStore{})

	// Two junk rows above the header exercise auto-detection.
	file := buildTemplate(t, 2, [][]any{
		{"SKU-A", "Capa de Celular", "5", "250,00", "25,00", "50,00"},
		{"SKU-B", "Película de Vidro", "0", "0", "0", "0"},
		{"", "Produto C", "2", "50,00", "5,00", "25,00"},
		{"SKU-Z", "Sem cadastro", "1", "10,00", "1,00", "10,00"},
	})

	summary, err := svc.ImportTemplate(context.Background(), file, "consolidado.xlsx")
	require.NoError(t, err)

	// Zero-quantity row is a placeholder, not a skip.
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.SkippedNoKey)
	assert.Equal(t, 1, summary.SkippedUnmatched)

	require.Len(t, salesRepo.inserted, 2)

	first := salesRepo.inserted[0]
	assert.Equal(t, sales.ChannelTemplate, first.Channel)
	// Template commission is already a positive deduction.
	assert.True(t, first.Commission.Equal(decimal.NewFromInt(25)), "commission %s", first.Commission)
	// Unit price is derived from revenue, not the sheet's average column.
	assert.True(t, first.UnitPrice.Equal(decimal.NewFromInt(50)), "unit price %s", first.UnitPrice)
	assert.True(t, first.ContributionMargin.Equal(decimal.NewFromInt(175)), "margin %s", first.ContributionMargin)
	assert.Nil(t, first.OrderNumber)
	assert.Nil(t, first.SaleDate)
}

func TestImportTemplate_HeaderNotFound(t *testing.T) {
	svc := newTestService(newFakeCatalog(), &fakeSales{}, &fakeBatchStore{})

	file := buildSheet(t, 0,
		[]string{"Coluna A", "Coluna B"},
		[][]any{{"x", "y"}},
	)

	_, err := svc.ImportTemplate(context.Background(), file, "consolidado.xlsx")
	require.Error(t, err)
	assert.True(t, apperror.IsImportFormat(err))
}

func TestImport_NewBatchPerInvocation(t *testing.T) {
	catalogRepo := newFakeCatalog(testProducts()...)
	salesRepo := &fakeSales{}
	svc := newTestService(catalogRepo, salesRepo, &fakeBatchStore{})

	times := []time.Time{
		time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 5, 14, 30, 1, 0, time.UTC),
	}
	var call int
	svc.now = func() time.Time {
		t := times[call]
		call++
		return t
	}

	row := [][]any{
		{"5001", "SKU-A", "Capa de Celular", "05 de março de 2024 14:30", "1", "R$ 50,00", "-R$ 5,00"},
	}

	s1, err := svc.ImportMercadoLivre(context.Background(), buildMercadoLivreExport(t, row), "a.xlsx")
	require.NoError(t, err)
	s2, err := svc.ImportMercadoLivre(context.Background(), buildMercadoLivreExport(t, row), "b.xlsx")
	require.NoError(t, err)

	assert.NotEqual(t, s1.BatchID, s2.BatchID)
	// Re-importing the same file duplicates the sales under a new batch.
	assert.Equal(t, 2, catalogRepo.decrements[1])
}
