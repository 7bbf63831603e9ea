package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"margem/internal/core/apperror"
	"margem/internal/domain/catalog"
	"margem/internal/domain/sales"
	"margem/internal/infrastructure/http/v1/middleware"
)

type fakeSalesRepo struct {
	inserted []sales.SaleRecord
}

func (f *fakeSalesRepo) Insert(ctx context.Context, sale *sales.SaleRecord) error {
	sale.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *sale)
	return nil
}

func (f *fakeSalesRepo) GetByID(ctx context.Context, saleID int64) (*sales.SaleRecord, error) {
	return nil, apperror.NewNotFound("sale", saleID)
}

func (f *fakeSalesRepo) List(ctx context.Context, filter sales.ListFilter) ([]sales.SaleRecord, error) {
	return nil, nil
}

func (f *fakeSalesRepo) DeleteByBatch(ctx context.Context, batchID string) ([]sales.SaleRecord, error) {
	return nil, nil
}

type fakeCatalogRepo struct {
	product *catalog.Product
}

func (f *fakeCatalogRepo) Create(ctx context.Context, p *catalog.Product) error { return nil }
func (f *fakeCatalogRepo) Update(ctx context.Context, p *catalog.Product) error { return nil }
func (f *fakeCatalogRepo) Delete(ctx context.Context, productID int64) error    { return nil }

func (f *fakeCatalogRepo) GetByID(ctx context.Context, productID int64) (*catalog.Product, error) {
	if f.product != nil && f.product.ID == productID {
		return f.product, nil
	}
	return nil, apperror.NewNotFound("product", productID)
}

func (f *fakeCatalogRepo) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return nil, apperror.NewNotFound("product", sku)
}

func (f *fakeCatalogRepo) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	return nil, apperror.NewNotFound("product", name)
}

func (f *fakeCatalogRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return nil
}

func (f *fakeCatalogRepo) AdjustStock(ctx context.Context, productID int64, stock int, unitCost *decimal.Decimal) error {
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newSalesTestRouter(salesRepo *fakeSalesRepo, catalogRepo *fakeCatalogRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	svc := sales.NewService(salesRepo, catalogRepo, passthroughTx{})
	handler := NewSalesHandler(NewBaseHandler(), svc)
	handler.RegisterRoutes(router.Group("/sales"))

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSalesCreate(t *testing.T) {
	salesRepo := &fakeSalesRepo{}
	catalogRepo := &fakeCatalogRepo{
		product: &catalog.Product{ID: 1, Name: "Capa", UnitCost: decimal.NewFromInt(10), Stock: 50},
	}
	router := newSalesTestRouter(salesRepo, catalogRepo)

	rec := postJSON(t, router, "/sales", gin.H{
		"productId":  1,
		"quantity":   2,
		"unitPrice":  "45.00",
		"revenue":    "90.00",
		"commission": "9.00",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, salesRepo.inserted, 1)

	sale := salesRepo.inserted[0]
	assert.True(t, sale.Commission.Equal(decimal.NewFromInt(9)), "commission %s", sale.Commission)
	assert.True(t, sale.Cost.Equal(decimal.NewFromInt(20)), "cost %s", sale.Cost)
	// 90 - 20 - 9
	assert.True(t, sale.ContributionMargin.Equal(decimal.NewFromInt(61)), "margin %s", sale.ContributionMargin)
	assert.Equal(t, sales.ChannelManual, sale.Channel)
}

func TestSalesCreate_CommissionOptional(t *testing.T) {
	salesRepo := &fakeSalesRepo{}
	catalogRepo := &fakeCatalogRepo{
		product: &catalog.Product{ID: 1, Name: "Capa", UnitCost: decimal.NewFromInt(10)},
	}
	router := newSalesTestRouter(salesRepo, catalogRepo)

	rec := postJSON(t, router, "/sales", gin.H{
		"productId": 1,
		"quantity":  1,
		"unitPrice": "30.00",
		"revenue":   "30.00",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, salesRepo.inserted, 1)
	assert.True(t, salesRepo.inserted[0].Commission.IsZero())
}

func TestSalesCreate_InvalidCommission(t *testing.T) {
	router := newSalesTestRouter(&fakeSalesRepo{}, &fakeCatalogRepo{})

	rec := postJSON(t, router, "/sales", gin.H{
		"productId":  1,
		"quantity":   1,
		"unitPrice":  "30.00",
		"revenue":    "30.00",
		"commission": "não sei",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesCreate_UnknownProduct(t *testing.T) {
	router := newSalesTestRouter(&fakeSalesRepo{}, &fakeCatalogRepo{})

	rec := postJSON(t, router, "/sales", gin.H{
		"productId": 42,
		"quantity":  1,
		"unitPrice": "30.00",
		"revenue":   "30.00",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
