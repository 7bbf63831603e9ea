package sales

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"margem/internal/core/apperror"
	"margem/internal/domain/catalog"
)

type fakeRepo struct {
	inserted []SaleRecord
	byBatch  map[string][]SaleRecord
}

func (f *fakeRepo) Insert(ctx context.Context, sale *SaleRecord) error {
	sale.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *sale)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, saleID int64) (*SaleRecord, error) {
	return nil, apperror.NewNotFound("sale", saleID)
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]SaleRecord, error) {
	return nil, nil
}

func (f *fakeRepo) DeleteByBatch(ctx context.Context, batchID string) ([]SaleRecord, error) {
	return f.byBatch[batchID], nil
}

type fakeCatalogRepo struct {
	product    *catalog.Product
	decrements map[int64]int
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
	if f.decrements == nil {
		f.decrements = make(map[int64]int)
	}
	f.decrements[productID] += quantity
	return nil
}

func (f *fakeCatalogRepo) AdjustStock(ctx context.Context, productID int64, stock int, unitCost *decimal.Decimal) error {
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestCreate_DerivesCostAndMargin(t *testing.T) {
	repo := &fakeRepo{}
	catalogRepo := &fakeCatalogRepo{
		product: &catalog.Product{ID: 1, Name: "Capa", UnitCost: decimal.NewFromInt(10), Stock: 50},
	}
	svc := NewService(repo, catalogRepo, passthroughTx{})

	sale := &SaleRecord{
		ProductID:  1,
		Quantity:   3,
		Revenue:    decimal.NewFromInt(90),
		Commission: decimal.NewFromInt(9),
	}

	require.NoError(t, svc.Create(context.Background(), sale))

	assert.Equal(t, ChannelManual, sale.Channel)
	assert.True(t, sale.Cost.Equal(decimal.NewFromInt(30)), "cost %s", sale.Cost)
	// 90 - 30 - 9
	assert.True(t, sale.ContributionMargin.Equal(decimal.NewFromInt(51)), "margin %s", sale.ContributionMargin)
	assert.Equal(t, 3, catalogRepo.decrements[1])
	require.Len(t, repo.inserted, 1)
}

func TestCreate_UnknownProduct(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeCatalogRepo{}, passthroughTx{})

	sale := &SaleRecord{ProductID: 99, Quantity: 1}
	err := svc.Create(context.Background(), sale)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_NegativeQuantity(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeCatalogRepo{}, passthroughTx{})

	sale := &SaleRecord{ProductID: 1, Quantity: -1}
	err := svc.Create(context.Background(), sale)
	require.Error(t, err)
}

func TestRevertBatch_RestoresStock(t *testing.T) {
	repo := &fakeRepo{
		byBatch: map[string][]SaleRecord{
			"20240305-143000": {
				{ID: 1, ProductID: 1, Quantity: 2},
				{ID: 2, ProductID: 2, Quantity: 5},
			},
		},
	}
	catalogRepo := &fakeCatalogRepo{}
	svc := NewService(repo, catalogRepo, passthroughTx{})

	reverted, err := svc.RevertBatch(context.Background(), "20240305-143000")
	require.NoError(t, err)

	assert.Equal(t, 2, reverted)
	// Negative decrements restore the consumed stock.
	assert.Equal(t, -2, catalogRepo.decrements[1])
	assert.Equal(t, -5, catalogRepo.decrements[2])
}

func TestRevertBatch_UnknownBatch(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeCatalogRepo{}, passthroughTx{})

	_, err := svc.RevertBatch(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
