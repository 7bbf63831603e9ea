package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
	"margem/internal/domain/catalog"
	"margem/internal/infrastructure/http/v1/dto"
)

// CatalogHandler handles HTTP requests for the product catalog.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /products
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	unitCost, err := dto.ParseMoney(req.UnitCost)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unitCost").WithDetail("value", req.UnitCost))
		return
	}

	product := &catalog.Product{
		Name:     req.Name,
		SKU:      req.SKU,
		UnitCost: unitCost,
		Stock:    req.Stock,
		MinStock: req.MinStock,
	}

	if err := h.service.Create(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, product.ID)
}

// Get handles GET /products/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(product))
}

// List handles GET /products
func (h *CatalogHandler) List(c *gin.Context) {
	var req dto.ListProductsQuery
	if !h.BindQuery(c, &req) {
		return
	}

	products, err := h.service.List(c.Request.Context(), catalog.ListFilter{
		NameContains: req.Name,
		LowStockOnly: req.LowStock,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProducts(products))
}

// Update handles PUT /products/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	unitCost, err := dto.ParseMoney(req.UnitCost)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unitCost").WithDetail("value", req.UnitCost))
		return
	}

	product := &catalog.Product{
		ID:       id,
		Name:     req.Name,
		SKU:      req.SKU,
		UnitCost: unitCost,
		Stock:    req.Stock,
		MinStock: req.MinStock,
	}

	if err := h.service.Update(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "product updated")
}

// Delete handles DELETE /products/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustStock handles POST /products/:id/adjust-stock
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var unitCost *decimal.Decimal
	if req.UnitCost != nil {
		parsed, err := dto.ParseMoney(*req.UnitCost)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid unitCost").WithDetail("value", *req.UnitCost))
			return
		}
		unitCost = &parsed
	}

	if err := h.service.AdjustStock(c.Request.Context(), id, req.Stock, unitCost); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "stock adjusted")
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/adjust-stock", h.AdjustStock)
}
