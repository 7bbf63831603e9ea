package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"margem/internal/core/apperror"
	"margem/internal/domain/importer"
	"margem/internal/domain/sales"
	"margem/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles HTTP requests for sale records.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sales (manual entry)
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	unitPrice, err := dto.ParseMoney(req.UnitPrice)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unitPrice").WithDetail("value", req.UnitPrice))
		return
	}
	revenue, err := dto.ParseMoney(req.Revenue)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid revenue").WithDetail("value", req.Revenue))
		return
	}

	commission := decimal.Zero
	if req.Commission != "" {
		commission, err = dto.ParseMoney(req.Commission)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid commission").WithDetail("value", req.Commission))
			return
		}
	}

	var saleDate *time.Time
	if req.SaleDate != nil {
		if t, ok := importer.ParseDate(*req.SaleDate); ok {
			saleDate = &t
		}
	}

	sale := &sales.SaleRecord{
		ProductID:   req.ProductID,
		SaleDate:    saleDate,
		Quantity:    req.Quantity,
		UnitPrice:   unitPrice,
		Revenue:     revenue,
		Commission:  commission,
		Channel:     sales.ChannelManual,
		OrderNumber: req.OrderNumber,
	}

	if err := h.service.Create(c.Request.Context(), sale); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sale.ID)
}

// Get handles GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// List handles GET /sales
func (h *SalesHandler) List(c *gin.Context) {
	var req dto.ListSalesQuery
	if !h.BindQuery(c, &req) {
		return
	}

	filter := sales.ListFilter{
		ProductID: req.ProductID,
		BatchID:   req.BatchID,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}

	if req.Channel != nil {
		ch := sales.Channel(*req.Channel)
		filter.Channel = &ch
	}
	if req.FromDate != nil {
		if t, ok := importer.ParseDate(*req.FromDate); ok {
			filter.FromDate = &t
		}
	}
	if req.ToDate != nil {
		if t, ok := importer.ParseDate(*req.ToDate); ok {
			filter.ToDate = &t
		}
	}

	records, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSales(records))
}

// RevertBatch handles DELETE /sales/batches/:batchId
func (h *SalesHandler) RevertBatch(c *gin.Context) {
	batchID := c.Param("batchId")
	if batchID == "" {
		h.Error(c, apperror.NewValidation("batchId is required"))
		return
	}

	reverted, err := h.service.RevertBatch(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RevertBatchResponse{BatchID: batchID, Reverted: reverted})
}

// RegisterRoutes registers sales routes.
func (h *SalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.DELETE("/batches/:batchId", h.RevertBatch)
}
