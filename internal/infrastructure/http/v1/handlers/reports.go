package handlers

import (
	"github.com/gin-gonic/gin"

	"margem/internal/domain/importer"
	"margem/internal/domain/reports"
	"margem/internal/domain/sales"
	"margem/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for operator reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ProfitSummary handles GET /reports/profit
func (h *ReportsHandler) ProfitSummary(c *gin.Context) {
	filter, ok := h.profitFilter(c)
	if !ok {
		return
	}

	summary, err := h.service.GetProfitSummary(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProfitSummary(summary))
}

// ProfitLines handles GET /reports/profit/lines
func (h *ReportsHandler) ProfitLines(c *gin.Context) {
	filter, ok := h.profitFilter(c)
	if !ok {
		return
	}

	lines, err := h.service.GetProfitLines(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProfitLines(lines))
}

// Stock handles GET /reports/stock
func (h *ReportsHandler) Stock(c *gin.Context) {
	lowStockOnly := c.Query("lowStock") == "true"

	lines, err := h.service.GetStockReport(c.Request.Context(), lowStockOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockLines(lines))
}

func (h *ReportsHandler) profitFilter(c *gin.Context) (reports.ProfitFilter, bool) {
	var req dto.ProfitReportQuery
	if !h.BindQuery(c, &req) {
		return reports.ProfitFilter{}, false
	}

	filter := reports.ProfitFilter{BatchID: req.BatchID}
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
	return filter, true
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profit", h.ProfitSummary)
	rg.GET("/profit/lines", h.ProfitLines)
	rg.GET("/stock", h.Stock)
}
