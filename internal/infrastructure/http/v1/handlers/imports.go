package handlers

import (
	"github.com/gin-gonic/gin"

	"margem/internal/core/apperror"
	"margem/internal/domain/importer"
	"margem/internal/infrastructure/http/v1/dto"
	"margem/internal/infrastructure/storage/postgres"
)

// maxUploadSize caps the accepted spreadsheet size.
const maxUploadSize = 20 << 20 // 20 MiB

// ImportsHandler handles spreadsheet import requests.
type ImportsHandler struct {
	*BaseHandler
	service *importer.Service
	batches *postgres.ImportBatchStore
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(base *BaseHandler, service *importer.Service, batches *postgres.ImportBatchStore) *ImportsHandler {
	return &ImportsHandler{
		BaseHandler: base,
		service:     service,
		batches:     batches,
	}
}

// MercadoLivre handles POST /imports/mercado-livre
func (h *ImportsHandler) MercadoLivre(c *gin.Context) {
	h.runImport(c, h.service.ImportMercadoLivre)
}

// Template handles POST /imports/template
func (h *ImportsHandler) Template(c *gin.Context) {
	h.runImport(c, h.service.ImportTemplate)
}

func (h *ImportsHandler) runImport(c *gin.Context, importFn importer.ImportFunc) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("multipart field 'file' is required"))
		return
	}
	if fileHeader.Size > maxUploadSize {
		h.Error(c, apperror.NewValidation("file exceeds upload size limit").
			WithDetail("size", fileHeader.Size))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read uploaded file"))
		return
	}
	defer file.Close()

	summary, err := importFn(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromImportSummary(summary))
}

// ListBatches handles GET /imports/batches
func (h *ImportsHandler) ListBatches(c *gin.Context) {
	var req dto.ListQuery
	if !h.BindQuery(c, &req) {
		return
	}

	batches, err := h.batches.ListBatches(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, batches)
}

// GetBatchRows handles GET /imports/batches/:batchId/rows
func (h *ImportsHandler) GetBatchRows(c *gin.Context) {
	batchID := c.Param("batchId")
	if batchID == "" {
		h.Error(c, apperror.NewValidation("batchId is required"))
		return
	}

	rows, err := h.batches.GetBatchRows(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rows)
}

// RegisterRoutes registers import routes.
func (h *ImportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/mercado-livre", h.MercadoLivre)
	rg.POST("/template", h.Template)
	rg.GET("/batches", h.ListBatches)
	rg.GET("/batches/:batchId/rows", h.GetBatchRows)
}
