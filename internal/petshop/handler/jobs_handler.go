package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/petshop/dto"
	"github.com/cuongbtq/petstore/shared/httpx"
)

const defaultReportType = "stock_low"

// inventoryFileType maps an upload name to the file type the inventory task expects
func inventoryFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls", ".xlsx":
		return "excel"
	default:
		return "csv"
	}
}

// UploadInventario handles POST /upload-inventario/
func (h *Handler) UploadInventario(c *gin.Context) {
	upload, err := httpx.SaveUpload(c, "file", h.uploadDir, h.maxUploadSize)
	if errors.Is(err, httpx.ErrNoFile) {
		httpx.BadRequest(c, "file is required")
		return
	}
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to store upload")
		return
	}

	fileType := inventoryFileType(upload.Filename)
	handle, err := h.jobs.Submit(c.Request.Context(), jobs.OpInventoryFileProcessing, upload.Path, fileType)

	h.logger.Info("Inventory upload received",
		slog.String("filename", upload.Filename),
		slog.String("file_type", fileType),
		slog.Int64("size", upload.Size),
		slog.String("task_id", handle.TaskID),
	)
	if err != nil {
		if rmErr := upload.Remove(); rmErr != nil {
			h.logger.Warn("Failed to remove upload",
				slog.String("path", upload.Path),
				slog.Any("error", rmErr),
			)
		}
	}

	c.JSON(http.StatusOK, jobs.SubmissionBody(handle, err, map[string]any{
		"filename":  upload.Filename,
		"file_type": fileType,
		"message":   "Archivo recibido, pendiente de procesamiento.",
	}))
}

// UpdatePrecios handles POST /productos/precios/
func (h *Handler) UpdatePrecios(c *gin.Context) {
	var req dto.PriceUpdatesRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to submit price updates")
		return
	}

	handle, err := h.jobs.Submit(c.Request.Context(), jobs.OpPriceBatchUpdate, req.Updates)
	c.JSON(http.StatusOK, jobs.SubmissionBody(handle, err, map[string]any{
		"total_updates": len(req.Updates),
	}))
}

// GenerateInventoryReport handles POST /reportes/inventario/
func (h *Handler) GenerateInventoryReport(c *gin.Context) {
	var q dto.InventoryReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.BadRequest(c, "store_id is required and must be an integer")
		return
	}
	if q.ReportType == "" {
		q.ReportType = defaultReportType
	}

	storeID := *q.StoreID

	handle, err := h.jobs.Submit(c.Request.Context(), jobs.OpInventoryReportGeneration, storeID, q.ReportType)
	c.JSON(http.StatusOK, jobs.SubmissionBody(handle, err, map[string]any{
		"store_id":    storeID,
		"report_type": q.ReportType,
	}))
}

// TaskStatus handles GET /tasks/:task_id
func (h *Handler) TaskStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobs.Status(c.Request.Context(), c.Param("task_id")))
}
