package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/veterinaria/dto"
	"github.com/cuongbtq/petstore/internal/veterinaria/model"
	"github.com/cuongbtq/petstore/shared/httpx"
)

const defaultDocumentType = "historial"

// UploadHistoriaClinica handles POST /historias-clinicas/. The file is
// optional. When mascota_id is given the pet must exist, and a stored file is
// also recorded as a documento of that pet. On dispatch failure the stored
// file is removed and no documento is recorded.
func (h *Handler) UploadHistoriaClinica(c *gin.Context) {
	documentType := c.DefaultPostForm("document_type", defaultDocumentType)
	if documentType == "" {
		documentType = defaultDocumentType
	}

	var mascotaID int64
	if raw := c.PostForm("mascota_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.BadRequest(c, "mascota_id must be a positive integer")
			return
		}
		mascotaID = id
	}

	if mascotaID != 0 {
		if _, err := h.storage.GetMascota(c.Request.Context(), mascotaID); err != nil {
			httpx.WriteError(c, h.logger, err, "Failed to get mascota")
			return
		}
	}

	upload, err := httpx.SaveUpload(c, "file", h.uploadDir, h.maxUploadSize)
	if errors.Is(err, httpx.ErrNoFile) {
		upload, err = &httpx.Upload{}, nil
	}
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to store upload")
		return
	}

	echo := map[string]any{
		"filename":      upload.Filename,
		"document_type": documentType,
		"message":       "Documento recibido, procesando OCR.",
	}

	handle, err := h.jobs.Submit(c.Request.Context(), jobs.OpMedicalDocumentOCR, upload.Path, documentType)

	h.logger.Info("Medical document received",
		slog.String("filename", upload.Filename),
		slog.String("document_type", documentType),
		slog.Int64("size", upload.Size),
		slog.String("task_id", handle.TaskID),
	)

	if err != nil {
		h.discardUpload(upload)
		c.JSON(http.StatusOK, jobs.SubmissionBody(handle, err, echo))
		return
	}

	// the documento is recorded only once the OCR job is queued
	if mascotaID != 0 && upload.Path != "" {
		documento := &model.Documento{
			NombreArchivo: upload.Filename,
			URLArchivo:    upload.Path,
			TipoDocumento: &documentType,
		}
		if err := h.storage.CreateDocumento(c.Request.Context(), mascotaID, documento); err != nil {
			httpx.WriteError(c, h.logger, err, "Failed to record documento")
			return
		}
		echo["documento_id"] = documento.ID
	}

	c.JSON(http.StatusOK, jobs.SubmissionBody(handle, nil, echo))
}

// discardUpload removes a stored file no job or documento refers to.
func (h *Handler) discardUpload(upload *httpx.Upload) {
	if err := upload.Remove(); err != nil {
		h.logger.Warn("Failed to remove upload",
			slog.String("path", upload.Path),
			slog.Any("error", err),
		)
	}
}

// TaskStatus handles GET /historias-clinicas/task/:task_id
func (h *Handler) TaskStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobs.Status(c.Request.Context(), c.Param("task_id")))
}

// GenerateMedicalReport handles POST /mascotas/:id/reportes/
func (h *Handler) GenerateMedicalReport(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to generate report")
		return
	}

	var q dto.MedicalReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.BadRequest(c, "consultation_ids must be a list of integers")
		return
	}

	// also confirms the pet exists
	all, err := h.storage.ConsultaIDs(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to generate report")
		return
	}
	ids := q.ConsultationIDs
	if len(ids) == 0 {
		ids = all
	}

	handle, err := h.jobs.Submit(c.Request.Context(), jobs.OpMedicalReportGeneration, id, ids)
	c.JSON(http.StatusOK, jobs.SubmissionBody(handle, err, map[string]any{
		"pet_id":           id,
		"consultation_ids": ids,
	}))
}
