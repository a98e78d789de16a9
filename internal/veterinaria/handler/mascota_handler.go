package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/veterinaria/dto"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// CreateMascota handles POST /mascotas/
func (h *Handler) CreateMascota(c *gin.Context) {
	var req dto.CreateMascotaRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create mascota")
		return
	}

	mascota := req.ToModel()
	if err := h.storage.CreateMascota(c.Request.Context(), mascota); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create mascota")
		return
	}

	c.JSON(http.StatusOK, mascota)
}

// ListMascotas handles GET /mascotas/
func (h *Handler) ListMascotas(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list mascotas")
		return
	}

	mascotas, err := h.storage.ListMascotas(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list mascotas")
		return
	}

	c.JSON(http.StatusOK, mascotas)
}

// GetMascota handles GET /mascotas/:id
func (h *Handler) GetMascota(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get mascota")
		return
	}

	mascota, err := h.storage.GetMascota(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get mascota")
		return
	}

	c.JSON(http.StatusOK, mascota)
}

// ListMascotasByPropietario handles GET /propietarios/:id/mascotas
func (h *Handler) ListMascotasByPropietario(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list mascotas")
		return
	}

	mascotas, err := h.storage.ListMascotasByPropietario(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list mascotas")
		return
	}

	c.JSON(http.StatusOK, mascotas)
}

// CreateConsulta handles POST /mascotas/:id/consultas
func (h *Handler) CreateConsulta(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create consulta")
		return
	}

	var req dto.CreateConsultaRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create consulta")
		return
	}

	consulta, err := req.ToModel(h.now())
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create consulta")
		return
	}

	if err := h.storage.CreateConsulta(c.Request.Context(), id, consulta); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create consulta")
		return
	}

	c.JSON(http.StatusOK, consulta)
}

// ListConsultas handles GET /mascotas/:id/consultas
func (h *Handler) ListConsultas(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list consultas")
		return
	}

	consultas, err := h.storage.ListConsultas(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list consultas")
		return
	}

	c.JSON(http.StatusOK, consultas)
}

// CreateDocumento handles POST /mascotas/:id/documentos
func (h *Handler) CreateDocumento(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create documento")
		return
	}

	var req dto.CreateDocumentoRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create documento")
		return
	}

	documento := req.ToModel()
	if err := h.storage.CreateDocumento(c.Request.Context(), id, documento); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create documento")
		return
	}

	c.JSON(http.StatusOK, documento)
}

// ListDocumentos handles GET /mascotas/:id/documentos
func (h *Handler) ListDocumentos(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list documentos")
		return
	}

	documentos, err := h.storage.ListDocumentos(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list documentos")
		return
	}

	c.JSON(http.StatusOK, documentos)
}
