package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/peluqueria/dto"
	"github.com/cuongbtq/petstore/internal/peluqueria/model"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// CreateServicio handles POST /servicios/
func (h *Handler) CreateServicio(c *gin.Context) {
	var req dto.CreateServicioRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create servicio")
		return
	}
	if req.Precio.IsNegative() {
		httpx.WriteError(c, h.logger, apperr.New(apperr.ErrInvalidInput, "precio must not be negative"), "")
		return
	}

	servicio := req.ToModel()
	if err := h.storage.CreateServicio(c.Request.Context(), servicio); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create servicio")
		return
	}

	c.JSON(http.StatusOK, servicio)
}

// ListServicios handles GET /servicios/
func (h *Handler) ListServicios(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list servicios")
		return
	}

	servicios, err := h.storage.ListServicios(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list servicios")
		return
	}

	c.JSON(http.StatusOK, servicios)
}

// GetServicio handles GET /servicios/:id
func (h *Handler) GetServicio(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get servicio")
		return
	}

	servicio, err := h.storage.GetServicio(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get servicio")
		return
	}

	c.JSON(http.StatusOK, servicio)
}

// CreatePeluquero handles POST /peluqueros/
func (h *Handler) CreatePeluquero(c *gin.Context) {
	var req dto.CreatePeluqueroRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create peluquero")
		return
	}

	peluquero := &model.Peluquero{Nombre: req.Nombre, UserID: req.UserID}
	if err := h.storage.CreatePeluquero(c.Request.Context(), peluquero); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create peluquero")
		return
	}

	c.JSON(http.StatusOK, peluquero)
}

// ListPeluqueros handles GET /peluqueros/
func (h *Handler) ListPeluqueros(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list peluqueros")
		return
	}

	peluqueros, err := h.storage.ListPeluqueros(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list peluqueros")
		return
	}

	c.JSON(http.StatusOK, peluqueros)
}

// GetPeluquero handles GET /peluqueros/:id
func (h *Handler) GetPeluquero(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get peluquero")
		return
	}

	peluquero, err := h.storage.GetPeluquero(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get peluquero")
		return
	}

	c.JSON(http.StatusOK, peluquero)
}

// CreateTurno handles POST /turnos/
func (h *Handler) CreateTurno(c *gin.Context) {
	var req dto.CreateTurnoRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create turno")
		return
	}

	turno, err := req.ToModel()
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create turno")
		return
	}

	if err := h.storage.CreateTurno(c.Request.Context(), turno); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create turno")
		return
	}

	c.JSON(http.StatusOK, turno)
}

// ListTurnos handles GET /turnos/
func (h *Handler) ListTurnos(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list turnos")
		return
	}

	turnos, err := h.storage.ListTurnos(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list turnos")
		return
	}

	c.JSON(http.StatusOK, turnos)
}

// GetTurno handles GET /turnos/:id
func (h *Handler) GetTurno(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get turno")
		return
	}

	turno, err := h.storage.GetTurno(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get turno")
		return
	}

	c.JSON(http.StatusOK, turno)
}
