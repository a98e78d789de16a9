package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/petshop/dto"
	"github.com/cuongbtq/petstore/internal/petshop/model"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// CreateCategoria handles POST /categorias/
func (h *Handler) CreateCategoria(c *gin.Context) {
	var req dto.CreateCategoriaRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create categoria")
		return
	}

	categoria := &model.Categoria{Nombre: req.Nombre}
	if err := h.storage.CreateCategoria(c.Request.Context(), categoria); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create categoria")
		return
	}

	c.JSON(http.StatusOK, categoria)
}

// ListCategorias handles GET /categorias/
func (h *Handler) ListCategorias(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list categorias")
		return
	}

	categorias, err := h.storage.ListCategorias(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list categorias")
		return
	}

	c.JSON(http.StatusOK, categorias)
}

// ListProductosByCategoria handles GET /categorias/:id/productos
func (h *Handler) ListProductosByCategoria(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list productos")
		return
	}

	productos, err := h.storage.ListProductosByCategoria(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list productos")
		return
	}

	c.JSON(http.StatusOK, productos)
}

// CreateProveedor handles POST /proveedores/
func (h *Handler) CreateProveedor(c *gin.Context) {
	var req dto.CreateProveedorRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create proveedor")
		return
	}

	proveedor := req.ToModel()
	if err := h.storage.CreateProveedor(c.Request.Context(), proveedor); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create proveedor")
		return
	}

	c.JSON(http.StatusOK, proveedor)
}

// ListProveedores handles GET /proveedores/
func (h *Handler) ListProveedores(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list proveedores")
		return
	}

	proveedores, err := h.storage.ListProveedores(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list proveedores")
		return
	}

	c.JSON(http.StatusOK, proveedores)
}

// ListProductosByProveedor handles GET /proveedores/:id/productos
func (h *Handler) ListProductosByProveedor(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list productos")
		return
	}

	productos, err := h.storage.ListProductosByProveedor(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list productos")
		return
	}

	c.JSON(http.StatusOK, productos)
}

// CreateProducto handles POST /productos/
func (h *Handler) CreateProducto(c *gin.Context) {
	var req dto.CreateProductoRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create producto")
		return
	}
	if req.Precio.IsNegative() {
		httpx.WriteError(c, h.logger, apperr.New(apperr.ErrInvalidInput, "precio must not be negative"), "")
		return
	}

	producto := req.ToModel()
	if err := h.storage.CreateProducto(c.Request.Context(), producto); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to create producto")
		return
	}

	c.JSON(http.StatusOK, producto)
}

// ListProductos handles GET /productos/
func (h *Handler) ListProductos(c *gin.Context) {
	page, err := httpx.BindPage(c)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list productos")
		return
	}

	productos, err := h.storage.ListProductos(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to list productos")
		return
	}

	c.JSON(http.StatusOK, productos)
}

// GetProducto handles GET /productos/:id
func (h *Handler) GetProducto(c *gin.Context) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get producto")
		return
	}

	producto, err := h.storage.GetProducto(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to get producto")
		return
	}

	c.JSON(http.StatusOK, producto)
}

// RegistrarVenta handles POST /pos/venta/
func (h *Handler) RegistrarVenta(c *gin.Context) {
	var req dto.VentaRequest
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to register venta")
		return
	}

	venta, err := h.storage.RegistrarVenta(c.Request.Context(), req.ToModel())
	if err != nil {
		httpx.WriteError(c, h.logger, err, "Failed to register venta")
		return
	}

	c.JSON(http.StatusOK, dto.VentaResponse{
		Status: "Venta registrada y stock actualizado.",
		Venta:  venta,
	})
}
