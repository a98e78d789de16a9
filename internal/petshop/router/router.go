package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/petshop/handler"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// ServiceName is reported by GET / and /health
const ServiceName = "Petshop Service"

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, checker httpx.HealthChecker) *gin.Engine {
	r := httpx.NewEngine(ServiceName, deps.Logger, checker)
	h := handler.NewHandler(deps)

	productos := r.Group("/productos")
	{
		productos.POST("/", h.CreateProducto)
		productos.GET("/", h.ListProductos)
		productos.GET("/:id", h.GetProducto)
		productos.POST("/precios/", h.UpdatePrecios)
	}

	categorias := r.Group("/categorias")
	{
		categorias.POST("/", h.CreateCategoria)
		categorias.GET("/", h.ListCategorias)
		categorias.GET("/:id/productos", h.ListProductosByCategoria)
	}

	proveedores := r.Group("/proveedores")
	{
		proveedores.POST("/", h.CreateProveedor)
		proveedores.GET("/", h.ListProveedores)
		proveedores.GET("/:id/productos", h.ListProductosByProveedor)
	}

	r.POST("/pos/venta/", h.RegistrarVenta)
	r.POST("/upload-inventario/", h.UploadInventario)
	r.POST("/reportes/inventario/", h.GenerateInventoryReport)
	r.GET("/tasks/:task_id", h.TaskStatus)

	return r
}
