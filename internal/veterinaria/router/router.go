package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/veterinaria/handler"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// ServiceName is reported by GET / and /health
const ServiceName = "Veterinaria Service"

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, checker httpx.HealthChecker) *gin.Engine {
	r := httpx.NewEngine(ServiceName, deps.Logger, checker)
	h := handler.NewHandler(deps)

	mascotas := r.Group("/mascotas")
	{
		mascotas.POST("/", h.CreateMascota)
		mascotas.GET("/", h.ListMascotas)
		mascotas.GET("/:id", h.GetMascota)
		mascotas.POST("/:id/consultas", h.CreateConsulta)
		mascotas.GET("/:id/consultas", h.ListConsultas)
		mascotas.POST("/:id/documentos", h.CreateDocumento)
		mascotas.GET("/:id/documentos", h.ListDocumentos)
		mascotas.POST("/:id/reportes/", h.GenerateMedicalReport)
	}

	r.GET("/propietarios/:id/mascotas", h.ListMascotasByPropietario)

	historias := r.Group("/historias-clinicas")
	{
		historias.POST("/", h.UploadHistoriaClinica)
		historias.GET("/task/:task_id", h.TaskStatus)
	}

	return r
}
