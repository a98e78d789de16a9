package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/peluqueria/handler"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// ServiceName is reported by GET / and /health
const ServiceName = "Peluqueria Service"

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, checker httpx.HealthChecker) *gin.Engine {
	r := httpx.NewEngine(ServiceName, deps.Logger, checker)
	h := handler.NewHandler(deps)

	turnos := r.Group("/turnos")
	{
		turnos.POST("/", h.CreateTurno)
		turnos.GET("/", h.ListTurnos)
		turnos.GET("/:id", h.GetTurno)
	}

	peluqueros := r.Group("/peluqueros")
	{
		peluqueros.POST("/", h.CreatePeluquero)
		peluqueros.GET("/", h.ListPeluqueros)
		peluqueros.GET("/:id", h.GetPeluquero)
	}

	servicios := r.Group("/servicios")
	{
		servicios.POST("/", h.CreateServicio)
		servicios.GET("/", h.ListServicios)
		servicios.GET("/:id", h.GetServicio)
	}

	return r
}
