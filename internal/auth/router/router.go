package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/internal/auth/handler"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// ServiceName is reported by GET / and /health
const ServiceName = "Auth Service"

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, checker httpx.HealthChecker) *gin.Engine {
	r := httpx.NewEngine(ServiceName, deps.Logger, checker)
	h := handler.NewHandler(deps)

	r.POST("/token", h.Login)

	users := r.Group("/users")
	{
		users.POST("/", h.CreateUser)
		users.GET("/", h.ListUsers)
		users.GET("/me", h.RequireAuth(), h.CurrentUser)
		users.GET("/:id", h.GetUser)
	}

	roles := r.Group("/roles")
	{
		roles.POST("/", h.CreateRole)
		roles.GET("/", h.ListRoles)
	}

	return r
}
