// Package httpx holds the gin plumbing shared by the HTTP services: the base
// engine, error rendering, pagination and path parameter parsing.
package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/petstore/shared/apperr"
)

const (
	// DefaultLimit is used when a list request carries no limit
	DefaultLimit = 100
	// MaxLimit caps the page size of list requests
	MaxLimit = 1000
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewEngine returns a gin engine with recovery, request logging, CORS and the
// two routes every service answers: GET / and GET /health.
func NewEngine(serviceName string, logger *slog.Logger, checker HealthChecker) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))
	r.Use(CORSMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName})
	})

	r.GET("/health", func(c *gin.Context) {
		if checker != nil {
			if err := checker.HealthCheck(c.Request.Context()); err != nil {
				logger.Warn("Health check failed", slog.Any("error", err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": serviceName,
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	return r
}

// WriteError renders err as {"detail": message} with the status mapped from
// its kind. Unmapped errors are logged and hidden behind fallback.
func WriteError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback,
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		c.JSON(status, gin.H{"detail": fallback})
		return
	}
	c.JSON(status, gin.H{"detail": apperr.Message(err, err.Error())})
}

// BadRequest renders a 400 with the given detail.
func BadRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

// Page is the offset pagination shared by every list endpoint.
type Page struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

// BindPage reads skip/limit from the query string and applies defaults.
func BindPage(c *gin.Context) (Page, error) {
	var p Page
	if err := c.ShouldBindQuery(&p); err != nil {
		return Page{}, apperr.Wrap(apperr.ErrInvalidInput, "Invalid pagination parameters", err)
	}
	if p.Skip < 0 {
		return Page{}, apperr.New(apperr.ErrInvalidInput, "skip must not be negative")
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.ErrInvalidInput, name+" must be a positive integer")
	}
	return id, nil
}

// BindJSON binds the request body, turning binding failures into ErrInvalidInput.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Wrap(apperr.ErrInvalidInput, "Invalid request body", err)
	}
	return nil
}

