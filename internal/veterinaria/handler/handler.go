package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/veterinaria/model"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// Storage is the persistence the veterinaria handlers need
type Storage interface {
	CreateMascota(ctx context.Context, m *model.Mascota) error
	GetMascota(ctx context.Context, id int64) (*model.Mascota, error)
	ListMascotas(ctx context.Context, page httpx.Page) ([]model.Mascota, error)
	ListMascotasByPropietario(ctx context.Context, propietarioID int64) ([]model.Mascota, error)
	CreateConsulta(ctx context.Context, mascotaID int64, c *model.Consulta) error
	ListConsultas(ctx context.Context, mascotaID int64) ([]model.Consulta, error)
	ConsultaIDs(ctx context.Context, mascotaID int64) ([]int64, error)
	CreateDocumento(ctx context.Context, mascotaID int64, d *model.Documento) error
	ListDocumentos(ctx context.Context, mascotaID int64) ([]model.Documento, error)
}

// Jobs submits background jobs and reports their status
type Jobs interface {
	Submit(ctx context.Context, op jobs.Operation, args ...any) (jobs.Handle, error)
	Status(ctx context.Context, id string) jobs.StatusView
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Storage       Storage
	Jobs          Jobs
	UploadDir     string
	MaxUploadSize int64

	// Now defaults to time.Now
	Now func() time.Time
}

// Handler serves the veterinaria endpoints
type Handler struct {
	logger        *slog.Logger
	storage       Storage
	jobs          Jobs
	uploadDir     string
	maxUploadSize int64
	now           func() time.Time
}

// NewHandler creates a new Handler instance
func NewHandler(deps *Dependencies) *Handler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		logger:        deps.Logger,
		storage:       deps.Storage,
		jobs:          deps.Jobs,
		uploadDir:     deps.UploadDir,
		maxUploadSize: deps.MaxUploadSize,
		now:           now,
	}
}
