package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/petstore/internal/peluqueria/model"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// Storage is the persistence the peluqueria handlers need
type Storage interface {
	CreateServicio(ctx context.Context, s *model.Servicio) error
	GetServicio(ctx context.Context, id int64) (*model.Servicio, error)
	ListServicios(ctx context.Context, page httpx.Page) ([]model.Servicio, error)
	CreatePeluquero(ctx context.Context, p *model.Peluquero) error
	GetPeluquero(ctx context.Context, id int64) (*model.Peluquero, error)
	ListPeluqueros(ctx context.Context, page httpx.Page) ([]model.Peluquero, error)
	CreateTurno(ctx context.Context, t *model.Turno) error
	GetTurno(ctx context.Context, id int64) (*model.Turno, error)
	ListTurnos(ctx context.Context, page httpx.Page) ([]model.Turno, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Storage Storage
}

type Handler struct {
	logger  *slog.Logger
	storage Storage
}

// NewHandler creates a new Handler instance
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		logger:  deps.Logger,
		storage: deps.Storage,
	}
}
