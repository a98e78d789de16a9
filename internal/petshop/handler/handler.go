package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/internal/petshop/model"
	"github.com/cuongbtq/petstore/shared/httpx"
)

// Storage is the persistence the petshop handlers need
type Storage interface {
	CreateCategoria(ctx context.Context, c *model.Categoria) error
	ListCategorias(ctx context.Context, page httpx.Page) ([]model.Categoria, error)
	CreateProveedor(ctx context.Context, p *model.Proveedor) error
	ListProveedores(ctx context.Context, page httpx.Page) ([]model.Proveedor, error)
	CreateProducto(ctx context.Context, p *model.Producto) error
	GetProducto(ctx context.Context, id int64) (*model.Producto, error)
	ListProductos(ctx context.Context, page httpx.Page) ([]model.Producto, error)
	ListProductosByCategoria(ctx context.Context, categoriaID int64) ([]model.Producto, error)
	ListProductosByProveedor(ctx context.Context, proveedorID int64) ([]model.Producto, error)
	RegistrarVenta(ctx context.Context, items []model.VentaItem) (*model.Venta, error)
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
}

// Handler serves the petshop endpoints
type Handler struct {
	logger        *slog.Logger
	storage       Storage
	jobs          Jobs
	uploadDir     string
	maxUploadSize int64
}

// NewHandler creates a new Handler instance
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		logger:        deps.Logger,
		storage:       deps.Storage,
		jobs:          deps.Jobs,
		uploadDir:     deps.UploadDir,
		maxUploadSize: deps.MaxUploadSize,
	}
}
