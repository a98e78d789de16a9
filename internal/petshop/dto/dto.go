package dto

import (
	"github.com/greatcloak/decimal"

	"github.com/cuongbtq/petstore/internal/petshop/model"
)

type CreateCategoriaRequest struct {
	Nombre string `json:"nombre" binding:"required"`
}

type CreateProveedorRequest struct {
	Nombre   string  `json:"nombre" binding:"required"`
	Contacto *string `json:"contacto"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

func (r *CreateProveedorRequest) ToModel() *model.Proveedor {
	return &model.Proveedor{
		Nombre:   r.Nombre,
		Contacto: r.Contacto,
		Telefono: r.Telefono,
		Email:    r.Email,
	}
}

type CreateProductoRequest struct {
	Nombre      string          `json:"nombre" binding:"required"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock" binding:"gte=0"`
	CategoriaID *int64          `json:"categoria_id"`
	ProveedorID *int64          `json:"proveedor_id"`
}

func (r *CreateProductoRequest) ToModel() *model.Producto {
	return &model.Producto{
		Nombre:      r.Nombre,
		Descripcion: r.Descripcion,
		Precio:      r.Precio,
		Stock:       r.Stock,
		CategoriaID: r.CategoriaID,
		ProveedorID: r.ProveedorID,
	}
}

type VentaItemRequest struct {
	ProductoID int64 `json:"producto_id" binding:"required"`
	Cantidad   int   `json:"cantidad" binding:"required,gt=0"`
}

type VentaRequest struct {
	Items []VentaItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r *VentaRequest) ToModel() []model.VentaItem {
	items := make([]model.VentaItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = model.VentaItem{ProductoID: it.ProductoID, Cantidad: it.Cantidad}
	}
	return items
}

type VentaResponse struct {
	Status string `json:"status"`
	*model.Venta
}

// PriceUpdatesRequest keeps each update as a raw map; entries missing fields
// are reported by the price-batch-update task, not rejected here.
type PriceUpdatesRequest struct {
	Updates []map[string]any `json:"updates" binding:"required"`
}

type InventoryReportQuery struct {
	StoreID    *int64 `form:"store_id" binding:"required"`
	ReportType string `form:"report_type"`
}
