package model

import "github.com/greatcloak/decimal"

type Categoria struct {
	ID     int64  `db:"id" json:"id"`
	Nombre string `db:"nombre" json:"nombre"`
}

type Proveedor struct {
	ID       int64   `db:"id" json:"id"`
	Nombre   string  `db:"nombre" json:"nombre"`
	Contacto *string `db:"contacto" json:"contacto"`
	Telefono *string `db:"telefono" json:"telefono"`
	Email    *string `db:"email" json:"email"`
}

type Producto struct {
	ID          int64           `db:"id" json:"id"`
	Nombre      string          `db:"nombre" json:"nombre"`
	Descripcion *string         `db:"descripcion" json:"descripcion"`
	Precio      decimal.Decimal `db:"precio" json:"precio"`
	Stock       int             `db:"stock" json:"stock"`
	CategoriaID *int64          `db:"categoria_id" json:"categoria_id"`
	ProveedorID *int64          `db:"proveedor_id" json:"proveedor_id"`

	// Proveedor is loaded separately from ProveedorID.
	Proveedor *Proveedor `db:"-" json:"proveedor"`
}

// VentaItem is one line of a sale request.
type VentaItem struct {
	ProductoID int64
	Cantidad   int
}

// VentaLinea is one committed line of a sale.
type VentaLinea struct {
	ProductoID     int64           `db:"producto_id" json:"producto_id"`
	Cantidad       int             `db:"cantidad" json:"cantidad"`
	PrecioUnitario decimal.Decimal `db:"precio_unitario" json:"precio_unitario"`
	Subtotal       decimal.Decimal `db:"-" json:"subtotal"`
	StockRestante  int             `db:"-" json:"stock_restante"`
}

type Venta struct {
	ID     int64           `db:"id" json:"id"`
	Total  decimal.Decimal `db:"total" json:"total"`
	Lineas []VentaLinea    `db:"-" json:"items"`
}
