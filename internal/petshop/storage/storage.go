// Package storage persists the petshop catalog and sales.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greatcloak/decimal"
	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/petstore/internal/petshop/model"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
	"github.com/cuongbtq/petstore/shared/migrate"
	"github.com/cuongbtq/petstore/shared/postgresql"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the goose source for the petshop tables.
var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "goose_petshop_version"}

type Storage struct {
	pg     *postgresql.Client
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		pg:     pg,
		db:     pg.GetDB(),
		logger: logger,
	}
}

func (s *Storage) CreateCategoria(ctx context.Context, c *model.Categoria) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM categorias WHERE nombre = ?)`), c.Nombre)
	if err != nil {
		return fmt.Errorf("failed to check categoria: %w", err)
	}
	if exists {
		return apperr.Duplicate("Categoria")
	}

	query := s.db.Rebind(`INSERT INTO categorias (nombre) VALUES (?) RETURNING id`)
	if err := s.db.GetContext(ctx, &c.ID, query, c.Nombre); err != nil {
		if postgresql.IsUniqueViolation(err) {
			return apperr.Duplicate("Categoria")
		}
		return fmt.Errorf("failed to create categoria: %w", err)
	}
	return nil
}

func (s *Storage) GetCategoria(ctx context.Context, id int64) (*model.Categoria, error) {
	var c model.Categoria
	err := s.db.GetContext(ctx, &c, s.db.Rebind(`SELECT id, nombre FROM categorias WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Categoria")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get categoria: %w", err)
	}
	return &c, nil
}

func (s *Storage) ListCategorias(ctx context.Context, page httpx.Page) ([]model.Categoria, error) {
	categorias := []model.Categoria{}
	query := s.db.Rebind(`SELECT id, nombre FROM categorias ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &categorias, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list categorias: %w", err)
	}
	return categorias, nil
}

const proveedorColumns = `id, nombre, contacto, telefono, email`

func (s *Storage) CreateProveedor(ctx context.Context, p *model.Proveedor) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM proveedores WHERE nombre = ?)`), p.Nombre)
	if err != nil {
		return fmt.Errorf("failed to check proveedor: %w", err)
	}
	if exists {
		return apperr.Duplicate("Proveedor")
	}

	query := s.db.Rebind(`
		INSERT INTO proveedores (nombre, contacto, telefono, email)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := s.db.GetContext(ctx, &p.ID, query, p.Nombre, p.Contacto, p.Telefono, p.Email); err != nil {
		if postgresql.IsUniqueViolation(err) {
			return apperr.Duplicate("Proveedor")
		}
		return fmt.Errorf("failed to create proveedor: %w", err)
	}
	return nil
}

func (s *Storage) GetProveedor(ctx context.Context, id int64) (*model.Proveedor, error) {
	var p model.Proveedor
	query := s.db.Rebind(`SELECT ` + proveedorColumns + ` FROM proveedores WHERE id = ?`)
	err := s.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Proveedor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proveedor: %w", err)
	}
	return &p, nil
}

func (s *Storage) ListProveedores(ctx context.Context, page httpx.Page) ([]model.Proveedor, error) {
	proveedores := []model.Proveedor{}
	query := s.db.Rebind(`SELECT ` + proveedorColumns + ` FROM proveedores ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &proveedores, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list proveedores: %w", err)
	}
	return proveedores, nil
}

const productoColumns = `id, nombre, descripcion, precio, stock, categoria_id, proveedor_id`

// CreateProducto inserts a product; referenced categoria and proveedor must exist.
func (s *Storage) CreateProducto(ctx context.Context, p *model.Producto) error {
	if p.CategoriaID != nil {
		if _, err := s.GetCategoria(ctx, *p.CategoriaID); err != nil {
			return err
		}
	}
	if p.ProveedorID != nil {
		if _, err := s.GetProveedor(ctx, *p.ProveedorID); err != nil {
			return err
		}
	}

	query := s.db.Rebind(`
		INSERT INTO productos (nombre, descripcion, precio, stock, categoria_id, proveedor_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.db.GetContext(ctx, &p.ID, query,
		p.Nombre, p.Descripcion, p.Precio, p.Stock, p.CategoriaID, p.ProveedorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create producto: %w", err)
	}

	return s.attachProveedores(ctx, []*model.Producto{p})
}

func (s *Storage) GetProducto(ctx context.Context, id int64) (*model.Producto, error) {
	var p model.Producto
	query := s.db.Rebind(`SELECT ` + productoColumns + ` FROM productos WHERE id = ?`)
	err := s.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Producto")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get producto: %w", err)
	}

	if err := s.attachProveedores(ctx, []*model.Producto{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) ListProductos(ctx context.Context, page httpx.Page) ([]model.Producto, error) {
	query := s.db.Rebind(`SELECT ` + productoColumns + ` FROM productos ORDER BY id LIMIT ? OFFSET ?`)
	return s.selectProductos(ctx, query, page.Limit, page.Skip)
}

// ListProductosByCategoria returns every product of an existing categoria.
func (s *Storage) ListProductosByCategoria(ctx context.Context, categoriaID int64) ([]model.Producto, error) {
	if _, err := s.GetCategoria(ctx, categoriaID); err != nil {
		return nil, err
	}
	query := s.db.Rebind(`SELECT ` + productoColumns + ` FROM productos WHERE categoria_id = ? ORDER BY id`)
	return s.selectProductos(ctx, query, categoriaID)
}

// ListProductosByProveedor returns every product of an existing proveedor.
func (s *Storage) ListProductosByProveedor(ctx context.Context, proveedorID int64) ([]model.Producto, error) {
	if _, err := s.GetProveedor(ctx, proveedorID); err != nil {
		return nil, err
	}
	query := s.db.Rebind(`SELECT ` + productoColumns + ` FROM productos WHERE proveedor_id = ? ORDER BY id`)
	return s.selectProductos(ctx, query, proveedorID)
}

func (s *Storage) selectProductos(ctx context.Context, query string, args ...any) ([]model.Producto, error) {
	productos := []model.Producto{}
	if err := s.db.SelectContext(ctx, &productos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list productos: %w", err)
	}

	refs := make([]*model.Producto, len(productos))
	for i := range productos {
		refs[i] = &productos[i]
	}
	if err := s.attachProveedores(ctx, refs); err != nil {
		return nil, err
	}
	return productos, nil
}

// attachProveedores fills Producto.Proveedor with one query for all products.
func (s *Storage) attachProveedores(ctx context.Context, productos []*model.Producto) error {
	ids := make([]int64, 0, len(productos))
	for _, p := range productos {
		if p.ProveedorID != nil {
			ids = append(ids, *p.ProveedorID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT `+proveedorColumns+` FROM proveedores WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build proveedor query: %w", err)
	}

	var proveedores []model.Proveedor
	if err := s.db.SelectContext(ctx, &proveedores, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load proveedores: %w", err)
	}

	byID := make(map[int64]*model.Proveedor, len(proveedores))
	for i := range proveedores {
		byID[proveedores[i].ID] = &proveedores[i]
	}
	for _, p := range productos {
		if p.ProveedorID != nil {
			p.Proveedor = byID[*p.ProveedorID]
		}
	}
	return nil
}

// RegistrarVenta decrements stock for every line and records the sale in one
// transaction. Each decrement is conditional on the stock still covering the
// quantity, so concurrent sales cannot oversell; any failing line rolls back
// the whole sale.
func (s *Storage) RegistrarVenta(ctx context.Context, items []model.VentaItem) (*model.Venta, error) {
	venta := &model.Venta{Total: decimal.Zero}

	err := s.pg.WithTx(ctx, func(tx *sqlx.Tx) error {
		decrement := tx.Rebind(`
			UPDATE productos SET stock = stock - ?
			WHERE id = ? AND stock >= ?
			RETURNING stock, precio
		`)

		for _, item := range items {
			var row struct {
				Stock  int             `db:"stock"`
				Precio decimal.Decimal `db:"precio"`
			}
			err := tx.GetContext(ctx, &row, decrement, item.Cantidad, item.ProductoID, item.Cantidad)
			if errors.Is(err, sql.ErrNoRows) {
				return s.rejectLine(ctx, tx, item)
			}
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}

			subtotal := row.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
			venta.Total = venta.Total.Add(subtotal)
			venta.Lineas = append(venta.Lineas, model.VentaLinea{
				ProductoID:     item.ProductoID,
				Cantidad:       item.Cantidad,
				PrecioUnitario: row.Precio,
				Subtotal:       subtotal,
				StockRestante:  row.Stock,
			})
		}

		err := tx.GetContext(ctx, &venta.ID, tx.Rebind(`INSERT INTO ventas (total) VALUES (?) RETURNING id`), venta.Total)
		if err != nil {
			return fmt.Errorf("failed to record venta: %w", err)
		}

		insertLine := tx.Rebind(`
			INSERT INTO venta_items (venta_id, producto_id, cantidad, precio_unitario)
			VALUES (?, ?, ?, ?)
		`)
		for _, l := range venta.Lineas {
			if _, err := tx.ExecContext(ctx, insertLine, venta.ID, l.ProductoID, l.Cantidad, l.PrecioUnitario); err != nil {
				return fmt.Errorf("failed to record venta item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Venta registrada",
		slog.Int64("venta_id", venta.ID),
		slog.Int("lineas", len(venta.Lineas)),
		slog.String("total", venta.Total.StringFixed(2)),
	)
	return venta, nil
}

// rejectLine explains why the conditional decrement matched no row
func (s *Storage) rejectLine(ctx context.Context, tx *sqlx.Tx, item model.VentaItem) error {
	var stock int
	err := tx.GetContext(ctx, &stock, tx.Rebind(`SELECT stock FROM productos WHERE id = ?`), item.ProductoID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Producto")
	}
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}
	return apperr.InsufficientStock(stock, item.Cantidad)
}
