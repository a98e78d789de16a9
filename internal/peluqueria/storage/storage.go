// Package storage persists grooming services, groomers and appointments.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/petstore/internal/peluqueria/model"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
	"github.com/cuongbtq/petstore/shared/migrate"
	"github.com/cuongbtq/petstore/shared/postgresql"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the goose source for the peluqueria tables.
var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "goose_peluqueria_version"}

const (
	servicioColumns  = `id, nombre, descripcion, duracion_minutos, precio`
	peluqueroColumns = `id, nombre, user_id`

	// turnoSelect scans peluquero and servicio into the nested structs
	turnoSelect = `
		SELECT t.id, CAST(t.fecha_hora AS TEXT) AS fecha_hora, t.mascota_id, t.cliente_id,
		       t.peluquero_id, t.servicio_id,
		       p.id AS "peluquero.id", p.nombre AS "peluquero.nombre", p.user_id AS "peluquero.user_id",
		       s.id AS "servicio.id", s.nombre AS "servicio.nombre", s.descripcion AS "servicio.descripcion",
		       s.duracion_minutos AS "servicio.duracion_minutos", s.precio AS "servicio.precio"
		FROM turnos t
		JOIN peluqueros p ON p.id = t.peluquero_id
		JOIN servicios s ON s.id = t.servicio_id`
)

type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

func (s *Storage) CreateServicio(ctx context.Context, sv *model.Servicio) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM servicios WHERE nombre = ?)`), sv.Nombre)
	if err != nil {
		return fmt.Errorf("failed to check servicio: %w", err)
	}
	if exists {
		return apperr.Duplicate("Servicio")
	}

	query := s.db.Rebind(`
		INSERT INTO servicios (nombre, descripcion, duracion_minutos, precio)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := s.db.GetContext(ctx, &sv.ID, query, sv.Nombre, sv.Descripcion, sv.DuracionMinutos, sv.Precio); err != nil {
		if postgresql.IsUniqueViolation(err) {
			return apperr.Duplicate("Servicio")
		}
		return fmt.Errorf("failed to create servicio: %w", err)
	}
	return nil
}

func (s *Storage) GetServicio(ctx context.Context, id int64) (*model.Servicio, error) {
	var sv model.Servicio
	err := s.db.GetContext(ctx, &sv, s.db.Rebind(`SELECT `+servicioColumns+` FROM servicios WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Servicio")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get servicio: %w", err)
	}
	return &sv, nil
}

func (s *Storage) ListServicios(ctx context.Context, page httpx.Page) ([]model.Servicio, error) {
	servicios := []model.Servicio{}
	query := s.db.Rebind(`SELECT ` + servicioColumns + ` FROM servicios ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &servicios, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list servicios: %w", err)
	}
	return servicios, nil
}

func (s *Storage) CreatePeluquero(ctx context.Context, p *model.Peluquero) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM peluqueros WHERE user_id = ?)`), p.UserID)
	if err != nil {
		return fmt.Errorf("failed to check peluquero: %w", err)
	}
	if exists {
		return apperr.Duplicate("Peluquero")
	}

	query := s.db.Rebind(`INSERT INTO peluqueros (nombre, user_id) VALUES (?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &p.ID, query, p.Nombre, p.UserID); err != nil {
		if postgresql.IsUniqueViolation(err) {
			return apperr.Duplicate("Peluquero")
		}
		return fmt.Errorf("failed to create peluquero: %w", err)
	}
	return nil
}

func (s *Storage) GetPeluquero(ctx context.Context, id int64) (*model.Peluquero, error) {
	var p model.Peluquero
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+peluqueroColumns+` FROM peluqueros WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Peluquero")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get peluquero: %w", err)
	}
	return &p, nil
}

func (s *Storage) ListPeluqueros(ctx context.Context, page httpx.Page) ([]model.Peluquero, error) {
	peluqueros := []model.Peluquero{}
	query := s.db.Rebind(`SELECT ` + peluqueroColumns + ` FROM peluqueros ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &peluqueros, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list peluqueros: %w", err)
	}
	return peluqueros, nil
}

// CreateTurno books an appointment; peluquero and servicio must exist.
func (s *Storage) CreateTurno(ctx context.Context, t *model.Turno) error {
	peluquero, err := s.GetPeluquero(ctx, t.PeluqueroID)
	if err != nil {
		return err
	}
	servicio, err := s.GetServicio(ctx, t.ServicioID)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		INSERT INTO turnos (fecha_hora, mascota_id, cliente_id, peluquero_id, servicio_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err = s.db.GetContext(ctx, &t.ID, query, t.FechaHora, t.MascotaID, t.ClienteID, t.PeluqueroID, t.ServicioID)
	if err != nil {
		if postgresql.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.ErrNotFound, "Peluquero or Servicio not found", err)
		}
		return fmt.Errorf("failed to create turno: %w", err)
	}

	t.Peluquero = *peluquero
	t.Servicio = *servicio
	s.logger.Info("Turno agendado",
		slog.Int64("turno_id", t.ID),
		slog.Int64("peluquero_id", t.PeluqueroID),
		slog.String("fecha_hora", t.FechaHora),
	)
	return nil
}

func (s *Storage) GetTurno(ctx context.Context, id int64) (*model.Turno, error) {
	var t model.Turno
	err := s.db.GetContext(ctx, &t, s.db.Rebind(turnoSelect+` WHERE t.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Turno")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get turno: %w", err)
	}
	return &t, nil
}

func (s *Storage) ListTurnos(ctx context.Context, page httpx.Page) ([]model.Turno, error) {
	turnos := []model.Turno{}
	query := s.db.Rebind(turnoSelect + ` ORDER BY t.id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &turnos, query, page.Limit, page.Skip); err != nil {
		return nil, fmt.Errorf("failed to list turnos: %w", err)
	}
	return turnos, nil
}
