// Package storage persists pets and their clinical history.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/petstore/internal/veterinaria/model"
	"github.com/cuongbtq/petstore/shared/apperr"
	"github.com/cuongbtq/petstore/shared/httpx"
	"github.com/cuongbtq/petstore/shared/migrate"
	"github.com/cuongbtq/petstore/shared/postgresql"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the goose source for the veterinaria tables.
var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "goose_veterinaria_version"}

// dates are read back as text so both drivers scan into strings
const (
	mascotaColumns   = `id, nombre, raza, sexo, CAST(fecha_nacimiento AS TEXT) AS fecha_nacimiento, propietario_id`
	consultaColumns  = `id, CAST(fecha AS TEXT) AS fecha, motivo, diagnostico, tratamiento, historial_id`
	documentoColumns = `id, nombre_archivo, url_archivo, tipo_documento, historial_id`
)

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

// CreateMascota inserts the pet and its empty clinical history together.
func (s *Storage) CreateMascota(ctx context.Context, m *model.Mascota) error {
	historial := &model.HistorialClinico{
		Consultas:  []model.Consulta{},
		Documentos: []model.Documento{},
	}

	err := s.pg.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO mascotas (nombre, raza, sexo, fecha_nacimiento, propietario_id)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := tx.GetContext(ctx, &m.ID, query, m.Nombre, m.Raza, m.Sexo, m.FechaNacimiento, m.PropietarioID)
		if err != nil {
			return fmt.Errorf("failed to create mascota: %w", err)
		}

		historial.MascotaID = m.ID
		query = tx.Rebind(`INSERT INTO historiales_clinicos (mascota_id) VALUES (?) RETURNING id`)
		if err := tx.GetContext(ctx, &historial.ID, query, m.ID); err != nil {
			return fmt.Errorf("failed to create historial clinico: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.HistorialClinico = historial
	s.logger.Info("Mascota registrada",
		slog.Int64("mascota_id", m.ID),
		slog.Int64("propietario_id", m.PropietarioID),
	)
	return nil
}

func (s *Storage) GetMascota(ctx context.Context, id int64) (*model.Mascota, error) {
	var m model.Mascota
	err := s.db.GetContext(ctx, &m, s.db.Rebind(`SELECT `+mascotaColumns+` FROM mascotas WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Mascota")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mascota: %w", err)
	}

	if err := s.attachHistoriales(ctx, []*model.Mascota{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) ListMascotas(ctx context.Context, page httpx.Page) ([]model.Mascota, error) {
	query := s.db.Rebind(`SELECT ` + mascotaColumns + ` FROM mascotas ORDER BY id LIMIT ? OFFSET ?`)
	return s.selectMascotas(ctx, query, page.Limit, page.Skip)
}

func (s *Storage) ListMascotasByPropietario(ctx context.Context, propietarioID int64) ([]model.Mascota, error) {
	query := s.db.Rebind(`SELECT ` + mascotaColumns + ` FROM mascotas WHERE propietario_id = ? ORDER BY id`)
	return s.selectMascotas(ctx, query, propietarioID)
}

func (s *Storage) selectMascotas(ctx context.Context, query string, args ...any) ([]model.Mascota, error) {
	mascotas := []model.Mascota{}
	if err := s.db.SelectContext(ctx, &mascotas, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list mascotas: %w", err)
	}

	refs := make([]*model.Mascota, len(mascotas))
	for i := range mascotas {
		refs[i] = &mascotas[i]
	}
	if err := s.attachHistoriales(ctx, refs); err != nil {
		return nil, err
	}
	return mascotas, nil
}

// attachHistoriales loads the history, consultas and documentos of every
// given pet with one query per table.
func (s *Storage) attachHistoriales(ctx context.Context, mascotas []*model.Mascota) error {
	if len(mascotas) == 0 {
		return nil
	}

	ids := make([]int64, len(mascotas))
	for i, m := range mascotas {
		ids[i] = m.ID
	}

	var historiales []model.HistorialClinico
	if err := s.selectIn(ctx, &historiales, `SELECT id, mascota_id FROM historiales_clinicos WHERE mascota_id IN (?)`, ids); err != nil {
		return fmt.Errorf("failed to load historiales: %w", err)
	}
	if len(historiales) == 0 {
		return nil
	}

	byID := make(map[int64]*model.HistorialClinico, len(historiales))
	historialIDs := make([]int64, len(historiales))
	for i := range historiales {
		h := &historiales[i]
		h.Consultas = []model.Consulta{}
		h.Documentos = []model.Documento{}
		byID[h.ID] = h
		historialIDs[i] = h.ID
	}

	var consultas []model.Consulta
	err := s.selectIn(ctx, &consultas, `SELECT `+consultaColumns+` FROM consultas WHERE historial_id IN (?) ORDER BY id`, historialIDs)
	if err != nil {
		return fmt.Errorf("failed to load consultas: %w", err)
	}
	for _, c := range consultas {
		byID[c.HistorialID].Consultas = append(byID[c.HistorialID].Consultas, c)
	}

	var documentos []model.Documento
	err = s.selectIn(ctx, &documentos, `SELECT `+documentoColumns+` FROM documentos WHERE historial_id IN (?) ORDER BY id`, historialIDs)
	if err != nil {
		return fmt.Errorf("failed to load documentos: %w", err)
	}
	for _, d := range documentos {
		byID[d.HistorialID].Documentos = append(byID[d.HistorialID].Documentos, d)
	}

	byMascota := make(map[int64]*model.HistorialClinico, len(historiales))
	for _, h := range byID {
		byMascota[h.MascotaID] = h
	}
	for _, m := range mascotas {
		m.HistorialClinico = byMascota[m.ID]
	}
	return nil
}

func (s *Storage) selectIn(ctx context.Context, dst any, query string, ids []int64) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dst, s.db.Rebind(query), args...)
}

// historialID resolves the clinical history of an existing pet.
func (s *Storage) historialID(ctx context.Context, mascotaID int64) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`SELECT id FROM historiales_clinicos WHERE mascota_id = ?`), mascotaID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("Mascota")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get historial clinico: %w", err)
	}
	return id, nil
}

// CreateConsulta appends a consultation to the pet's history.
func (s *Storage) CreateConsulta(ctx context.Context, mascotaID int64, c *model.Consulta) error {
	historialID, err := s.historialID(ctx, mascotaID)
	if err != nil {
		return err
	}
	c.HistorialID = historialID

	query := s.db.Rebind(`
		INSERT INTO consultas (fecha, motivo, diagnostico, tratamiento, historial_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + consultaColumns)
	if err := s.db.GetContext(ctx, c, query, c.Fecha, c.Motivo, c.Diagnostico, c.Tratamiento, historialID); err != nil {
		return fmt.Errorf("failed to create consulta: %w", err)
	}
	return nil
}

func (s *Storage) ListConsultas(ctx context.Context, mascotaID int64) ([]model.Consulta, error) {
	historialID, err := s.historialID(ctx, mascotaID)
	if err != nil {
		return nil, err
	}

	consultas := []model.Consulta{}
	query := s.db.Rebind(`SELECT ` + consultaColumns + ` FROM consultas WHERE historial_id = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &consultas, query, historialID); err != nil {
		return nil, fmt.Errorf("failed to list consultas: %w", err)
	}
	return consultas, nil
}

// ConsultaIDs returns the ids of every consultation of an existing pet.
func (s *Storage) ConsultaIDs(ctx context.Context, mascotaID int64) ([]int64, error) {
	historialID, err := s.historialID(ctx, mascotaID)
	if err != nil {
		return nil, err
	}

	ids := []int64{}
	query := s.db.Rebind(`SELECT id FROM consultas WHERE historial_id = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &ids, query, historialID); err != nil {
		return nil, fmt.Errorf("failed to list consulta ids: %w", err)
	}
	return ids, nil
}

// CreateDocumento attaches a document reference to the pet's history.
func (s *Storage) CreateDocumento(ctx context.Context, mascotaID int64, d *model.Documento) error {
	historialID, err := s.historialID(ctx, mascotaID)
	if err != nil {
		return err
	}
	d.HistorialID = historialID

	query := s.db.Rebind(`
		INSERT INTO documentos (nombre_archivo, url_archivo, tipo_documento, historial_id)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := s.db.GetContext(ctx, &d.ID, query, d.NombreArchivo, d.URLArchivo, d.TipoDocumento, historialID); err != nil {
		return fmt.Errorf("failed to create documento: %w", err)
	}
	return nil
}

func (s *Storage) ListDocumentos(ctx context.Context, mascotaID int64) ([]model.Documento, error) {
	historialID, err := s.historialID(ctx, mascotaID)
	if err != nil {
		return nil, err
	}

	documentos := []model.Documento{}
	query := s.db.Rebind(`SELECT ` + documentoColumns + ` FROM documentos WHERE historial_id = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &documentos, query, historialID); err != nil {
		return nil, fmt.Errorf("failed to list documentos: %w", err)
	}
	return documentos, nil
}
