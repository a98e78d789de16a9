package model

import "github.com/greatcloak/decimal"

type Servicio struct {
	ID              int64           `db:"id" json:"id"`
	Nombre          string          `db:"nombre" json:"nombre"`
	Descripcion     *string         `db:"descripcion" json:"descripcion"`
	DuracionMinutos int             `db:"duracion_minutos" json:"duracion_minutos"`
	Precio          decimal.Decimal `db:"precio" json:"precio"`
}

// Peluquero links a groomer to an auth user.
type Peluquero struct {
	ID     int64  `db:"id" json:"id"`
	Nombre string `db:"nombre" json:"nombre"`
	UserID int64  `db:"user_id" json:"user_id"`
}

// Turno is a grooming appointment. MascotaID and ClienteID belong to other
// services and are stored as given.
type Turno struct {
	ID          int64  `db:"id" json:"id"`
	FechaHora   string `db:"fecha_hora" json:"fecha_hora"`
	MascotaID   int64  `db:"mascota_id" json:"mascota_id"`
	ClienteID   int64  `db:"cliente_id" json:"cliente_id"`
	PeluqueroID int64  `db:"peluquero_id" json:"peluquero_id"`
	ServicioID  int64  `db:"servicio_id" json:"servicio_id"`

	Peluquero Peluquero `db:"peluquero" json:"peluquero"`
	Servicio  Servicio  `db:"servicio" json:"servicio"`
}
