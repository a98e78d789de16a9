package dto

import (
	"time"

	"github.com/greatcloak/decimal"

	"github.com/cuongbtq/petstore/internal/peluqueria/model"
	"github.com/cuongbtq/petstore/shared/apperr"
)

type CreateServicioRequest struct {
	Nombre          string          `json:"nombre" binding:"required"`
	Descripcion     *string         `json:"descripcion"`
	DuracionMinutos int             `json:"duracion_minutos" binding:"required,gt=0"`
	Precio          decimal.Decimal `json:"precio"`
}

func (r *CreateServicioRequest) ToModel() *model.Servicio {
	return &model.Servicio{
		Nombre:          r.Nombre,
		Descripcion:     r.Descripcion,
		DuracionMinutos: r.DuracionMinutos,
		Precio:          r.Precio,
	}
}

type CreatePeluqueroRequest struct {
	Nombre string `json:"nombre" binding:"required"`
	UserID int64  `json:"user_id" binding:"required"`
}

type CreateTurnoRequest struct {
	FechaHora   time.Time `json:"fecha_hora"`
	MascotaID   int64     `json:"mascota_id" binding:"required"`
	ClienteID   int64     `json:"cliente_id" binding:"required"`
	PeluqueroID int64     `json:"peluquero_id" binding:"required"`
	ServicioID  int64     `json:"servicio_id" binding:"required"`
}

// ToModel stores fecha_hora in UTC; a missing fecha_hora is rejected.
func (r *CreateTurnoRequest) ToModel() (*model.Turno, error) {
	if r.FechaHora.IsZero() {
		return nil, apperr.New(apperr.ErrInvalidInput, "fecha_hora is required")
	}
	return &model.Turno{
		FechaHora:   r.FechaHora.UTC().Format(time.RFC3339),
		MascotaID:   r.MascotaID,
		ClienteID:   r.ClienteID,
		PeluqueroID: r.PeluqueroID,
		ServicioID:  r.ServicioID,
	}, nil
}
