package dto

import (
	"time"

	"github.com/cuongbtq/petstore/internal/veterinaria/model"
	"github.com/cuongbtq/petstore/shared/apperr"
)

const dateLayout = "2006-01-02"

type CreateMascotaRequest struct {
	Nombre          string  `json:"nombre" binding:"required"`
	Raza            *string `json:"raza"`
	Sexo            *string `json:"sexo"`
	FechaNacimiento *string `json:"fecha_nacimiento" binding:"omitempty,datetime=2006-01-02"`
	PropietarioID   int64   `json:"propietario_id" binding:"required"`
}

func (r *CreateMascotaRequest) ToModel() *model.Mascota {
	return &model.Mascota{
		Nombre:          r.Nombre,
		Raza:            r.Raza,
		Sexo:            r.Sexo,
		FechaNacimiento: r.FechaNacimiento,
		PropietarioID:   r.PropietarioID,
	}
}

type CreateConsultaRequest struct {
	Fecha       string  `json:"fecha"`
	Motivo      *string `json:"motivo"`
	Diagnostico *string `json:"diagnostico"`
	Tratamiento *string `json:"tratamiento"`
}

// ToModel accepts an RFC 3339 timestamp or a bare date; an empty fecha means now.
func (r *CreateConsultaRequest) ToModel(now time.Time) (*model.Consulta, error) {
	fecha, err := normalizeFecha(r.Fecha, now)
	if err != nil {
		return nil, err
	}
	return &model.Consulta{
		Fecha:       fecha,
		Motivo:      r.Motivo,
		Diagnostico: r.Diagnostico,
		Tratamiento: r.Tratamiento,
	}, nil
}

func normalizeFecha(raw string, now time.Time) (string, error) {
	if raw == "" {
		return now.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.Format(time.RFC3339), nil
	}
	return "", apperr.New(apperr.ErrInvalidInput, "fecha must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

type CreateDocumentoRequest struct {
	NombreArchivo string  `json:"nombre_archivo" binding:"required"`
	URLArchivo    string  `json:"url_archivo" binding:"required"`
	TipoDocumento *string `json:"tipo_documento"`
}

func (r *CreateDocumentoRequest) ToModel() *model.Documento {
	return &model.Documento{
		NombreArchivo: r.NombreArchivo,
		URLArchivo:    r.URLArchivo,
		TipoDocumento: r.TipoDocumento,
	}
}

// MedicalReportQuery narrows a report to some consultations; empty means all.
type MedicalReportQuery struct {
	ConsultationIDs []int64 `form:"consultation_ids"`
}
