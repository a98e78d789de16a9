package model

// Mascota is a pet owned by an auth user (PropietarioID is not enforced
// across services).
type Mascota struct {
	ID              int64   `db:"id" json:"id"`
	Nombre          string  `db:"nombre" json:"nombre"`
	Raza            *string `db:"raza" json:"raza"`
	Sexo            *string `db:"sexo" json:"sexo"`
	FechaNacimiento *string `db:"fecha_nacimiento" json:"fecha_nacimiento"`
	PropietarioID   int64   `db:"propietario_id" json:"propietario_id"`

	HistorialClinico *HistorialClinico `db:"-" json:"historial_clinico"`
}

// HistorialClinico is created together with its Mascota.
type HistorialClinico struct {
	ID         int64       `db:"id" json:"id"`
	MascotaID  int64       `db:"mascota_id" json:"mascota_id"`
	Consultas  []Consulta  `db:"-" json:"consultas"`
	Documentos []Documento `db:"-" json:"documentos"`
}

type Consulta struct {
	ID          int64   `db:"id" json:"id"`
	Fecha       string  `db:"fecha" json:"fecha"`
	Motivo      *string `db:"motivo" json:"motivo"`
	Diagnostico *string `db:"diagnostico" json:"diagnostico"`
	Tratamiento *string `db:"tratamiento" json:"tratamiento"`
	HistorialID int64   `db:"historial_id" json:"historial_id"`
}

type Documento struct {
	ID            int64   `db:"id" json:"id"`
	NombreArchivo string  `db:"nombre_archivo" json:"nombre_archivo"`
	URLArchivo    string  `db:"url_archivo" json:"url_archivo"`
	TipoDocumento *string `db:"tipo_documento" json:"tipo_documento"`
	HistorialID   int64   `db:"historial_id" json:"historial_id"`
}
