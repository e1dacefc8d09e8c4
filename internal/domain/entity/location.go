package entity

import "time"

// Location representa una ubicación del catálogo: patio, molino o cliente.
// Solo los patios (IsYard) llevan entradas en el libro de inventario.
type Location struct {
	ID             string
	Code           string // clave corta, ej. MTY, NLD
	Name           string
	IsYard         bool
	EvidenceExempt bool // ubicaciones internas que nunca generan papelería
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Material representa un material reciclable del catálogo (ej. Chatarra de acero).
type Material struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}
