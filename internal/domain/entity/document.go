package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind etiqueta el tipo de documento logístico; selecciona la regla de completitud.
type DocumentKind string

// Tipos de documento.
const (
	KindShipment        DocumentKind = "SHIPMENT"         // embarque patio → cliente/molino/patio
	KindLogisticsRecord DocumentKind = "LOGISTICS_RECORD" // registro de flete
	KindMillInbound     DocumentKind = "MILL_INBOUND"     // entrada a molino
)

// Valid indica si el tipo es conocido.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindShipment, KindLogisticsRecord, KindMillInbound:
		return true
	}
	return false
}

// DocumentStatus estado del ciclo de vida.
type DocumentStatus string

// Estados del ciclo de vida documental.
const (
	StatusPending   DocumentStatus = "PENDING"
	StatusComplete  DocumentStatus = "COMPLETE"
	StatusAudited   DocumentStatus = "AUDITED"   // terminal, inmutable
	StatusCancelled DocumentStatus = "CANCELLED" // terminal, solo embarques
)

// Campos escalares con columna propia. El resto vive en Fields.
const (
	FieldOriginID      = "origin_id"
	FieldDestinationID = "destination_id"
)

// Document es la entidad genérica compartida por embarques, registros logísticos y entradas a molino.
// Origin, Destination y LineItem.Counterparty se hidratan desde el catálogo antes de evaluar completitud.
type Document struct {
	ID            string
	Kind          DocumentKind
	Status        DocumentStatus
	OriginID      string
	DestinationID string
	Fields        map[string]string // escalares propios del tipo (folio, carrier, ...)
	Evidence      map[string]string // slot → referencia del archivo adjunto; solo importa la presencia
	Lines         []LineItem
	AuditedBy     string
	AuditedAt     *time.Time
	CancelledBy   string
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time

	Origin      *Location
	Destination *Location
}

// LineItem es una partida de material con pesos de salida y llegada.
type LineItem struct {
	ID             string
	DocumentID     string
	MaterialID     string
	CounterpartyID string // opcional; informativa, el libro solo usa origen y destino del documento
	WeightIn       decimal.Decimal
	WeightOut      decimal.Decimal

	Counterparty *Location
}

// IsPersisted indica si el documento ya tiene identidad asignada.
func (d *Document) IsPersisted() bool {
	return d != nil && d.ID != ""
}

// IsAudited indica si el documento quedó bloqueado por auditoría.
func (d *Document) IsAudited() bool {
	return d != nil && d.Status == StatusAudited
}

// Field devuelve el valor de un escalar requerido, incluidas las columnas propias.
func (d *Document) Field(name string) string {
	switch name {
	case FieldOriginID:
		return d.OriginID
	case FieldDestinationID:
		return d.DestinationID
	}
	return d.Fields[name]
}

// HasEvidence indica si el adjunto del slot está presente.
func (d *Document) HasEvidence(slot string) bool {
	return d.Evidence[slot] != ""
}

// Clone devuelve una copia profunda; los observadores y el driver en memoria la usan para no compartir mapas.
func (d Document) Clone() Document {
	out := d
	out.Fields = make(map[string]string, len(d.Fields))
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	out.Evidence = make(map[string]string, len(d.Evidence))
	for k, v := range d.Evidence {
		out.Evidence[k] = v
	}
	out.Lines = make([]LineItem, len(d.Lines))
	copy(out.Lines, d.Lines)
	if d.AuditedAt != nil {
		t := *d.AuditedAt
		out.AuditedAt = &t
	}
	if d.CancelledAt != nil {
		t := *d.CancelledAt
		out.CancelledAt = &t
	}
	if d.DeletedAt != nil {
		t := *d.DeletedAt
		out.DeletedAt = &t
	}
	return out
}
