package completion

import (
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Slots de evidencia (adjuntos) por tipo de documento.
const (
	EvidenceOriginWeighTicket      = "origin_weigh_ticket"
	EvidenceDestinationWeighTicket = "destination_weigh_ticket"
	EvidenceBillOfLading           = "bill_of_lading"
	EvidenceDeliveryReceipt        = "delivery_receipt"
	EvidenceMillWeighTicket        = "mill_weigh_ticket"
)

// Rule es la estrategia de completitud de un tipo de documento:
// escalares requeridos, evidencias requeridas, la contraparte cuya exención
// dispensa las evidencias y el predicado sobre las partidas.
type Rule interface {
	Kind() entity.DocumentKind
	RequiredFields() []string
	RequiredEvidence() []string
	EvidenceCounterparty(doc *entity.Document) *entity.Location
	LinesSatisfied(lines []entity.LineItem) bool
}

type rule struct {
	kind         entity.DocumentKind
	fields       []string
	evidence     []string
	counterparty func(doc *entity.Document) *entity.Location
	lines        func(lines []entity.LineItem) bool
}

func (r rule) Kind() entity.DocumentKind  { return r.kind }
func (r rule) RequiredFields() []string   { return r.fields }
func (r rule) RequiredEvidence() []string { return r.evidence }

func (r rule) EvidenceCounterparty(doc *entity.Document) *entity.Location {
	return r.counterparty(doc)
}

func (r rule) LinesSatisfied(lines []entity.LineItem) bool {
	return r.lines(lines)
}

func destination(doc *entity.Document) *entity.Location { return doc.Destination }
func origin(doc *entity.Document) *entity.Location      { return doc.Origin }

// anyLine devuelve un predicado que exige al menos una partida que cumpla cond.
func anyLine(cond func(l entity.LineItem) bool) func([]entity.LineItem) bool {
	return func(lines []entity.LineItem) bool {
		for _, l := range lines {
			if cond(l) {
				return true
			}
		}
		return false
	}
}

// ShipmentRule embarque: pesos de salida y llegada en al menos una partida.
var ShipmentRule Rule = rule{
	kind: entity.KindShipment,
	fields: []string{
		entity.FieldOriginID, entity.FieldDestinationID,
		"folio", "carrier", "truck_plate", "shipped_at",
	},
	evidence: []string{
		EvidenceOriginWeighTicket, EvidenceDestinationWeighTicket, EvidenceBillOfLading,
	},
	counterparty: destination,
	lines: anyLine(func(l entity.LineItem) bool {
		return l.WeightIn.IsPositive() && l.WeightOut.IsPositive()
	}),
}

// LogisticsRecordRule registro de flete: basta el peso de salida.
var LogisticsRecordRule Rule = rule{
	kind: entity.KindLogisticsRecord,
	fields: []string{
		entity.FieldOriginID, entity.FieldDestinationID,
		"folio", "carrier", "freight_reference",
	},
	evidence:     []string{EvidenceDeliveryReceipt},
	counterparty: destination,
	lines: anyLine(func(l entity.LineItem) bool {
		return l.WeightOut.IsPositive()
	}),
}

// MillInboundRule entrada a molino: la exención se toma del origen (el patio que envía).
var MillInboundRule Rule = rule{
	kind: entity.KindMillInbound,
	fields: []string{
		entity.FieldOriginID, entity.FieldDestinationID,
		"mill_ticket", "received_at",
	},
	evidence:     []string{EvidenceMillWeighTicket},
	counterparty: origin,
	lines: anyLine(func(l entity.LineItem) bool {
		return l.WeightIn.IsPositive()
	}),
}

// DefaultRules reglas de los tres tipos de documento.
func DefaultRules() []Rule {
	return []Rule{ShipmentRule, LogisticsRecordRule, MillInboundRule}
}
