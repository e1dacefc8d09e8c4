package completion_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Logistica-api/internal/domain/completion"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	yardMTY   = &entity.Location{ID: "loc-mty", Code: "MTY", IsYard: true}
	clientAHM = &entity.Location{ID: "loc-ahm", Code: "AHM"}
	internal  = &entity.Location{ID: "loc-int", Code: "INT", IsYard: true, EvidenceExempt: true}
)

func kg(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// completeShipment construye un embarque con todos los requisitos cumplidos.
func completeShipment() *entity.Document {
	return &entity.Document{
		ID:            "doc-1",
		Kind:          entity.KindShipment,
		OriginID:      yardMTY.ID,
		DestinationID: clientAHM.ID,
		Origin:        yardMTY,
		Destination:   clientAHM,
		Fields: map[string]string{
			"folio":       "EMB-0001",
			"carrier":     "Transportes del Norte",
			"truck_plate": "NL-12-345",
			"shipped_at":  "2024-05-02",
		},
		Evidence: map[string]string{
			completion.EvidenceOriginWeighTicket:      "s3://evid/1.jpg",
			completion.EvidenceDestinationWeighTicket: "s3://evid/2.jpg",
			completion.EvidenceBillOfLading:           "s3://evid/3.pdf",
		},
		Lines: []entity.LineItem{
			{MaterialID: "mat-acero", WeightOut: kg("1000.000"), WeightIn: kg("995.500")},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Embarques
// ──────────────────────────────────────────────────────────────────────────────

func TestIsComplete_EmbarqueCompleto(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	assert.True(t, eval.IsComplete(completeShipment()))
}

func TestIsComplete_SinIdentidadSiempreFalso(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	doc.ID = ""
	assert.False(t, eval.IsComplete(doc), "un documento no persistido nunca está completo")
}

func TestIsComplete_FaltaEscalarRequerido(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	doc.Fields["carrier"] = "   "

	assert.False(t, eval.IsComplete(doc))
	assert.Equal(t, []string{"carrier"}, eval.Missing(doc).Fields)
}

func TestIsComplete_FaltaDestino(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	doc.DestinationID = ""
	doc.Destination = nil

	m := eval.Missing(doc)
	assert.Contains(t, m.Fields, entity.FieldDestinationID)
	assert.False(t, eval.IsComplete(doc))
}

// Escenario: todos los escalares presentes, falta una evidencia y el destino no está exento.
func TestIsComplete_FaltaEvidenciaDestinoNoExento(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	delete(doc.Evidence, completion.EvidenceBillOfLading)

	assert.False(t, eval.IsComplete(doc))
	assert.Equal(t, []string{completion.EvidenceBillOfLading}, eval.Missing(doc).Evidence)

	doc.Evidence[completion.EvidenceBillOfLading] = "s3://evid/3.pdf"
	assert.True(t, eval.IsComplete(doc), "al adjuntar la evidencia el embarque queda completo")
}

func TestIsComplete_DestinoExentoPorBandera(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	doc.DestinationID = internal.ID
	doc.Destination = internal
	doc.Evidence = nil

	assert.True(t, eval.IsComplete(doc), "la exención del destino dispensa las evidencias")
}

func TestIsComplete_DestinoExentoPorConfiguracion(t *testing.T) {
	eval := completion.NewEvaluator([]string{" " + clientAHM.ID + " "})
	doc := completeShipment()
	doc.Evidence = map[string]string{}

	assert.True(t, eval.IsComplete(doc))
}

func TestIsComplete_OrigenExentoNoDispensaEmbarque(t *testing.T) {
	eval := completion.NewEvaluator([]string{yardMTY.ID})
	doc := completeShipment()
	doc.Evidence = nil

	assert.False(t, eval.IsComplete(doc), "en embarques solo cuenta la exención del destino")
}

func TestIsComplete_PartidasSinAmbosPesos(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	doc.Lines = []entity.LineItem{
		{MaterialID: "mat-acero", WeightOut: kg("500")},
		{MaterialID: "mat-cobre", WeightIn: kg("20")},
	}
	assert.False(t, eval.IsComplete(doc))
	assert.True(t, eval.Missing(doc).Lines)

	doc.Lines = nil
	assert.False(t, eval.IsComplete(doc), "sin partidas el embarque no está completo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro logístico y entrada a molino
// ──────────────────────────────────────────────────────────────────────────────

func TestIsComplete_RegistroLogisticoSoloPesoSalida(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := &entity.Document{
		ID:            "doc-2",
		Kind:          entity.KindLogisticsRecord,
		OriginID:      yardMTY.ID,
		DestinationID: clientAHM.ID,
		Origin:        yardMTY,
		Destination:   clientAHM,
		Fields:        map[string]string{"folio": "LOG-1", "carrier": "TDN", "freight_reference": "F-99"},
		Evidence:      map[string]string{completion.EvidenceDeliveryReceipt: "s3://r.pdf"},
		Lines:         []entity.LineItem{{MaterialID: "mat-acero", WeightOut: kg("12")}},
	}
	assert.True(t, eval.IsComplete(doc))
}

func TestIsComplete_EntradaMolinoExencionPorOrigen(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := &entity.Document{
		ID:            "doc-3",
		Kind:          entity.KindMillInbound,
		OriginID:      internal.ID,
		DestinationID: clientAHM.ID,
		Origin:        internal,
		Destination:   clientAHM,
		Fields:        map[string]string{"mill_ticket": "ML-7", "received_at": "2024-05-03"},
		Lines:         []entity.LineItem{{MaterialID: "mat-acero", WeightIn: kg("7.25")}},
	}
	assert.True(t, eval.IsComplete(doc), "el origen exento dispensa el ticket de báscula del molino")

	doc.Origin = yardMTY
	doc.OriginID = yardMTY.ID
	assert.False(t, eval.IsComplete(doc))
}

func TestIsComplete_TipoDesconocido(t *testing.T) {
	eval := completion.NewEvaluator(nil)
	doc := completeShipment()
	doc.Kind = "INVOICE"
	assert.False(t, eval.IsComplete(doc))
}
