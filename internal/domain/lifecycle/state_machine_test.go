package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/lifecycle"
)

// fixedCompleteness simula el evaluador con un resultado fijo.
type fixedCompleteness bool

func (f fixedCompleteness) IsComplete(*entity.Document) bool { return bool(f) }

var now = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

func TestOnSave_RecalculaEstadoIgnorandoElDelLlamador(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(false))
	doc := &entity.Document{Kind: entity.KindShipment, Status: entity.StatusComplete}

	require.NoError(t, sm.OnSave(entity.StatusPending, doc))
	assert.Equal(t, entity.StatusPending, doc.Status, "el estado enviado por el llamador se ignora")

	sm = lifecycle.New(fixedCompleteness(true))
	doc.Status = entity.StatusPending
	require.NoError(t, sm.OnSave(entity.StatusPending, doc))
	assert.Equal(t, entity.StatusComplete, doc.Status)
}

func TestOnSave_NoPermiteAuditarDesdeElGuardado(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	doc := &entity.Document{Kind: entity.KindShipment, Status: entity.StatusAudited}

	require.NoError(t, sm.OnSave(entity.StatusComplete, doc))
	assert.Equal(t, entity.StatusComplete, doc.Status)
}

func TestOnSave_AuditadoEsInmutable(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	doc := &entity.Document{Kind: entity.KindShipment, Status: entity.StatusAudited}

	err := sm.OnSave(entity.StatusAudited, doc)
	assert.True(t, errors.Is(err, domain.ErrImmutableState))
}

func TestOnSave_CanceladoSigueCancelado(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	doc := &entity.Document{Kind: entity.KindShipment}

	require.NoError(t, sm.OnSave(entity.StatusCancelled, doc))
	assert.Equal(t, entity.StatusCancelled, doc.Status)
}

// ── Auditoría ────────────────────────────────────────────────────────────────

func TestAudit_PendienteRetornaNoCompleto(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(false))
	doc := &entity.Document{Status: entity.StatusPending}

	err := sm.Audit(doc, "user-1", now)
	assert.ErrorIs(t, err, domain.ErrNotComplete)
	assert.Equal(t, entity.StatusPending, doc.Status)
	assert.Nil(t, doc.AuditedAt)
}

func TestAudit_CompletoUnaSolaVez(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	doc := &entity.Document{Status: entity.StatusComplete}

	require.NoError(t, sm.Audit(doc, "user-1", now))
	assert.Equal(t, entity.StatusAudited, doc.Status)
	assert.Equal(t, "user-1", doc.AuditedBy)
	require.NotNil(t, doc.AuditedAt)
	assert.True(t, doc.AuditedAt.Equal(now))

	err := sm.Audit(doc, "user-2", now.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrAlreadyAudited)
	assert.Equal(t, "user-1", doc.AuditedBy, "la segunda auditoría no cambia el actor")
}

func TestAudit_SinActorEsValidacion(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	doc := &entity.Document{Status: entity.StatusComplete}

	err := sm.Audit(doc, " ", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.StatusComplete, doc.Status)
}

// ── Cancelación y borrado ────────────────────────────────────────────────────

func TestCancel_SoloEmbarques(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))

	shipment := &entity.Document{Kind: entity.KindShipment, Status: entity.StatusPending}
	require.NoError(t, sm.Cancel(shipment, "user-1", now))
	assert.Equal(t, entity.StatusCancelled, shipment.Status)

	err := sm.Cancel(shipment, "user-1", now)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "cancelado es terminal")

	record := &entity.Document{Kind: entity.KindLogisticsRecord, Status: entity.StatusComplete}
	assert.ErrorIs(t, sm.Cancel(record, "user-1", now), domain.ErrInvalidTransition)
}

func TestCancel_AuditadoEsInmutable(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	doc := &entity.Document{Kind: entity.KindShipment, Status: entity.StatusAudited}

	assert.ErrorIs(t, sm.Cancel(doc, "user-1", now), domain.ErrImmutableState)
	assert.Equal(t, entity.StatusAudited, doc.Status)
}

func TestCheckDelete(t *testing.T) {
	sm := lifecycle.New(fixedCompleteness(true))
	assert.NoError(t, sm.CheckDelete(&entity.Document{Status: entity.StatusComplete}))
	assert.ErrorIs(t, sm.CheckDelete(&entity.Document{Status: entity.StatusAudited}), domain.ErrImmutableState)
}
