package lifecycle

import (
	"strings"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Completeness es el contrato mínimo del evaluador de completitud.
type Completeness interface {
	IsComplete(doc *entity.Document) bool
}

// StateMachine es dueña del campo Status de un documento.
//
//	PENDING ⇄ COMPLETE → AUDITED (terminal)
//	PENDING | COMPLETE → CANCELLED (terminal, solo embarques)
//
// PENDING y COMPLETE nunca se asignan desde fuera: se recalculan en cada guardado.
type StateMachine struct {
	eval Completeness
}

// New construye la máquina de estados.
func New(eval Completeness) *StateMachine {
	return &StateMachine{eval: eval}
}

// OnSave se aplica en cada create/update. previous es el estado persistido antes
// de la operación ("" para documentos nuevos). Ignora cualquier Status que traiga doc.
func (sm *StateMachine) OnSave(previous entity.DocumentStatus, doc *entity.Document) error {
	switch previous {
	case entity.StatusAudited:
		return domain.ErrImmutableState
	case entity.StatusCancelled:
		doc.Status = entity.StatusCancelled
		return nil
	}
	if sm.eval.IsComplete(doc) {
		doc.Status = entity.StatusComplete
	} else {
		doc.Status = entity.StatusPending
	}
	return nil
}

// Audit bloquea el documento. Solo desde COMPLETE; registra actor y fecha.
func (sm *StateMachine) Audit(doc *entity.Document, actor string, at time.Time) error {
	switch doc.Status {
	case entity.StatusAudited:
		return domain.ErrAlreadyAudited
	case entity.StatusComplete:
	default:
		return domain.ErrNotComplete
	}
	if strings.TrimSpace(actor) == "" {
		return domain.NewValidationError("actor", "requerido para auditar")
	}
	doc.Status = entity.StatusAudited
	doc.AuditedBy = actor
	doc.AuditedAt = &at
	doc.UpdatedAt = at
	return nil
}

// Cancel cierra un embarque no auditado.
func (sm *StateMachine) Cancel(doc *entity.Document, actor string, at time.Time) error {
	switch doc.Status {
	case entity.StatusAudited:
		return domain.ErrImmutableState
	case entity.StatusCancelled:
		return domain.ErrInvalidTransition
	}
	if doc.Kind != entity.KindShipment {
		return domain.ErrInvalidTransition
	}
	doc.Status = entity.StatusCancelled
	doc.CancelledBy = actor
	doc.CancelledAt = &at
	doc.UpdatedAt = at
	return nil
}

// CheckDelete rechaza la eliminación de documentos auditados.
func (sm *StateMachine) CheckDelete(doc *entity.Document) error {
	if doc.IsAudited() {
		return domain.ErrImmutableState
	}
	return nil
}
