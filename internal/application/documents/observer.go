package documents

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// LogObserver deja constancia en el log de auditorías y cancelaciones.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver construye el observador.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) DocumentAudited(_ context.Context, doc entity.Document) {
	o.log.Info().
		Str("document_id", doc.ID).
		Str("kind", string(doc.Kind)).
		Str("audited_by", doc.AuditedBy).
		Int("lines", len(doc.Lines)).
		Msg("documento auditado")
}

func (o *LogObserver) DocumentCancelled(_ context.Context, doc entity.Document) {
	o.log.Info().
		Str("document_id", doc.ID).
		Str("kind", string(doc.Kind)).
		Str("cancelled_by", doc.CancelledBy).
		Msg("documento cancelado")
}
