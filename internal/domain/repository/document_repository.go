package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
)

// DocumentFilter filtros para listar documentos.
type DocumentFilter struct {
	Kind   entity.DocumentKind
	Status entity.DocumentStatus
	Limit  int
	Offset int
}

// DocumentRepository puerto de persistencia para documentos y sus partidas.
// Los documentos con DeletedAt no se devuelven en GetByID, GetForUpdate ni List.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate bloquea la fila del documento (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// Update reescribe cabecera y partidas solo si el estado persistido no es AUDITED;
	// en caso contrario devuelve domain.ErrImmutableState sin escribir nada.
	Update(ctx context.Context, doc *entity.Document) error
	// SoftDelete marca el documento como eliminado con la misma guarda que Update.
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
	// ListReplayMovements devuelve una fila por partida de todo documento PENDING, COMPLETE o AUDITED
	// no eliminado, con las banderas de patio ya resueltas.
	ListReplayMovements(ctx context.Context) ([]inventory.Movement, error)
}
