package documents

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el repositorio
// de documentos atado a esa tx. La fila leída con GetForUpdate queda bloqueada hasta el commit.
type TxRunner interface {
	RunDocuments(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error
}

// Observer se invoca después del commit, nunca dentro de la transacción.
// Recibe una copia del documento confirmado.
type Observer interface {
	DocumentAudited(ctx context.Context, doc entity.Document)
	DocumentCancelled(ctx context.Context, doc entity.Document)
}
