package inventory

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de traspasos: o se aplican ambos lados o ninguno.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		transferRepo repository.TransferRepository,
	) error) error
}
