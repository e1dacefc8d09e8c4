package reconciliation

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// TxRunner ejecuta la conciliación dentro de una sola transacción: si algo falla
// el libro queda exactamente como estaba.
type TxRunner interface {
	RunReconciliation(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		docRepo repository.DocumentRepository,
	) error) error
}

// Lock garantiza que una sola conciliación corre a la vez, también entre réplicas del servicio.
// Si el candado está tomado devuelve domain.ErrReconciliationRunning sin ejecutar fn.
type Lock interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
