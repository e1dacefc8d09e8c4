package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryRepository puerto del libro de inventario por (ubicación, material).
// Usado dentro de transacciones para garantizar consistencia.
type InventoryRepository interface {
	// Get devuelve el saldo; si la entrada no existe devuelve cantidad cero sin crearla.
	Get(ctx context.Context, locationID, materialID string) (*entity.InventoryEntry, error)
	// GetForUpdate crea la entrada si no existe y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, locationID, materialID string) (*entity.InventoryEntry, error)
	// Increment suma amount de forma atómica, creando la entrada si hace falta.
	Increment(ctx context.Context, locationID, materialID string, amount decimal.Decimal) error
	// Decrement resta amount solo si el saldo alcanza; si no, devuelve *domain.InsufficientStockError.
	Decrement(ctx context.Context, locationID, materialID string, amount decimal.Decimal) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.InventoryEntry, error)
	ListAll(ctx context.Context) ([]*entity.InventoryEntry, error)
	// LockLedger toma acceso exclusivo a la tabla del libro hasta el fin de la transacción.
	LockLedger(ctx context.Context) error
	// ZeroAll pone en cero todas las entradas y devuelve cuántas había.
	ZeroAll(ctx context.Context) (int, error)
	// Set escribe un saldo absoluto (usado por la conciliación).
	Set(ctx context.Context, entry *entity.InventoryEntry) error
}

// TransferRepository puerto para el historial de traspasos.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockTransfer, error)
}

// ReconciliationRunRepository puerto para el historial de conciliaciones.
type ReconciliationRunRepository interface {
	Create(ctx context.Context, run *entity.ReconciliationRun) error
	List(ctx context.Context, limit, offset int) ([]*entity.ReconciliationRun, error)
}
