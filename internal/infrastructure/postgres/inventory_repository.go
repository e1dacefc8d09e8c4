package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación del libro sobre PostgreSQL (usable con pool o tx).
// La columna quantity tiene CHECK (quantity >= 0): ningún camino puede dejar saldo negativo.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get obtiene el saldo actual; cero si la entrada no existe.
func (r *InventoryRepo) Get(ctx context.Context, locationID, materialID string) (*entity.InventoryEntry, error) {
	query := `
		SELECT location_id, material_id, quantity, last_updated
		FROM inventory_entries WHERE location_id = $1 AND material_id = $2`
	var e entity.InventoryEntry
	err := r.q.QueryRow(ctx, query, locationID, materialID).Scan(&e.LocationID, &e.MaterialID, &e.Quantity, &e.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryEntry{LocationID: locationID, MaterialID: materialID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get inventory entry: %w", err)
	}
	return &e, nil
}

// GetForUpdate crea la entrada en cero si no existe y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, locationID, materialID string) (*entity.InventoryEntry, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_entries (location_id, material_id, quantity, last_updated)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (location_id, material_id) DO NOTHING`, locationID, materialID)
	if err != nil {
		return nil, fmt.Errorf("ensure inventory entry: %w", mapWriteError("location_id", err))
	}
	query := `
		SELECT location_id, material_id, quantity, last_updated
		FROM inventory_entries WHERE location_id = $1 AND material_id = $2
		FOR UPDATE`
	var e entity.InventoryEntry
	if err := r.q.QueryRow(ctx, query, locationID, materialID).Scan(&e.LocationID, &e.MaterialID, &e.Quantity, &e.LastUpdated); err != nil {
		return nil, fmt.Errorf("get inventory entry for update: %w", err)
	}
	return &e, nil
}

// Increment suma de forma atómica (upsert relativo).
func (r *InventoryRepo) Increment(ctx context.Context, locationID, materialID string, amount decimal.Decimal) error {
	query := `
		INSERT INTO inventory_entries (location_id, material_id, quantity, last_updated)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (location_id, material_id)
		DO UPDATE SET quantity = inventory_entries.quantity + EXCLUDED.quantity, last_updated = now()`
	if _, err := r.q.Exec(ctx, query, locationID, materialID, amount); err != nil {
		return fmt.Errorf("increment inventory: %w", mapWriteError("location_id", err))
	}
	return nil
}

// Decrement resta solo si el saldo alcanza (UPDATE condicional); si no, InsufficientStockError.
func (r *InventoryRepo) Decrement(ctx context.Context, locationID, materialID string, amount decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_entries SET quantity = quantity - $3, last_updated = now()
		WHERE location_id = $1 AND material_id = $2 AND quantity >= $3`, locationID, materialID, amount)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	cur, err := r.Get(ctx, locationID, materialID)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{
		LocationID: locationID,
		MaterialID: materialID,
		Available:  cur.Quantity,
		Requested:  amount,
	}
}

// ListByLocation saldos de un patio ordenados por material.
func (r *InventoryRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.InventoryEntry, error) {
	return r.list(ctx, `
		SELECT location_id, material_id, quantity, last_updated
		FROM inventory_entries WHERE location_id = $1 ORDER BY material_id`, locationID)
}

// ListAll todo el libro ordenado por (ubicación, material).
func (r *InventoryRepo) ListAll(ctx context.Context) ([]*entity.InventoryEntry, error) {
	return r.list(ctx, `
		SELECT location_id, material_id, quantity, last_updated
		FROM inventory_entries ORDER BY location_id, material_id`)
}

func (r *InventoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryEntry, 0)
	for rows.Next() {
		var e entity.InventoryEntry
		if err := rows.Scan(&e.LocationID, &e.MaterialID, &e.Quantity, &e.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan inventory entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// LockLedger bloquea la tabla del libro en modo EXCLUSIVE: se permiten lecturas simples,
// pero SELECT FOR UPDATE y escrituras de otras transacciones esperan al commit.
func (r *InventoryRepo) LockLedger(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `LOCK TABLE inventory_entries IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	return nil
}

// ZeroAll pone todas las entradas en cero y devuelve cuántas había.
func (r *InventoryRepo) ZeroAll(ctx context.Context) (int, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE inventory_entries SET quantity = 0, last_updated = now()`)
	if err != nil {
		return 0, fmt.Errorf("zero inventory: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// Set escribe un saldo absoluto (upsert).
func (r *InventoryRepo) Set(ctx context.Context, e *entity.InventoryEntry) error {
	query := `
		INSERT INTO inventory_entries (location_id, material_id, quantity, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (location_id, material_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, last_updated = EXCLUDED.last_updated`
	if _, err := r.q.Exec(ctx, query, e.LocationID, e.MaterialID, e.Quantity, e.LastUpdated); err != nil {
		return fmt.Errorf("set inventory: %w", mapWriteError("quantity", err))
	}
	return nil
}
