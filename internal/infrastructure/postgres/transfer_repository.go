package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var (
	_ repository.TransferRepository          = (*TransferRepo)(nil)
	_ repository.ReconciliationRunRepository = (*ReconciliationRunRepo)(nil)
)

// TransferRepo historial de traspasos sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create guarda el traspaso.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, origin_id, destination_id, material_id, amount, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, t.ID, t.OriginID, t.DestinationID, t.MaterialID, t.Amount, t.Notes, t.CreatedAt, t.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert stock transfer: %w", mapWriteError("transfer", err))
	}
	return nil
}

// ListByLocation traspasos donde la ubicación es origen o destino, más recientes primero.
func (r *TransferRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockTransfer, error) {
	query := `
		SELECT id, origin_id, destination_id, material_id, amount, notes, created_at, created_by
		FROM stock_transfers
		WHERE origin_id = $1 OR destination_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		var t entity.StockTransfer
		if err := rows.Scan(&t.ID, &t.OriginID, &t.DestinationID, &t.MaterialID, &t.Amount, &t.Notes, &t.CreatedAt, &t.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// ReconciliationRunRepo historial de conciliaciones sobre PostgreSQL.
type ReconciliationRunRepo struct {
	q Querier
}

// NewReconciliationRunRepository construye el adaptador.
func NewReconciliationRunRepository(q Querier) *ReconciliationRunRepo {
	return &ReconciliationRunRepo{q: q}
}

// Create guarda la corrida.
func (r *ReconciliationRunRepo) Create(ctx context.Context, run *entity.ReconciliationRun) error {
	query := `
		INSERT INTO reconciliation_runs (id, run_trigger, status, error, entries_zeroed, entries_written,
		                                 documents_read, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, run.ID, run.Trigger, run.Status, run.Error,
		run.EntriesZeroed, run.EntriesWritten, run.DocumentsRead, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert reconciliation run: %w", err)
	}
	return nil
}

// List corridas más recientes primero.
func (r *ReconciliationRunRepo) List(ctx context.Context, limit, offset int) ([]*entity.ReconciliationRun, error) {
	query := `
		SELECT id, run_trigger, status, error, entries_zeroed, entries_written, documents_read, started_at, finished_at
		FROM reconciliation_runs ORDER BY started_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reconciliation runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReconciliationRun
	for rows.Next() {
		var run entity.ReconciliationRun
		if err := rows.Scan(&run.ID, &run.Trigger, &run.Status, &run.Error, &run.EntriesZeroed,
			&run.EntriesWritten, &run.DocumentsRead, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan reconciliation run: %w", err)
		}
		list = append(list, &run)
	}
	return list, rows.Err()
}
