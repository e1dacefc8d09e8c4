package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Logistica-api/internal/application/documents"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var (
	_ documents.TxRunner      = (*TxRunner)(nil)
	_ inventory.TxRunner      = (*TxRunner)(nil)
	_ reconciliation.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDocuments transacción para mutaciones de documentos (bloqueo por fila).
func (r *TxRunner) RunDocuments(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error {
	return r.run(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewDocumentRepository(tx))
	})
}

// RunLedger transacción para traspasos: libro e historial en la misma tx.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	transferRepo repository.TransferRepository,
) error) error {
	return r.run(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewInventoryRepository(tx), NewTransferRepository(tx))
	})
}

// RunReconciliation transacción REPEATABLE READ: los documentos se leen sobre una sola foto
// mientras el libro está bloqueado en modo exclusivo.
func (r *TxRunner) RunReconciliation(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	docRepo repository.DocumentRepository,
) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		return fn(NewInventoryRepository(tx), NewDocumentRepository(tx))
	})
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
