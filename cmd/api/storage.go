package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Logistica-api/internal/application/documents"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/catalogxml"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Logistica-api/pkg/config"
)

// txRunner lo cumplen tanto postgres.TxRunner como memory.Store.
type txRunner interface {
	documents.TxRunner
	inventory.TxRunner
	reconciliation.TxRunner
}

// storage repositorios y transacciones del driver elegido.
type storage struct {
	tx        txRunner
	locations repository.LocationRepository
	materials repository.MaterialRepository
	documents repository.DocumentRepository
	inventory repository.InventoryRepository
	transfers repository.TransferRepository
	runs      repository.ReconciliationRunRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return openMemory(cfg, log)
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool),
		locations: postgres.NewLocationRepository(pool),
		materials: postgres.NewMaterialRepository(pool),
		documents: postgres.NewDocumentRepository(pool),
		inventory: postgres.NewInventoryRepository(pool),
		transfers: postgres.NewTransferRepository(pool),
		runs:      postgres.NewReconciliationRunRepository(pool),
		close:     pool.Close,
	}, nil
}

// openMemory arma el driver en memoria. Sin CATALOG_FILE el catálogo queda vacío.
func openMemory(cfg *config.Config, log zerolog.Logger) (*storage, error) {
	store := memory.NewStore()
	cat := store.Catalog()
	if cfg.Storage.CatalogFile != "" {
		seed, err := catalogxml.Load(cfg.Storage.CatalogFile)
		if err != nil {
			return nil, err
		}
		for _, l := range seed.Locations {
			cat.AddLocation(l)
		}
		for _, m := range seed.Materials {
			cat.AddMaterial(m)
		}
		log.Info().Int("locations", len(seed.Locations)).Int("materials", len(seed.Materials)).Msg("catálogo cargado")
	} else {
		log.Warn().Msg("driver memory sin CATALOG_FILE: catálogo vacío")
	}
	return &storage{
		tx:        store,
		locations: cat.Locations(),
		materials: cat.Materials(),
		documents: store.Documents(),
		inventory: store.Inventory(),
		transfers: store.Transfers(),
		runs:      store.Runs(),
		close:     func() {},
	}, nil
}
