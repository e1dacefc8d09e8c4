//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Logistica-api/internal/application/documents"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/completion"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
)

// setupPool levanta un PostgreSQL desechable, aplica las migraciones y siembra el catálogo.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("logistica"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(pool, zerolog.Nop()))
	require.NoError(t, postgres.Migrate(pool, zerolog.Nop()), "sin cambios pendientes no es error")

	locs := postgres.NewLocationRepository(pool)
	for _, l := range []entity.Location{
		{ID: "mty", Code: "MTY", Name: "Patio Monterrey", IsYard: true},
		{ID: "nld", Code: "NLD", Name: "Patio Nuevo Laredo", IsYard: true},
		{ID: "prov", Code: "PROV", Name: "Proveedor"},
		{ID: "cli", Code: "CLI", Name: "Cliente"},
	} {
		require.NoError(t, locs.Upsert(ctx, &l))
	}
	require.NoError(t, postgres.NewMaterialRepository(pool).Upsert(ctx, &entity.Material{ID: "acero", Code: "ACERO", Name: "Chatarra de acero"}))
	return pool
}

func kg(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type services struct {
	docs     *documents.UseCase
	engine   *inventory.TransferPostingEngine
	sweep    *reconciliation.Sweep
	invRepo  *postgres.InventoryRepo
	locRepo  *postgres.LocationRepo
	txRunner *postgres.TxRunner
}

func newServices(pool *pgxpool.Pool) services {
	txRunner := postgres.NewTxRunner(pool)
	locRepo := postgres.NewLocationRepository(pool)
	matRepo := postgres.NewMaterialRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	invRepo := postgres.NewInventoryRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	runRepo := postgres.NewReconciliationRunRepository(pool)
	log := zerolog.Nop()
	return services{
		docs:     documents.NewUseCase(txRunner, docRepo, locRepo, matRepo, completion.NewEvaluator(nil), log),
		engine:   inventory.NewTransferPostingEngine(txRunner, invRepo, transferRepo, locRepo, matRepo, log),
		sweep:    reconciliation.NewSweep(txRunner, invRepo, docRepo, runRepo, nil, log),
		invRepo:  invRepo,
		locRepo:  locRepo,
		txRunner: txRunner,
	}
}

func TestIntegration_ConciliacionYTraspasos(t *testing.T) {
	pool := setupPool(t)
	svc := newServices(pool)
	ctx := context.Background()

	_, err := svc.docs.Create(ctx, dto.CreateDocumentRequest{
		Kind: "SHIPMENT", OriginID: "prov", DestinationID: "mty",
		Fields: map[string]string{"folio": "E-1"},
		Lines:  []dto.LineItemRequest{{MaterialID: "acero", WeightOut: kg("1010"), WeightIn: kg("1000")}},
	})
	require.NoError(t, err)
	_, err = svc.docs.Create(ctx, dto.CreateDocumentRequest{
		Kind: "SHIPMENT", OriginID: "mty", DestinationID: "nld",
		Lines: []dto.LineItemRequest{{MaterialID: "acero", CounterpartyID: "cli", WeightOut: kg("400"), WeightIn: kg("398.5")}},
	})
	require.NoError(t, err)

	report, err := svc.sweep.Run(ctx, entity.ReconciliationTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 2, report.EntriesWritten)
	assert.Equal(t, 2, report.DocumentsRead)

	mty, err := svc.invRepo.Get(ctx, "mty", "acero")
	require.NoError(t, err)
	assert.True(t, mty.Quantity.Equal(kg("600")), "got %s", mty.Quantity)

	// Idempotente: una segunda corrida deja el mismo libro.
	report, err = svc.sweep.Run(ctx, entity.ReconciliationTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 2, report.EntriesZeroed)
	mty, err = svc.invRepo.Get(ctx, "mty", "acero")
	require.NoError(t, err)
	assert.True(t, mty.Quantity.Equal(kg("600")))

	_, err = svc.engine.PostTransfer(ctx, inventory.TransferInput{
		UserID: "u-1", OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("700"),
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(kg("600")))

	_, err = svc.engine.PostTransfer(ctx, inventory.TransferInput{
		UserID: "u-1", OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("100"),
	})
	require.NoError(t, err)
	nld, err := svc.engine.GetInventory(ctx, "nld", "acero")
	require.NoError(t, err)
	assert.True(t, nld.Quantity.Equal(kg("498.5")))

	history, err := svc.engine.ListTransfers(ctx, "nld", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)

	runs, err := svc.sweep.ListRuns(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestIntegration_TraspasosConcurrentesNoSobregiran(t *testing.T) {
	pool := setupPool(t)
	svc := newServices(pool)
	ctx := context.Background()

	require.NoError(t, svc.txRunner.RunLedger(ctx, func(invRepo repository.InventoryRepository, _ repository.TransferRepository) error {
		return invRepo.Increment(ctx, "mty", "acero", kg("100"))
	}))

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.engine.PostTransfer(ctx, inventory.TransferInput{
				UserID: "u-1", OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("30"),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 3, ok, "solo caben tres traspasos de 30 en 100")

	mty, err := svc.invRepo.Get(ctx, "mty", "acero")
	require.NoError(t, err)
	assert.True(t, mty.Quantity.Equal(kg("10")))
}

func TestIntegration_AuditadoNoAdmiteCambios(t *testing.T) {
	pool := setupPool(t)
	svc := newServices(pool)
	ctx := context.Background()

	created, err := svc.docs.Create(ctx, dto.CreateDocumentRequest{
		Kind: "MILL_INBOUND", OriginID: "mty", DestinationID: "cli",
		Fields:   map[string]string{"mill_ticket": "ML-1", "received_at": "2024-05-03"},
		Evidence: map[string]string{completion.EvidenceMillWeighTicket: "s3://t.jpg"},
		Lines:    []dto.LineItemRequest{{MaterialID: "acero", WeightIn: kg("7")}},
	})
	require.NoError(t, err)

	updated, err := svc.docs.Update(ctx, created.ID, dto.UpdateDocumentRequest{})
	require.NoError(t, err)
	require.Equal(t, string(entity.StatusComplete), updated.Status)

	audited, err := svc.docs.Audit(ctx, created.ID, "auditor-1")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusAudited), audited.Status)

	_, err = svc.docs.Update(ctx, created.ID, dto.UpdateDocumentRequest{Fields: map[string]string{"mill_ticket": "X"}})
	assert.ErrorIs(t, err, domain.ErrImmutableState)
	assert.ErrorIs(t, svc.docs.Delete(ctx, created.ID), domain.ErrImmutableState)

	_, err = svc.docs.Audit(ctx, created.ID, "auditor-2")
	assert.ErrorIs(t, err, domain.ErrAlreadyAudited)

	got, err := svc.docs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ML-1", got.Fields["mill_ticket"])
	assert.Equal(t, "auditor-1", got.AuditedBy)
}
