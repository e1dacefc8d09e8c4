package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func kg(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newStore() *memory.Store {
	store := memory.NewStore()
	cat := store.Catalog()
	cat.AddLocation(entity.Location{ID: "mty", Code: "MTY", Name: "Patio Monterrey", IsYard: true})
	cat.AddLocation(entity.Location{ID: "nld", Code: "NLD", Name: "Patio Nuevo Laredo", IsYard: true})
	cat.AddLocation(entity.Location{ID: "cli", Code: "CLI", Name: "Cliente"})
	cat.AddLocation(entity.Location{ID: "prov", Code: "PROV", Name: "Proveedor"})
	cat.AddMaterial(entity.Material{ID: "acero", Code: "ACERO", Name: "Chatarra de acero"})
	return store
}

func newEngine(store *memory.Store, txRunner inventory.TxRunner) *inventory.TransferPostingEngine {
	cat := store.Catalog()
	return inventory.NewTransferPostingEngine(txRunner, store.Inventory(), store.Transfers(),
		cat.Locations(), cat.Materials(), zerolog.Nop())
}

// seed deja saldo inicial en un patio.
func seed(t *testing.T, store *memory.Store, loc string, qty string) {
	t.Helper()
	err := store.RunLedger(context.Background(), func(invRepo repository.InventoryRepository, _ repository.TransferRepository) error {
		return invRepo.Increment(context.Background(), loc, "acero", kg(qty))
	})
	require.NoError(t, err)
}

func quantity(t *testing.T, e *inventory.TransferPostingEngine, loc string) decimal.Decimal {
	t.Helper()
	got, err := e.GetInventory(context.Background(), loc, "acero")
	require.NoError(t, err)
	return got.Quantity
}

// failingTransfers hace fallar el registro del traspaso después de mover el libro.
type failingTransfers struct {
	*memory.Store
}

func (f failingTransfers) RunLedger(ctx context.Context, fn func(repository.InventoryRepository, repository.TransferRepository) error) error {
	return f.Store.RunLedger(ctx, func(invRepo repository.InventoryRepository, _ repository.TransferRepository) error {
		return fn(invRepo, brokenTransferRepo{})
	})
}

type brokenTransferRepo struct{}

func (brokenTransferRepo) Create(context.Context, *entity.StockTransfer) error {
	return errors.New("disco lleno")
}

func (brokenTransferRepo) ListByLocation(context.Context, string, int, int) ([]*entity.StockTransfer, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// PostTransfer
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: MTY tiene 600, NLD tiene 400; se traspasan 250 de MTY a NLD.
func TestPostTransfer_MueveEntrePatios(t *testing.T) {
	store := newStore()
	engine := newEngine(store, store)
	seed(t, store, "mty", "600")
	seed(t, store, "nld", "400")

	resp, err := engine.PostTransfer(context.Background(), inventory.TransferInput{
		UserID: "u-1", OriginID: "mty", DestinationID: "nld", MaterialID: "acero",
		Amount: kg("250"), Notes: "  reacomodo  ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "reacomodo", resp.Notes)
	assert.Equal(t, "u-1", resp.CreatedBy)

	assert.True(t, quantity(t, engine, "mty").Equal(kg("350")))
	assert.True(t, quantity(t, engine, "nld").Equal(kg("650")))

	history, err := engine.ListTransfers(context.Background(), "mty", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resp.ID, history[0].ID)
}

func TestPostTransfer_StockInsuficienteNoCambiaNada(t *testing.T) {
	store := newStore()
	engine := newEngine(store, store)
	seed(t, store, "mty", "600")

	_, err := engine.PostTransfer(context.Background(), inventory.TransferInput{
		OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("700"),
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(kg("600")))
	assert.True(t, stockErr.Requested.Equal(kg("700")))

	assert.True(t, quantity(t, engine, "mty").Equal(kg("600")))
	assert.True(t, quantity(t, engine, "nld").IsZero())
	history, err := engine.ListTransfers(context.Background(), "mty", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPostTransfer_FalloAlRegistrarRevierteElLibro(t *testing.T) {
	store := newStore()
	engine := newEngine(store, failingTransfers{store})
	seed(t, store, "mty", "600")

	_, err := engine.PostTransfer(context.Background(), inventory.TransferInput{
		OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("100"),
	})
	require.Error(t, err)
	assert.True(t, quantity(t, engine, "mty").Equal(kg("600")), "la resta se revierte")
	assert.True(t, quantity(t, engine, "nld").IsZero(), "la suma se revierte")
}

func TestPostTransfer_OrigenNoPatioSoloSumaAlDestino(t *testing.T) {
	store := newStore()
	engine := newEngine(store, store)

	_, err := engine.PostTransfer(context.Background(), inventory.TransferInput{
		OriginID: "prov", DestinationID: "mty", MaterialID: "acero", Amount: kg("80.5"),
	})
	require.NoError(t, err)
	assert.True(t, quantity(t, engine, "mty").Equal(kg("80.5")))

	list, err := engine.ListInventory(context.Background(), "prov")
	require.NoError(t, err)
	assert.Empty(t, list, "las ubicaciones que no son patio no llevan saldo")
}

func TestPostTransfer_Validaciones(t *testing.T) {
	store := newStore()
	engine := newEngine(store, store)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.TransferInput
		want error
	}{
		{"misma ubicación", inventory.TransferInput{OriginID: "mty", DestinationID: "mty", MaterialID: "acero", Amount: kg("1")}, domain.ErrSameLocation},
		{"cantidad cero", inventory.TransferInput{OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("0")}, domain.ErrInvalidInput},
		{"cantidad negativa", inventory.TransferInput{OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("-5")}, domain.ErrInvalidInput},
		{"sin material", inventory.TransferInput{OriginID: "mty", DestinationID: "nld", Amount: kg("1")}, domain.ErrInvalidInput},
		{"material desconocido", inventory.TransferInput{OriginID: "mty", DestinationID: "nld", MaterialID: "oro", Amount: kg("1")}, domain.ErrInvalidInput},
		{"ubicación desconocida", inventory.TransferInput{OriginID: "mty", DestinationID: "xxx", MaterialID: "acero", Amount: kg("1")}, domain.ErrInvalidInput},
		{"ningún patio", inventory.TransferInput{OriginID: "prov", DestinationID: "cli", MaterialID: "acero", Amount: kg("1")}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.PostTransfer(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// Escenario: NUMERIC(14,3) redondearía 1.0005; el traspaso se rechaza sin tocar el libro.
func TestPostTransfer_RechazaMasDeTresDecimales(t *testing.T) {
	store := newStore()
	seed(t, store, "mty", "2.000")
	engine := newEngine(store, store)

	_, err := engine.PostTransfer(context.Background(), inventory.TransferInput{
		OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("1.0005"),
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)
	assert.True(t, quantity(t, engine, "mty").Equal(kg("2")))
	assert.True(t, quantity(t, engine, "nld").IsZero())

	_, err = engine.PostTransfer(context.Background(), inventory.TransferInput{
		OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("1.500"),
	})
	require.NoError(t, err)
	assert.True(t, quantity(t, engine, "mty").Add(quantity(t, engine, "nld")).Equal(kg("2")))
}

func TestPostTransfer_RegistraSpanConError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	store := newStore()
	engine := newEngine(store, store)
	_, err := engine.PostTransfer(context.Background(), inventory.TransferInput{
		OriginID: "mty", DestinationID: "nld", MaterialID: "acero", Amount: kg("1"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "inventory.post_transfer", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events(), "el error queda registrado como evento")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetInventory_SinRegistroEsCero(t *testing.T) {
	store := newStore()
	engine := newEngine(store, store)

	got, err := engine.GetInventory(context.Background(), "nld", "acero")
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())

	_, err = engine.GetInventory(context.Background(), "", "acero")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
