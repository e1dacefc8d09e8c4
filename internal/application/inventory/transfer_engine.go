package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

// TransferPostingEngine registra traspasos explícitos entre ubicaciones de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) sobre las entradas del libro antes de leerlas.
// Los documentos no pasan por aquí: su efecto en el libro solo lo aplica la conciliación.
type TransferPostingEngine struct {
	txRunner     TxRunner
	invRepo      repository.InventoryRepository
	transferRepo repository.TransferRepository
	locationRepo repository.LocationRepository
	materialRepo repository.MaterialRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewTransferPostingEngine construye el motor. invRepo y transferRepo se usan para consultas fuera de tx.
func NewTransferPostingEngine(
	txRunner TxRunner,
	invRepo repository.InventoryRepository,
	transferRepo repository.TransferRepository,
	locationRepo repository.LocationRepository,
	materialRepo repository.MaterialRepository,
	log zerolog.Logger,
) *TransferPostingEngine {
	return &TransferPostingEngine{
		txRunner:     txRunner,
		invRepo:      invRepo,
		transferRepo: transferRepo,
		locationRepo: locationRepo,
		materialRepo: materialRepo,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// TransferInput entrada para registrar un traspaso.
type TransferInput struct {
	UserID        string
	OriginID      string
	DestinationID string
	MaterialID    string
	Amount        decimal.Decimal
	Notes         string
}

// PostTransfer resta del patio origen y suma al patio destino en la misma transacción.
// Las ubicaciones que no son patio no llevan saldo: si el origen no es patio no se valida disponibilidad.
func (e *TransferPostingEngine) PostTransfer(ctx context.Context, in TransferInput) (*dto.TransferResponse, error) {
	in.OriginID = strings.TrimSpace(in.OriginID)
	in.DestinationID = strings.TrimSpace(in.DestinationID)
	in.MaterialID = strings.TrimSpace(in.MaterialID)

	ctx, span := tracing.Start(ctx, "inventory.post_transfer",
		attribute.String("transfer.origin_id", in.OriginID),
		attribute.String("transfer.destination_id", in.DestinationID),
		attribute.String("transfer.material_id", in.MaterialID),
		attribute.String("transfer.amount", in.Amount.String()),
	)
	defer span.End()

	origin, dest, err := e.validate(ctx, in)
	if err != nil {
		tracing.Fail(span, "traspaso inválido", err)
		return nil, err
	}

	now := e.now()
	transfer := &entity.StockTransfer{
		ID:            uuid.New().String(),
		OriginID:      in.OriginID,
		DestinationID: in.DestinationID,
		MaterialID:    in.MaterialID,
		Amount:        in.Amount,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		CreatedBy:     in.UserID,
	}

	// Inicia transacción; Commit si todo ok, Rollback si algo falla (TxRunner.RunLedger lo hace)
	err = e.txRunner.RunLedger(ctx, func(invRepo repository.InventoryRepository, transferRepo repository.TransferRepository) error {
		return e.doTransfer(ctx, invRepo, transferRepo, origin, dest, transfer)
	})
	if err != nil {
		tracing.Fail(span, "traspaso rechazado", err)
		e.log.Warn().Err(err).
			Str("location_id", in.OriginID).
			Str("destination_id", in.DestinationID).
			Str("material_id", in.MaterialID).
			Str("amount", in.Amount.String()).
			Msg("traspaso rechazado")
		return nil, err
	}
	e.log.Info().
		Str("transfer_id", transfer.ID).
		Str("location_id", in.OriginID).
		Str("destination_id", in.DestinationID).
		Str("material_id", in.MaterialID).
		Str("amount", in.Amount.String()).
		Msg("traspaso registrado")
	return toTransferResponse(transfer), nil
}

// doTransfer bloquea las entradas de los patios involucrados en orden (ubicación, material)
// para que dos traspasos cruzados no se bloqueen mutuamente; luego valida, resta, suma y registra.
func (e *TransferPostingEngine) doTransfer(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	transferRepo repository.TransferRepository,
	origin, dest *entity.Location,
	t *entity.StockTransfer,
) error {
	yards := make([]string, 0, 2)
	if origin.IsYard {
		yards = append(yards, origin.ID)
	}
	if dest.IsYard {
		yards = append(yards, dest.ID)
	}
	sort.Strings(yards)

	locked := make(map[string]*entity.InventoryEntry, len(yards))
	for _, locID := range yards {
		entry, err := invRepo.GetForUpdate(ctx, locID, t.MaterialID)
		if err != nil {
			return err
		}
		locked[locID] = entry
	}

	if origin.IsYard {
		available := locked[origin.ID].Quantity
		if available.LessThan(t.Amount) {
			return &domain.InsufficientStockError{
				LocationID: origin.ID,
				MaterialID: t.MaterialID,
				Available:  available,
				Requested:  t.Amount,
			}
		}
		if err := invRepo.Decrement(ctx, origin.ID, t.MaterialID, t.Amount); err != nil {
			return err
		}
	}
	if dest.IsYard {
		if err := invRepo.Increment(ctx, dest.ID, t.MaterialID, t.Amount); err != nil {
			return err
		}
	}
	return transferRepo.Create(ctx, t)
}

func (e *TransferPostingEngine) validate(ctx context.Context, in TransferInput) (*entity.Location, *entity.Location, error) {
	switch {
	case in.OriginID == "":
		return nil, nil, domain.NewValidationError("origin_id", "requerido")
	case in.DestinationID == "":
		return nil, nil, domain.NewValidationError("destination_id", "requerido")
	case in.MaterialID == "":
		return nil, nil, domain.NewValidationError("material_id", "requerido")
	case !in.Amount.IsPositive():
		return nil, nil, domain.NewValidationError("amount", "debe ser mayor que cero")
	case !entity.FitsQuantity(in.Amount):
		return nil, nil, domain.NewValidationError("amount", "máximo 3 decimales y 11 enteros")
	case in.OriginID == in.DestinationID:
		return nil, nil, domain.ErrSameLocation
	}
	locs, err := e.locationRepo.GetMany(ctx, []string{in.OriginID, in.DestinationID})
	if err != nil {
		return nil, nil, err
	}
	origin, dest := locs[in.OriginID], locs[in.DestinationID]
	if origin == nil {
		return nil, nil, domain.NewValidationError("origin_id", "ubicación no existe")
	}
	if dest == nil {
		return nil, nil, domain.NewValidationError("destination_id", "ubicación no existe")
	}
	if !origin.IsYard && !dest.IsYard {
		return nil, nil, domain.NewValidationError("origin_id", "al menos una de las ubicaciones debe ser patio")
	}
	mat, err := e.materialRepo.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, nil, err
	}
	if mat == nil {
		return nil, nil, domain.NewValidationError("material_id", "material no existe")
	}
	return origin, dest, nil
}

// GetInventory devuelve el saldo de un material en una ubicación; cero si nunca se registró.
func (e *TransferPostingEngine) GetInventory(ctx context.Context, locationID, materialID string) (*dto.InventoryEntryResponse, error) {
	locationID, materialID = strings.TrimSpace(locationID), strings.TrimSpace(materialID)
	if locationID == "" {
		return nil, domain.NewValidationError("location_id", "requerido")
	}
	if materialID == "" {
		return nil, domain.NewValidationError("material_id", "requerido")
	}
	entry, err := e.invRepo.Get(ctx, locationID, materialID)
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// ListInventory devuelve todos los saldos de un patio.
func (e *TransferPostingEngine) ListInventory(ctx context.Context, locationID string) ([]dto.InventoryEntryResponse, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, domain.NewValidationError("location_id", "requerido")
	}
	list, err := e.invRepo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryEntryResponse, 0, len(list))
	for _, entry := range list {
		out = append(out, *toEntryResponse(entry))
	}
	return out, nil
}

// ListTransfers lista los traspasos donde la ubicación es origen o destino, más recientes primero.
func (e *TransferPostingEngine) ListTransfers(ctx context.Context, locationID string, page dto.PageRequest) ([]dto.TransferResponse, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, domain.NewValidationError("location_id", "requerido")
	}
	page.DefaultPage()
	list, err := e.transferRepo.ListByLocation(ctx, locationID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

func toEntryResponse(e *entity.InventoryEntry) *dto.InventoryEntryResponse {
	return &dto.InventoryEntryResponse{
		LocationID:  e.LocationID,
		MaterialID:  e.MaterialID,
		Quantity:    e.Quantity,
		LastUpdated: e.LastUpdated,
	}
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:            t.ID,
		OriginID:      t.OriginID,
		DestinationID: t.DestinationID,
		MaterialID:    t.MaterialID,
		Amount:        t.Amount,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
}
