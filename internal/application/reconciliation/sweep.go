package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

// LockKey clave del candado exclusivo del libro.
const LockKey = "lock:reconciliation:ledger"

// Sweep reconstruye el libro de inventario desde los documentos vigentes.
//
// Dentro de una transacción toma acceso exclusivo al libro, pone todo en cero y
// reproduce cada partida de los documentos PENDING, COMPLETE y AUDITED no eliminados.
// Los traspasos explícitos no se reproducen: el stock que solo venía de traspasos se pierde.
type Sweep struct {
	txRunner TxRunner
	invRepo  repository.InventoryRepository
	docRepo  repository.DocumentRepository
	runRepo  repository.ReconciliationRunRepository
	lock     Lock
	log      zerolog.Logger
	now      func() time.Time
	timeout  time.Duration
}

// NewSweep construye el barrido. invRepo y docRepo se usan para la vista previa, fuera de tx.
func NewSweep(
	txRunner TxRunner,
	invRepo repository.InventoryRepository,
	docRepo repository.DocumentRepository,
	runRepo repository.ReconciliationRunRepository,
	lock Lock,
	log zerolog.Logger,
) *Sweep {
	if lock == nil {
		lock = NewLocalLock()
	}
	return &Sweep{
		txRunner: txRunner,
		invRepo:  invRepo,
		docRepo:  docRepo,
		runRepo:  runRepo,
		lock:     lock,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithTimeout acota cada corrida, programada o manual. Debe ser menor que la vigencia del candado.
func (s *Sweep) WithTimeout(d time.Duration) *Sweep {
	s.timeout = d
	return s
}

// Run ejecuta la conciliación y guarda la corrida en el historial, haya salido bien o no.
// Si algún saldo reconstruido queda negativo devuelve *domain.NegativeBalanceError y no escribe nada.
func (s *Sweep) Run(ctx context.Context, trigger string) (*dto.ReconciliationReport, error) {
	ctx, span := tracing.Start(ctx, "reconciliation.run", attribute.String("reconciliation.trigger", trigger))
	defer span.End()

	run := &entity.ReconciliationRun{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		StartedAt: s.now(),
	}
	log := s.log.With().Str("run_id", run.ID).Str("trigger", trigger).Logger()
	log.Info().Msg("conciliación iniciada")

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	err := s.lock.WithLock(runCtx, LockKey, func(ctx context.Context) error {
		return s.txRunner.RunReconciliation(ctx, func(invRepo repository.InventoryRepository, docRepo repository.DocumentRepository) error {
			return s.rebuild(ctx, invRepo, docRepo, run)
		})
	})
	run.FinishedAt = s.now()
	if err != nil {
		run.Status = entity.ReconciliationStatusFailed
		run.Error = err.Error()
		run.EntriesZeroed, run.EntriesWritten = 0, 0
		tracing.Fail(span, "conciliación fallida", err)
		log.Error().Err(err).Msg("conciliación fallida")
	} else {
		run.Status = entity.ReconciliationStatusSucceeded
		span.SetAttributes(
			attribute.Int("reconciliation.entries_zeroed", run.EntriesZeroed),
			attribute.Int("reconciliation.entries_written", run.EntriesWritten),
		)
		log.Info().
			Int("entries_zeroed", run.EntriesZeroed).
			Int("entries_written", run.EntriesWritten).
			Int("documents_read", run.DocumentsRead).
			Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
			Msg("conciliación terminada")
	}
	if recErr := s.runRepo.Create(ctx, run); recErr != nil {
		log.Error().Err(recErr).Msg("no se pudo guardar la corrida de conciliación")
	}
	if err != nil {
		return nil, err
	}
	return &dto.ReconciliationReport{
		RunID:          run.ID,
		Trigger:        run.Trigger,
		EntriesZeroed:  run.EntriesZeroed,
		EntriesWritten: run.EntriesWritten,
		DocumentsRead:  run.DocumentsRead,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
	}, nil
}

func (s *Sweep) rebuild(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	docRepo repository.DocumentRepository,
	run *entity.ReconciliationRun,
) error {
	if err := invRepo.LockLedger(ctx); err != nil {
		return err
	}
	zeroed, err := invRepo.ZeroAll(ctx)
	if err != nil {
		return err
	}
	movs, err := docRepo.ListReplayMovements(ctx)
	if err != nil {
		return err
	}
	balances := inventory.Replay(movs)
	if neg := inventory.Negatives(balances); len(neg) > 0 {
		keys := make([]string, 0, len(neg))
		for _, k := range neg {
			keys = append(keys, k.String())
		}
		return &domain.NegativeBalanceError{Keys: keys}
	}
	now := s.now()
	for _, k := range inventory.SortedKeys(balances) {
		entry := &entity.InventoryEntry{
			LocationID:  k.LocationID,
			MaterialID:  k.MaterialID,
			Quantity:    balances[k],
			LastUpdated: now,
		}
		if err := invRepo.Set(ctx, entry); err != nil {
			return err
		}
	}
	run.EntriesZeroed = zeroed
	run.EntriesWritten = len(balances)
	run.DocumentsRead = countDocuments(movs)
	return nil
}

// Preview calcula el libro reconstruido y su diferencia con el actual sin escribir nada.
func (s *Sweep) Preview(ctx context.Context) (*dto.ReconciliationPreview, error) {
	ctx, span := tracing.Start(ctx, "reconciliation.preview")
	defer span.End()

	entries, err := s.invRepo.ListAll(ctx)
	if err != nil {
		tracing.Fail(span, "no se pudo leer el libro", err)
		return nil, err
	}
	movs, err := s.docRepo.ListReplayMovements(ctx)
	if err != nil {
		tracing.Fail(span, "no se pudieron leer los documentos", err)
		return nil, err
	}
	current := make(map[inventory.Key]decimal.Decimal, len(entries))
	for _, e := range entries {
		current[inventory.Key{LocationID: e.LocationID, MaterialID: e.MaterialID}] = e.Quantity
	}
	replayed := inventory.Replay(movs)

	out := &dto.ReconciliationPreview{
		Entries:       len(replayed),
		DocumentsRead: countDocuments(movs),
		Drift:         make([]dto.DriftLine, 0),
	}
	for _, k := range inventory.Negatives(replayed) {
		out.Negative = append(out.Negative, k.String())
	}
	for _, d := range inventory.ComputeDrift(current, replayed) {
		out.Drift = append(out.Drift, dto.DriftLine{
			LocationID: d.LocationID,
			MaterialID: d.MaterialID,
			Current:    d.Current,
			Replayed:   d.Replayed,
			Difference: d.Difference,
		})
	}
	return out, nil
}

// ListRuns devuelve el historial de conciliaciones, más recientes primero.
func (s *Sweep) ListRuns(ctx context.Context, page dto.PageRequest) ([]dto.ReconciliationRunResponse, error) {
	page.DefaultPage()
	runs, err := s.runRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReconciliationRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, dto.ReconciliationRunResponse{
			ID:             r.ID,
			Trigger:        r.Trigger,
			Status:         r.Status,
			Error:          r.Error,
			EntriesZeroed:  r.EntriesZeroed,
			EntriesWritten: r.EntriesWritten,
			DocumentsRead:  r.DocumentsRead,
			StartedAt:      r.StartedAt,
			FinishedAt:     r.FinishedAt,
		})
	}
	return out, nil
}

func countDocuments(movs []inventory.Movement) int {
	seen := make(map[string]struct{}, len(movs))
	for _, m := range movs {
		seen[m.DocumentID] = struct{}{}
	}
	return len(seen)
}
