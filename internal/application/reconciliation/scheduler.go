package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Scheduler dispara la conciliación según una expresión cron estándar (5 campos o descriptores @every/@daily).
type Scheduler struct {
	cron    *cron.Cron
	sweep   *Sweep
	log     zerolog.Logger
	timeout time.Duration
}

// NewScheduler valida la expresión y registra el trabajo. timeout acota cada corrida.
func NewScheduler(sweep *Sweep, expr string, timeout time.Duration, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweep:   sweep,
		log:     log,
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		return nil, fmt.Errorf("expresión cron inválida %q: %w", expr, err)
	}
	return s, nil
}

// Start arranca el planificador en segundo plano.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Time("next", s.cron.Entries()[0].Next).Msg("conciliación programada")
}

// Stop detiene el planificador y espera a que termine la corrida en curso, si la hay.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	// Run ya registra el resultado en log e historial.
	_, _ = s.sweep.Run(ctx, entity.ReconciliationTriggerScheduled)
}
