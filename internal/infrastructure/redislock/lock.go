// Package redislock implementa el candado de la conciliación con Redis (redsync),
// para que entre réplicas del servicio corra un solo barrido a la vez.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

var _ reconciliation.Lock = (*Lock)(nil)

// ErrEmptyKey la clave del candado no puede ir vacía.
var ErrEmptyKey = errors.New("clave de candado vacía")

// Lock candado distribuido sin reintentos: si otro proceso lo tiene, falla de inmediato.
type Lock struct {
	rs  *redsync.Redsync
	ttl time.Duration
	log zerolog.Logger
}

// New construye el candado sobre un cliente go-redis. ttl acota cuánto puede
// quedar tomado si el proceso muere a mitad de la conciliación.
func New(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Lock {
	return &Lock{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
		log: log,
	}
}

// WithLock ejecuta fn con el candado tomado. Si está ocupado devuelve domain.ErrReconciliationRunning.
func (l *Lock) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	ctx, span := tracing.Start(ctx, "redislock.with_lock")
	defer span.End()

	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			l.log.Debug().Str("lock_key", key).Msg("candado ocupado por otro proceso")
			return domain.ErrReconciliationRunning
		}
		tracing.Fail(span, "no se pudo tomar el candado", err)
		return fmt.Errorf("tomar candado %s: %w", key, err)
	}
	l.log.Debug().Str("lock_key", key).Msg("candado tomado")

	defer func() {
		// Se libera con un contexto propio: el de la corrida puede estar cancelado.
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			l.log.Error().Err(err).Str("lock_key", key).Bool("unlock_ok", ok).Msg("no se pudo liberar el candado")
		}
	}()
	return fn(ctx)
}
