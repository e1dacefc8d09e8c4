package reconciliation

import (
	"context"
	"sync"

	"github.com/jhoicas/Logistica-api/internal/domain"
)

// LocalLock candado en proceso para despliegues de una sola instancia o sin Redis.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLock construye el candado.
func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]bool)}
}

func (l *LocalLock) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.held[key] {
		l.mu.Unlock()
		return domain.ErrReconciliationRunning
	}
	l.held[key] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()
	return fn(ctx)
}
