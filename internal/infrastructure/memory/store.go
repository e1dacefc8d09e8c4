// Package memory implementa los repositorios y el TxRunner sobre estructuras en memoria.
// Cada transacción trabaja sobre una copia del estado y la publica solo si fn no falla,
// así que el rollback es descartar la copia. Las transacciones se serializan entre sí.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// state es todo lo mutable. El catálogo vive aparte porque es de solo lectura.
type state struct {
	documents map[string]entity.Document
	ledger    map[inventory.Key]entity.InventoryEntry
	transfers []entity.StockTransfer
	runs      []entity.ReconciliationRun
}

func newState() *state {
	return &state{
		documents: make(map[string]entity.Document),
		ledger:    make(map[inventory.Key]entity.InventoryEntry),
	}
}

func (st *state) clone() *state {
	out := &state{
		documents: make(map[string]entity.Document, len(st.documents)),
		ledger:    make(map[inventory.Key]entity.InventoryEntry, len(st.ledger)),
		transfers: append([]entity.StockTransfer(nil), st.transfers...),
		runs:      append([]entity.ReconciliationRun(nil), st.runs...),
	}
	for id, d := range st.documents {
		out.documents[id] = d.Clone()
	}
	for k, e := range st.ledger {
		out.ledger[k] = e
	}
	return out
}

// access abstrae cómo un repositorio llega al estado: con candado propio (fuera de tx)
// o directo sobre la copia de trabajo de una transacción en curso.
type access struct {
	read  func(fn func(st *state) error) error
	write func(fn func(st *state) error) error
}

// Store agrupa estado, catálogo y candado.
type Store struct {
	mu    sync.RWMutex
	state *state
	cat   *Catalog
	now   func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		state: newState(),
		cat:   NewCatalog(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Catalog devuelve el catálogo de ubicaciones y materiales.
func (s *Store) Catalog() *Catalog { return s.cat }

func (s *Store) view(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// update aplica fn sobre una copia y la publica solo si no hubo error.
func (s *Store) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) shared() access {
	return access{read: s.view, write: s.update}
}

func direct(st *state) access {
	run := func(fn func(st *state) error) error { return fn(st) }
	return access{read: run, write: run}
}

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() repository.DocumentRepository {
	return &DocumentRepository{acc: s.shared(), cat: s.cat}
}

// Inventory repositorio del libro fuera de transacción.
func (s *Store) Inventory() repository.InventoryRepository {
	return &InventoryRepository{acc: s.shared(), now: s.now}
}

// Transfers repositorio del historial de traspasos fuera de transacción.
func (s *Store) Transfers() repository.TransferRepository {
	return &TransferRepository{acc: s.shared()}
}

// Runs repositorio del historial de conciliaciones.
func (s *Store) Runs() repository.ReconciliationRunRepository {
	return &RunRepository{acc: s.shared()}
}

// RunDocuments ejecuta fn en una transacción con el repositorio de documentos.
func (s *Store) RunDocuments(_ context.Context, fn func(docRepo repository.DocumentRepository) error) error {
	return s.update(func(st *state) error {
		return fn(&DocumentRepository{acc: direct(st), cat: s.cat})
	})
}

// RunLedger ejecuta fn en una transacción con los repositorios del libro y de traspasos.
func (s *Store) RunLedger(_ context.Context, fn func(
	invRepo repository.InventoryRepository,
	transferRepo repository.TransferRepository,
) error) error {
	return s.update(func(st *state) error {
		return fn(&InventoryRepository{acc: direct(st), now: s.now}, &TransferRepository{acc: direct(st)})
	})
}

// RunReconciliation ejecuta fn en una transacción con los repositorios del libro y de documentos.
func (s *Store) RunReconciliation(_ context.Context, fn func(
	invRepo repository.InventoryRepository,
	docRepo repository.DocumentRepository,
) error) error {
	return s.update(func(st *state) error {
		return fn(&InventoryRepository{acc: direct(st), now: s.now}, &DocumentRepository{acc: direct(st), cat: s.cat})
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortByKey(keys []inventory.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].LocationID != keys[j].LocationID {
			return keys[i].LocationID < keys[j].LocationID
		}
		return keys[i].MaterialID < keys[j].MaterialID
	})
}
