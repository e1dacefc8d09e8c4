package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// InventoryRepository implementación en memoria del libro.
type InventoryRepository struct {
	acc access
	now func() time.Time
}

var _ repository.InventoryRepository = (*InventoryRepository)(nil)

func (r *InventoryRepository) Get(_ context.Context, locationID, materialID string) (*entity.InventoryEntry, error) {
	var out entity.InventoryEntry
	err := r.acc.read(func(st *state) error {
		e, ok := st.ledger[inventory.Key{LocationID: locationID, MaterialID: materialID}]
		if !ok {
			e = entity.InventoryEntry{LocationID: locationID, MaterialID: materialID, Quantity: decimal.Zero}
		}
		out = e
		return nil
	})
	return &out, err
}

func (r *InventoryRepository) GetForUpdate(_ context.Context, locationID, materialID string) (*entity.InventoryEntry, error) {
	var out entity.InventoryEntry
	err := r.acc.write(func(st *state) error {
		k := inventory.Key{LocationID: locationID, MaterialID: materialID}
		e, ok := st.ledger[k]
		if !ok {
			e = entity.InventoryEntry{LocationID: locationID, MaterialID: materialID, Quantity: decimal.Zero, LastUpdated: r.now()}
			st.ledger[k] = e
		}
		out = e
		return nil
	})
	return &out, err
}

func (r *InventoryRepository) Increment(_ context.Context, locationID, materialID string, amount decimal.Decimal) error {
	return r.acc.write(func(st *state) error {
		k := inventory.Key{LocationID: locationID, MaterialID: materialID}
		e := st.ledger[k]
		e.LocationID, e.MaterialID = locationID, materialID
		e.Quantity = e.Quantity.Add(amount)
		e.LastUpdated = r.now()
		st.ledger[k] = e
		return nil
	})
}

func (r *InventoryRepository) Decrement(_ context.Context, locationID, materialID string, amount decimal.Decimal) error {
	return r.acc.write(func(st *state) error {
		k := inventory.Key{LocationID: locationID, MaterialID: materialID}
		e := st.ledger[k]
		if e.Quantity.LessThan(amount) {
			return &domain.InsufficientStockError{
				LocationID: locationID, MaterialID: materialID,
				Available: e.Quantity, Requested: amount,
			}
		}
		e.Quantity = e.Quantity.Sub(amount)
		e.LastUpdated = r.now()
		st.ledger[k] = e
		return nil
	})
}

func (r *InventoryRepository) ListByLocation(ctx context.Context, locationID string) ([]*entity.InventoryEntry, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.InventoryEntry, 0)
	for _, e := range all {
		if e.LocationID == locationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *InventoryRepository) ListAll(_ context.Context) ([]*entity.InventoryEntry, error) {
	var out []*entity.InventoryEntry
	err := r.acc.read(func(st *state) error {
		keys := make([]inventory.Key, 0, len(st.ledger))
		for k := range st.ledger {
			keys = append(keys, k)
		}
		sortByKey(keys)
		out = make([]*entity.InventoryEntry, 0, len(keys))
		for _, k := range keys {
			e := st.ledger[k]
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

// LockLedger no hace nada: la transacción en memoria ya es exclusiva.
func (r *InventoryRepository) LockLedger(context.Context) error { return nil }

func (r *InventoryRepository) ZeroAll(_ context.Context) (int, error) {
	var n int
	err := r.acc.write(func(st *state) error {
		now := r.now()
		for k, e := range st.ledger {
			e.Quantity = decimal.Zero
			e.LastUpdated = now
			st.ledger[k] = e
		}
		n = len(st.ledger)
		return nil
	})
	return n, err
}

func (r *InventoryRepository) Set(_ context.Context, entry *entity.InventoryEntry) error {
	if entry.Quantity.IsNegative() {
		return &domain.NegativeBalanceError{Keys: []string{entry.LocationID + "/" + entry.MaterialID}}
	}
	return r.acc.write(func(st *state) error {
		st.ledger[inventory.Key{LocationID: entry.LocationID, MaterialID: entry.MaterialID}] = *entry
		return nil
	})
}

// TransferRepository historial de traspasos en memoria.
type TransferRepository struct {
	acc access
}

var _ repository.TransferRepository = (*TransferRepository)(nil)

func (r *TransferRepository) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.acc.write(func(st *state) error {
		st.transfers = append(st.transfers, *t)
		return nil
	})
}

func (r *TransferRepository) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]*entity.StockTransfer, error) {
	var list []*entity.StockTransfer
	err := r.acc.read(func(st *state) error {
		for _, t := range st.transfers {
			if t.OriginID == locationID || t.DestinationID == locationID {
				t := t
				list = append(list, &t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

// RunRepository historial de conciliaciones en memoria.
type RunRepository struct {
	acc access
}

var _ repository.ReconciliationRunRepository = (*RunRepository)(nil)

func (r *RunRepository) Create(_ context.Context, run *entity.ReconciliationRun) error {
	return r.acc.write(func(st *state) error {
		st.runs = append(st.runs, *run)
		return nil
	})
}

func (r *RunRepository) List(_ context.Context, limit, offset int) ([]*entity.ReconciliationRun, error) {
	var list []*entity.ReconciliationRun
	err := r.acc.read(func(st *state) error {
		for i := len(st.runs) - 1; i >= 0; i-- {
			run := st.runs[i]
			list = append(list, &run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(list, limit, offset), nil
}
