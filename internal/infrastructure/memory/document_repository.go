package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// DocumentRepository implementación en memoria de repository.DocumentRepository.
type DocumentRepository struct {
	acc access
	cat *Catalog
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

// stored quita las ubicaciones hidratadas: se guardan solo los IDs.
func stored(doc *entity.Document) entity.Document {
	out := doc.Clone()
	out.Origin, out.Destination = nil, nil
	for i := range out.Lines {
		out.Lines[i].Counterparty = nil
	}
	return out
}

func (r *DocumentRepository) Create(_ context.Context, doc *entity.Document) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.documents[doc.ID]; ok {
			return domain.NewValidationError("id", "documento duplicado")
		}
		st.documents[doc.ID] = stored(doc)
		return nil
	})
}

func (r *DocumentRepository) GetByID(_ context.Context, id string) (*entity.Document, error) {
	var out *entity.Document
	err := r.acc.read(func(st *state) error {
		d, ok := st.documents[id]
		if ok && d.DeletedAt == nil {
			c := d.Clone()
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el almacén en exclusiva.
func (r *DocumentRepository) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r *DocumentRepository) Update(_ context.Context, doc *entity.Document) error {
	return r.acc.write(func(st *state) error {
		cur, ok := st.documents[doc.ID]
		if !ok || cur.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if cur.Status == entity.StatusAudited {
			return domain.ErrImmutableState
		}
		st.documents[doc.ID] = stored(doc)
		return nil
	})
}

func (r *DocumentRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	return r.acc.write(func(st *state) error {
		cur, ok := st.documents[id]
		if !ok || cur.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if cur.Status == entity.StatusAudited {
			return domain.ErrImmutableState
		}
		cur.DeletedAt = &at
		cur.UpdatedAt = at
		st.documents[id] = cur
		return nil
	})
}

func (r *DocumentRepository) List(_ context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	var list []*entity.Document
	err := r.acc.read(func(st *state) error {
		for _, d := range st.documents {
			if d.DeletedAt != nil {
				continue
			}
			if filter.Kind != "" && d.Kind != filter.Kind {
				continue
			}
			if filter.Status != "" && d.Status != filter.Status {
				continue
			}
			c := d.Clone()
			list = append(list, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *DocumentRepository) ListReplayMovements(_ context.Context) ([]inventory.Movement, error) {
	var out []inventory.Movement
	err := r.acc.read(func(st *state) error {
		for _, d := range st.documents {
			if d.DeletedAt != nil {
				continue
			}
			switch d.Status {
			case entity.StatusPending, entity.StatusComplete, entity.StatusAudited:
			default:
				continue
			}
			origin, _ := r.cat.location(d.OriginID)
			dest, _ := r.cat.location(d.DestinationID)
			for _, l := range d.Lines {
				out = append(out, inventory.Movement{
					DocumentID:        d.ID,
					MaterialID:        l.MaterialID,
					OriginID:          d.OriginID,
					OriginIsYard:      origin.IsYard,
					DestinationID:     d.DestinationID,
					DestinationIsYard: dest.IsYard,
					WeightIn:          l.WeightIn,
					WeightOut:         l.WeightOut,
				})
			}
		}
		return nil
	})
	return out, err
}
