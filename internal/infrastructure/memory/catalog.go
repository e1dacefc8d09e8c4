package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// Catalog ubicaciones y materiales en memoria. Implementa LocationRepository y MaterialRepository
// a través de Locations() y Materials().
type Catalog struct {
	mu        sync.RWMutex
	locations map[string]entity.Location
	materials map[string]entity.Material
}

// NewCatalog construye un catálogo vacío.
func NewCatalog() *Catalog {
	return &Catalog{
		locations: make(map[string]entity.Location),
		materials: make(map[string]entity.Material),
	}
}

// AddLocation agrega o reemplaza una ubicación.
func (c *Catalog) AddLocation(l entity.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations[l.ID] = l
}

// AddMaterial agrega o reemplaza un material.
func (c *Catalog) AddMaterial(m entity.Material) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.materials[m.ID] = m
}

func (c *Catalog) location(id string) (entity.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.locations[id]
	return l, ok
}

// Locations repositorio de ubicaciones.
func (c *Catalog) Locations() repository.LocationRepository { return (*locationRepo)(c) }

// Materials repositorio de materiales.
func (c *Catalog) Materials() repository.MaterialRepository { return (*materialRepo)(c) }

type locationRepo Catalog

var _ repository.LocationRepository = (*locationRepo)(nil)

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	l, ok := (*Catalog)(r).location(id)
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *locationRepo) GetMany(_ context.Context, ids []string) (map[string]*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*entity.Location, len(ids))
	for _, id := range ids {
		if l, ok := r.locations[id]; ok {
			out[id] = &l
		}
	}
	return out, nil
}

func (r *locationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, error) {
	r.mu.RLock()
	list := make([]*entity.Location, 0, len(r.locations))
	for _, l := range r.locations {
		l := l
		list = append(list, &l)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}

type materialRepo Catalog

var _ repository.MaterialRepository = (*materialRepo)(nil)

func (r *materialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *materialRepo) List(_ context.Context, limit, offset int) ([]*entity.Material, error) {
	r.mu.RLock()
	list := make([]*entity.Material, 0, len(r.materials))
	for _, m := range r.materials {
		m := m
		list = append(list, &m)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}
