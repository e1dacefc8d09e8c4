package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// LocationRepository puerto de lectura del catálogo de ubicaciones (DIP).
// GetByID devuelve (nil, nil) cuando la ubicación no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetMany(ctx context.Context, ids []string) (map[string]*entity.Location, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
}

// MaterialRepository puerto de lectura del catálogo de materiales.
type MaterialRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Material, error)
}
