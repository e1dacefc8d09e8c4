package usecase

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// CatalogUseCase consultas de solo lectura sobre ubicaciones y materiales.
type CatalogUseCase struct {
	locationRepo repository.LocationRepository
	materialRepo repository.MaterialRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(locationRepo repository.LocationRepository, materialRepo repository.MaterialRepository) *CatalogUseCase {
	return &CatalogUseCase{locationRepo: locationRepo, materialRepo: materialRepo}
}

// GetLocation obtiene una ubicación por ID. Devuelve (nil, nil) si no existe.
func (uc *CatalogUseCase) GetLocation(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista ubicaciones con paginación.
func (uc *CatalogUseCase) ListLocations(ctx context.Context, limit, offset int) (*dto.LocationListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.locationRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListMaterials lista materiales con paginación.
func (uc *CatalogUseCase) ListMaterials(ctx context.Context, limit, offset int) (*dto.MaterialListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.materialRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MaterialResponse{ID: m.ID, Code: m.Code, Name: m.Name})
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:             l.ID,
		Code:           l.Code,
		Name:           l.Name,
		IsYard:         l.IsYard,
		EvidenceExempt: l.EvidenceExempt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
