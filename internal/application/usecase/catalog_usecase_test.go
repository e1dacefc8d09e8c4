package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
)

func newCatalog() *usecase.CatalogUseCase {
	cat := memory.NewCatalog()
	cat.AddLocation(entity.Location{ID: "nld", Code: "NLD", Name: "Patio Nuevo Laredo", IsYard: true})
	cat.AddLocation(entity.Location{ID: "mty", Code: "MTY", Name: "Patio Monterrey", IsYard: true})
	cat.AddLocation(entity.Location{ID: "int", Code: "INT", Name: "Bodega interna", EvidenceExempt: true})
	cat.AddMaterial(entity.Material{ID: "cobre", Code: "COBRE", Name: "Cobre"})
	cat.AddMaterial(entity.Material{ID: "acero", Code: "ACERO", Name: "Chatarra de acero"})
	return usecase.NewCatalogUseCase(cat.Locations(), cat.Materials())
}

func TestGetLocation(t *testing.T) {
	uc := newCatalog()

	loc, err := uc.GetLocation(context.Background(), "int")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.True(t, loc.EvidenceExempt)
	assert.False(t, loc.IsYard)

	loc, err = uc.GetLocation(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestListLocations_OrdenPorCodigoYPaginado(t *testing.T) {
	uc := newCatalog()

	page, err := uc.ListLocations(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "INT", page.Items[0].Code)
	assert.Equal(t, "MTY", page.Items[1].Code)

	page, err = uc.ListLocations(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "NLD", page.Items[0].Code)
	assert.Equal(t, 2, page.Page.Offset)
}

func TestListLocations_LimiteAcotado(t *testing.T) {
	uc := newCatalog()

	page, err := uc.ListLocations(context.Background(), 100000, -3)
	require.NoError(t, err)
	assert.Equal(t, dto.MaxPageLimit, page.Page.Limit)
	assert.Equal(t, 0, page.Page.Offset)
	assert.Len(t, page.Items, 3)

	page, err = uc.ListLocations(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, page.Page.Limit)
}

func TestListMaterials(t *testing.T) {
	uc := newCatalog()
	page, err := uc.ListMaterials(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ACERO", page.Items[0].Code)
}
