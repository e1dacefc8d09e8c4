package catalogxml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/infrastructure/catalogxml"
)

// "Almacén" y "Molino Apodaca Ñ" codificados en ISO-8859-1.
const latin1Catalog = `<?xml version="1.0" encoding="ISO-8859-1"?>
<catalogo>
  <ubicaciones>
    <ubicacion id="nld" codigo="NLD" nombre="Patio Nuevo Laredo" patio="true"/>
    <ubicacion id="int" codigo="INT" nombre="Almac` + "\xe9" + `n interno" patio="si" exenta="si"/>
    <ubicacion id="mol" codigo="MOL" nombre="Molino Apodaca ` + "\xd1" + `" patio="false"/>
    <ubicacion id="" codigo="X" nombre="sin id"/>
  </ubicaciones>
  <materiales>
    <material id="acero" codigo="ACERO" nombre="Chatarra de acero"/>
    <material id="cobre" codigo="COBRE" nombre="Cobre"/>
  </materiales>
</catalogo>`

func TestDecode_Latin1(t *testing.T) {
	cat, err := catalogxml.Decode(strings.NewReader(latin1Catalog))
	require.NoError(t, err)

	require.Len(t, cat.Locations, 3, "el registro sin id se descarta")
	assert.Equal(t, "INT", cat.Locations[0].Code, "ordenadas por código")
	assert.Equal(t, "Almacén interno", cat.Locations[0].Name)
	assert.True(t, cat.Locations[0].IsYard)
	assert.True(t, cat.Locations[0].EvidenceExempt)
	assert.Equal(t, "Molino Apodaca Ñ", cat.Locations[1].Name)
	assert.False(t, cat.Locations[1].IsYard)
	assert.True(t, cat.Locations[2].IsYard)
	assert.False(t, cat.Locations[2].EvidenceExempt)

	require.Len(t, cat.Materials, 2)
	assert.Equal(t, "acero", cat.Materials[0].ID)
}

func TestDecode_BanderaIlegible(t *testing.T) {
	_, err := catalogxml.Decode(strings.NewReader(
		`<catalogo><ubicaciones><ubicacion id="a" codigo="A" nombre="A" patio="quizá"/></ubicaciones></catalogo>`))
	assert.ErrorContains(t, err, "patio")
}

func TestDecode_CodificacionNoSoportada(t *testing.T) {
	_, err := catalogxml.Decode(strings.NewReader(`<?xml version="1.0" encoding="EBCDIC"?><catalogo/>`))
	assert.Error(t, err)
}
