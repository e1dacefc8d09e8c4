package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestReplay_PatioOrigenYDestino(t *testing.T) {
	movs := []inventory.Movement{
		// entrada de proveedor (no patio) a MTY
		{MaterialID: "acero", OriginID: "prov", DestinationID: "mty", DestinationIsYard: true, WeightOut: d("1010"), WeightIn: d("1000")},
		// MTY → NLD
		{MaterialID: "acero", OriginID: "mty", OriginIsYard: true, DestinationID: "nld", DestinationIsYard: true, WeightOut: d("400"), WeightIn: d("398.5")},
		// NLD → cliente
		{MaterialID: "acero", OriginID: "nld", OriginIsYard: true, DestinationID: "cli", WeightOut: d("100"), WeightIn: d("99")},
	}

	got := inventory.Replay(movs)

	require.Len(t, got, 2, "solo los patios generan entradas")
	assert.True(t, got[inventory.Key{LocationID: "mty", MaterialID: "acero"}].Equal(d("600")))
	assert.True(t, got[inventory.Key{LocationID: "nld", MaterialID: "acero"}].Equal(d("298.5")))
}

func TestReplay_OrdenIndiferente(t *testing.T) {
	movs := []inventory.Movement{
		{MaterialID: "cobre", OriginID: "mty", OriginIsYard: true, DestinationID: "nld", DestinationIsYard: true, WeightOut: d("5"), WeightIn: d("5")},
		{MaterialID: "cobre", OriginID: "x", DestinationID: "mty", DestinationIsYard: true, WeightIn: d("9")},
	}
	reversed := []inventory.Movement{movs[1], movs[0]}

	a, b := inventory.Replay(movs), inventory.Replay(reversed)
	require.Len(t, b, len(a))
	for k, q := range a {
		assert.True(t, q.Equal(b[k]), "saldo distinto para %s", k)
	}
}

func TestNegatives(t *testing.T) {
	balances := map[inventory.Key]decimal.Decimal{
		{LocationID: "b", MaterialID: "m"}: d("-1"),
		{LocationID: "a", MaterialID: "m"}: d("-0.001"),
		{LocationID: "c", MaterialID: "m"}: d("0"),
	}
	neg := inventory.Negatives(balances)
	require.Len(t, neg, 2)
	assert.Equal(t, "a/m", neg[0].String())
	assert.Equal(t, "b/m", neg[1].String())
}

func TestComputeDrift_SoloDiferencias(t *testing.T) {
	current := map[inventory.Key]decimal.Decimal{
		{LocationID: "mty", MaterialID: "acero"}: d("600"),
		{LocationID: "nld", MaterialID: "acero"}: d("400"),
	}
	replayed := map[inventory.Key]decimal.Decimal{
		{LocationID: "mty", MaterialID: "acero"}: d("600"),
		{LocationID: "nld", MaterialID: "cobre"}: d("3"),
	}

	drift := inventory.ComputeDrift(current, replayed)

	require.Len(t, drift, 2)
	assert.Equal(t, "nld/acero", drift[0].Key.String())
	assert.True(t, drift[0].Difference.Equal(d("-400")), "el stock de traspasos se pierde al reconstruir")
	assert.Equal(t, "nld/cobre", drift[1].Key.String())
	assert.True(t, drift[1].Current.IsZero())
}
