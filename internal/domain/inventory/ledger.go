package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Key identifica una entrada del libro (ubicación, material).
type Key struct {
	LocationID string
	MaterialID string
}

func (k Key) String() string { return k.LocationID + "/" + k.MaterialID }

// Movement es una partida de documento lista para reproducirse en el libro.
// Origen y destino son los del documento; la contraparte de la partida no afecta el libro.
type Movement struct {
	DocumentID        string
	MaterialID        string
	OriginID          string
	OriginIsYard      bool
	DestinationID     string
	DestinationIsYard bool
	WeightIn          decimal.Decimal
	WeightOut         decimal.Decimal
}

// Replay aplica los movimientos sobre un libro en cero (servicio de dominio):
// el patio de origen pierde WeightOut y el patio de destino gana WeightIn.
// Las ubicaciones que no son patio no generan entradas. El orden de los movimientos no altera el resultado.
func Replay(movements []Movement) map[Key]decimal.Decimal {
	balances := make(map[Key]decimal.Decimal)
	for _, m := range movements {
		if m.OriginIsYard && m.OriginID != "" {
			k := Key{LocationID: m.OriginID, MaterialID: m.MaterialID}
			balances[k] = balances[k].Sub(m.WeightOut)
		}
		if m.DestinationIsYard && m.DestinationID != "" {
			k := Key{LocationID: m.DestinationID, MaterialID: m.MaterialID}
			balances[k] = balances[k].Add(m.WeightIn)
		}
	}
	return balances
}

// Negatives devuelve, ordenadas, las claves cuyo saldo quedaría por debajo de cero.
func Negatives(balances map[Key]decimal.Decimal) []Key {
	var out []Key
	for k, q := range balances {
		if q.IsNegative() {
			out = append(out, k)
		}
	}
	sortKeys(out)
	return out
}

// SortedKeys devuelve las claves del mapa en orden estable (ubicación, material).
func SortedKeys(balances map[Key]decimal.Decimal) []Key {
	out := make([]Key, 0, len(balances))
	for k := range balances {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}

// Drift diferencia entre el saldo actual del libro y el reconstruido desde documentos.
type Drift struct {
	Key
	Current    decimal.Decimal
	Replayed   decimal.Decimal
	Difference decimal.Decimal // Replayed - Current
}

// ComputeDrift compara ambos libros y devuelve solo las entradas que difieren.
func ComputeDrift(current, replayed map[Key]decimal.Decimal) []Drift {
	union := make(map[Key]decimal.Decimal, len(current)+len(replayed))
	for k := range current {
		union[k] = decimal.Zero
	}
	for k := range replayed {
		union[k] = decimal.Zero
	}
	var out []Drift
	for _, k := range SortedKeys(union) {
		cur, rep := current[k], replayed[k]
		if cur.Equal(rep) {
			continue
		}
		out = append(out, Drift{Key: k, Current: cur, Replayed: rep, Difference: rep.Sub(cur)})
	}
	return out
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].LocationID != keys[j].LocationID {
			return keys[i].LocationID < keys[j].LocationID
		}
		return keys[i].MaterialID < keys[j].MaterialID
	})
}
