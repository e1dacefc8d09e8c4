package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuantityScale decimales que guarda el libro (NUMERIC(14,3)).
const QuantityScale = 3

var maxQuantity = decimal.New(1, 11)

// FitsQuantity indica si q se guarda sin redondeo ni desborde.
func FitsQuantity(q decimal.Decimal) bool {
	return q.Equal(q.Round(QuantityScale)) && q.Abs().LessThan(maxQuantity)
}

// InventoryEntry es el saldo de un material en un patio. Único por (LocationID, MaterialID);
// Quantity nunca es negativa.
type InventoryEntry struct {
	LocationID  string
	MaterialID  string
	Quantity    decimal.Decimal
	LastUpdated time.Time
}
