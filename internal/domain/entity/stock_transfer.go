package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTransfer registra un traspaso explícito entre ubicaciones (no derivado de documentos).
// Se guarda en la misma transacción que los movimientos del libro.
type StockTransfer struct {
	ID            string
	OriginID      string
	DestinationID string
	MaterialID    string
	Amount        decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	CreatedBy     string // UserID
}
