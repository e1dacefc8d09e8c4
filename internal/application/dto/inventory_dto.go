package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostTransferRequest body para POST /api/inventory/transfers.
type PostTransferRequest struct {
	OriginID      string          `json:"origin_id"`
	DestinationID string          `json:"destination_id"`
	MaterialID    string          `json:"material_id"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes,omitempty"`
}

// TransferResponse salida de un traspaso registrado.
type TransferResponse struct {
	ID            string          `json:"id"`
	OriginID      string          `json:"origin_id"`
	DestinationID string          `json:"destination_id"`
	MaterialID    string          `json:"material_id"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// InventoryEntryResponse saldo de un material en un patio.
type InventoryEntryResponse struct {
	LocationID  string          `json:"location_id"`
	MaterialID  string          `json:"material_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	LastUpdated time.Time       `json:"last_updated,omitempty"`
}
