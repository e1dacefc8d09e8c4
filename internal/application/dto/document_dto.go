package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest partida de material en create/update.
type LineItemRequest struct {
	MaterialID     string          `json:"material_id"`
	CounterpartyID string          `json:"counterparty_id,omitempty"`
	WeightIn       decimal.Decimal `json:"weight_in"`
	WeightOut      decimal.Decimal `json:"weight_out"`
}

// CreateDocumentRequest body para POST /api/documents.
// Status se acepta en el JSON pero se ignora: el estado siempre se recalcula.
type CreateDocumentRequest struct {
	Kind          string            `json:"kind"`
	OriginID      string            `json:"origin_id"`
	DestinationID string            `json:"destination_id"`
	Fields        map[string]string `json:"fields"`
	Evidence      map[string]string `json:"evidence"`
	Lines         []LineItemRequest `json:"lines"`
	Status        string            `json:"status,omitempty"`
}

// UpdateDocumentRequest body para PUT /api/documents/:id.
// Campo nil = se conserva; no nil = se reemplaza completo (mapas y partidas incluidos).
type UpdateDocumentRequest struct {
	OriginID      *string           `json:"origin_id,omitempty"`
	DestinationID *string           `json:"destination_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Evidence      map[string]string `json:"evidence,omitempty"`
	Lines         []LineItemRequest `json:"lines,omitempty"`
	Status        string            `json:"status,omitempty"`
}

// AuditDocumentRequest body opcional de POST /api/documents/:id/audit (el actor sale del token).
type AuditDocumentRequest struct {
	Notes string `json:"notes,omitempty"`
}

// LineItemResponse salida de una partida.
type LineItemResponse struct {
	ID             string          `json:"id"`
	MaterialID     string          `json:"material_id"`
	CounterpartyID string          `json:"counterparty_id,omitempty"`
	WeightIn       decimal.Decimal `json:"weight_in"`
	WeightOut      decimal.Decimal `json:"weight_out"`
}

// MissingResponse lo que le falta al documento para quedar COMPLETE.
type MissingResponse struct {
	Fields   []string `json:"fields,omitempty"`
	Evidence []string `json:"evidence,omitempty"`
	Lines    bool     `json:"lines,omitempty"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	Status        string             `json:"status"`
	OriginID      string             `json:"origin_id"`
	DestinationID string             `json:"destination_id"`
	Fields        map[string]string  `json:"fields"`
	Evidence      map[string]string  `json:"evidence"`
	Lines         []LineItemResponse `json:"lines"`
	Missing       *MissingResponse   `json:"missing,omitempty"`
	AuditedBy     string             `json:"audited_by,omitempty"`
	AuditedAt     *time.Time         `json:"audited_at,omitempty"`
	CancelledBy   string             `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
