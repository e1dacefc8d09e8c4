package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationReport resultado de una corrida de conciliación.
type ReconciliationReport struct {
	RunID          string    `json:"run_id"`
	Trigger        string    `json:"trigger"`
	EntriesZeroed  int       `json:"entries_zeroed"`
	EntriesWritten int       `json:"entries_written"`
	DocumentsRead  int       `json:"documents_read"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// DriftLine diferencia entre el libro actual y el reconstruido para una entrada.
type DriftLine struct {
	LocationID string          `json:"location_id"`
	MaterialID string          `json:"material_id"`
	Current    decimal.Decimal `json:"current"`
	Replayed   decimal.Decimal `json:"replayed"`
	Difference decimal.Decimal `json:"difference"`
}

// ReconciliationPreview vista previa sin escritura.
type ReconciliationPreview struct {
	Entries       int         `json:"entries"`
	DocumentsRead int         `json:"documents_read"`
	Negative      []string    `json:"negative,omitempty"`
	Drift         []DriftLine `json:"drift"`
}

// ReconciliationRunResponse elemento del historial de conciliaciones.
type ReconciliationRunResponse struct {
	ID             string    `json:"id"`
	Trigger        string    `json:"trigger"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	EntriesZeroed  int       `json:"entries_zeroed"`
	EntriesWritten int       `json:"entries_written"`
	DocumentsRead  int       `json:"documents_read"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
