package entity

import "time"

// Origen de una corrida de conciliación.
const (
	ReconciliationTriggerManual    = "manual"
	ReconciliationTriggerScheduled = "scheduled"
)

// Estados de una corrida de conciliación.
const (
	ReconciliationStatusSucceeded = "succeeded"
	ReconciliationStatusFailed    = "failed"
)

// ReconciliationRun es el historial de cada barrido de conciliación del libro.
type ReconciliationRun struct {
	ID             string
	Trigger        string
	StartedAt      time.Time
	FinishedAt     time.Time
	EntriesZeroed  int
	EntriesWritten int
	DocumentsRead  int
	Status         string
	Error          string
}
