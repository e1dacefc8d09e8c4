package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrImmutableState        = errors.New("el documento está auditado y no admite cambios")
	ErrNotComplete           = errors.New("el documento no está completo")
	ErrAlreadyAudited        = errors.New("el documento ya fue auditado")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrSameLocation          = errors.New("origen y destino son la misma ubicación")
	ErrNegativeBalance       = errors.New("la conciliación produciría saldos negativos")
	ErrReconciliationRunning = errors.New("ya hay una conciliación en curso")
)

// ValidationError describe un campo o partida mal formada. Envuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un *ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError detalla el saldo disponible al rechazar un traspaso.
type InsufficientStockError struct {
	LocationID string
	MaterialID string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s/%s: disponible %s, solicitado %s",
		e.LocationID, e.MaterialID, e.Available.StringFixed(3), e.Requested.StringFixed(3))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NegativeBalanceError lista las entradas (ubicación/material) que quedarían en negativo tras la conciliación.
type NegativeBalanceError struct {
	Keys []string
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNegativeBalance.Error(), strings.Join(e.Keys, ", "))
}

func (e *NegativeBalanceError) Unwrap() error { return ErrNegativeBalance }
