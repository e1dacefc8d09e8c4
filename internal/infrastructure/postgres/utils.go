package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Logistica-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteError traduce violaciones de integridad a errores de validación.
func mapWriteError(field string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.NewValidationError(field, "duplicado")
	case codeForeignKeyViolation:
		return domain.NewValidationError(field, "referencia inexistente en el catálogo")
	case codeCheckViolation:
		return domain.NewValidationError(field, "valor fuera de rango")
	}
	return err
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
