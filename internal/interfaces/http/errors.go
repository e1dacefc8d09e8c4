package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
)

// writeError traduce errores de dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	message := err.Error()

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrSameLocation):
		status, code = fiber.StatusBadRequest, "SAME_LOCATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrImmutableState):
		status, code = fiber.StatusConflict, "IMMUTABLE_STATE"
	case errors.Is(err, domain.ErrAlreadyAudited):
		status, code = fiber.StatusConflict, "ALREADY_AUDITED"
	case errors.Is(err, domain.ErrNotComplete):
		status, code = fiber.StatusConflict, "NOT_COMPLETE"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNegativeBalance):
		status, code = fiber.StatusConflict, "NEGATIVE_BALANCE"
	case errors.Is(err, domain.ErrReconciliationRunning):
		status, code = fiber.StatusConflict, "RECONCILIATION_RUNNING"
	default:
		// El detalle queda en el log de la petición; al cliente no se le expone.
		c.Locals(localError, err)
		message = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
