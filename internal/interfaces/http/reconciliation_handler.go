package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// ReconciliationHandler expone la conciliación manual del libro (solo admin).
type ReconciliationHandler struct {
	sweep *reconciliation.Sweep
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(sweep *reconciliation.Sweep) *ReconciliationHandler {
	return &ReconciliationHandler{sweep: sweep}
}

// Run godoc
// @Summary      Ejecutar conciliación
// @Description  Reconstruye el libro desde los documentos vigentes. 409 si hay otra en curso o quedarían saldos negativos.
// @Tags         reconciliation
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReport
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/runs [post]
func (h *ReconciliationHandler) Run(c *fiber.Ctx) error {
	out, err := h.sweep.Run(c.UserContext(), entity.ReconciliationTriggerManual)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Preview godoc
// @Summary      Vista previa de la conciliación
// @Description  Calcula el libro reconstruido y la diferencia con el actual sin escribir nada.
// @Tags         reconciliation
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ReconciliationPreview
// @Router       /api/reconciliation/preview [get]
func (h *ReconciliationHandler) Preview(c *fiber.Ctx) error {
	out, err := h.sweep.Preview(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListRuns godoc
// @Summary      Historial de conciliaciones
// @Tags         reconciliation
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Límite (default 20)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   dto.ReconciliationRunResponse
// @Router       /api/reconciliation/runs [get]
func (h *ReconciliationHandler) ListRuns(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.sweep.ListRuns(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
