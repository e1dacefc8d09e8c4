package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
)

// InventoryHandler maneja traspasos y consultas del libro de inventario (protegido).
type InventoryHandler struct {
	engine *inventory.TransferPostingEngine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.TransferPostingEngine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// PostTransfer godoc
// @Summary      Registrar traspaso
// @Description  Resta del patio origen y suma al patio destino en una sola transacción.
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PostTransferRequest  true  "origin_id, destination_id, material_id, amount"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) PostTransfer(c *fiber.Ctx) error {
	var in dto.PostTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.PostTransfer(c.UserContext(), inventory.TransferInput{
		UserID:        GetUserID(c),
		OriginID:      in.OriginID,
		DestinationID: in.DestinationID,
		MaterialID:    in.MaterialID,
		Amount:        in.Amount,
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTransfers godoc
// @Summary      Historial de traspasos de una ubicación
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  true   "Ubicación (origen o destino)"
// @Param        limit        query     int     false  "Límite (default 20)"
// @Param        offset       query     int     false  "Offset"
// @Success      200          {array}   dto.TransferResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [get]
func (h *InventoryHandler) ListTransfers(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.engine.ListTransfers(c.UserContext(), c.Query("location_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetInventory godoc
// @Summary      Consultar saldo
// @Description  Con material_id devuelve un saldo (cero si nunca se registró); sin él, todos los saldos del patio.
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  true   "Ubicación"
// @Param        material_id  query     string  false  "Material"
// @Success      200          {object}  dto.InventoryEntryResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	locationID, materialID := c.Query("location_id"), c.Query("material_id")
	if materialID == "" {
		out, err := h.engine.ListInventory(c.UserContext(), locationID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
	out, err := h.engine.GetInventory(c.UserContext(), locationID, materialID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
