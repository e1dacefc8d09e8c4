package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/documents"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC   *usecase.CatalogUseCase
	DocumentsUC *documents.UseCase
	Transfers   *inventory.TransferPostingEngine
	Sweep       *reconciliation.Sweep
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo (solo lectura)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	protected.Get("/locations", catalogHandler.ListLocations)
	protected.Get("/locations/:id", catalogHandler.GetLocation)
	protected.Get("/materials", catalogHandler.ListMaterials)

	// Documentos
	docs := protected.Group("/documents")
	docHandler := NewDocumentHandler(deps.DocumentsUC)
	capture := RequireRole(entity.RoleCapturista, entity.RoleAdmin)
	docs.Post("/", capture, docHandler.Create)
	docs.Get("/", docHandler.List)
	docs.Get("/:id", docHandler.Get)
	docs.Put("/:id", capture, docHandler.Update)
	docs.Delete("/:id", capture, docHandler.Delete)
	docs.Post("/:id/audit", RequireRole(entity.RoleAuditor, entity.RoleAdmin), docHandler.Audit)
	docs.Post("/:id/cancel", capture, docHandler.Cancel)

	// Inventario y traspasos
	inv := protected.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Transfers)
	inv.Get("/", invHandler.GetInventory)
	inv.Post("/transfers", RequireRole(entity.RoleBodeguero, entity.RoleAdmin), invHandler.PostTransfer)
	inv.Get("/transfers", invHandler.ListTransfers)

	// Conciliación (solo admin)
	rec := protected.Group("/reconciliation", RequireRole(entity.RoleAdmin))
	recHandler := NewReconciliationHandler(deps.Sweep)
	rec.Post("/runs", recHandler.Run)
	rec.Get("/runs", recHandler.ListRuns)
	rec.Get("/preview", recHandler.Preview)
}
