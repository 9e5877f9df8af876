package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Reference *handlers.ReferenceHandler
	Reports   *handlers.ReportsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/categories", cfg.Reference.ListCategories)
	app.Post("/categories", cfg.Reference.CreateCategory)
	app.Delete("/categories/:id", cfg.Reference.DeleteCategory)

	app.Get("/priorities", cfg.Reference.ListPriorities)
	app.Post("/priorities", cfg.Reference.CreatePriority)
	app.Delete("/priorities/:id", cfg.Reference.DeletePriority)

	app.Get("/statuses", cfg.Reference.ListStatuses)
	app.Post("/statuses", cfg.Reference.CreateStatus)
	app.Delete("/statuses/:id", cfg.Reference.DeleteStatus)

	app.Post("/tickets", cfg.Tickets.CreateTicket)
	app.Get("/tickets", cfg.Tickets.ListTickets)
	app.Get("/tickets/:id", cfg.Tickets.GetTicket)
	app.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	app.Patch("/tickets/:id/assignment", cfg.Tickets.UpdateAssignment)
	app.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	app.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)

	app.Get("/reports/metrics", cfg.Reports.Metrics)
	app.Get("/reports/export", cfg.Reports.Export)
}
