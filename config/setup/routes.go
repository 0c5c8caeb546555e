package setup

import (
	"memo-store/app"
	"memo-store/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/health", handlers.Health(application))

	if application.Metrics != nil {
		fiberApp.Get("/metrics", adaptor.HTTPHandler(application.Metrics.Handler()))
	}

	api := fiberApp.Group("/api")
	api.Post("/memos", handlers.CreateMemo(application))
	api.Get("/memos", handlers.ListMemos(application))
	api.Get("/memos/:id", handlers.GetMemo(application))
	api.Put("/memos/:id", handlers.UpdateMemo(application))
	api.Delete("/memos/:id", handlers.DeleteMemo(application))
}
