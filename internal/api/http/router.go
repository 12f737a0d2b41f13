package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-gatekeeper/internal/api/http/handlers"
	"github.com/spec-kit/directory-gatekeeper/internal/auth"
	"github.com/spec-kit/directory-gatekeeper/internal/gatekeeper"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Webhooks      *handlers.WebhookHandler
	Subscriptions *handlers.SubscriptionsHandler
	Pages         *handlers.PagesHandler
	Gatekeeper    *gatekeeper.Gatekeeper
	APIAuth       *auth.APIAuth
}

// RegisterRoutes wires HTTP routes. Health, webhook and API routes sit in
// front of the gatekeeper; everything else is page traffic and passes
// through it before reaching a page handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/webhooks/stripe", cfg.Webhooks.HandleStripe)

	api := app.Group("/api", cfg.APIAuth.RequireAdmin)
	api.Get("/subscriptions/:businessID", cfg.Subscriptions.GetByBusiness)

	app.Use(cfg.Gatekeeper.Handle)
	app.All("/*", cfg.Pages.Serve)
}
