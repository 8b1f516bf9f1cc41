package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cleantownship/cleantown-service/internal/api/http/handlers"
	"github.com/cleantownship/cleantown-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Issues         *handlers.IssuesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	// Per-route guards keep unknown paths answering 404 instead of 401.
	requireLogin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireSession()}
	authGroup.Post("/logout", append(requireLogin, cfg.Auth.Logout)...)
	app.Get("/dashboard", append(requireLogin, cfg.Dashboard.Get)...)
	app.Post("/issues", append(requireLogin, cfg.Issues.CreateIssue)...)
	app.Get("/issues", append(requireLogin, cfg.Issues.ListIssues)...)

	requireAdmin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin()}
	app.Get("/admin/reporters", append(requireAdmin, cfg.Admin.ListReporters)...)
	app.Get("/admin/reporters/:email", append(requireAdmin, cfg.Admin.GetReporter)...)
}
