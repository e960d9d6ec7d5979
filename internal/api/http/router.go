package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-issues/internal/api/http/handlers"
	"github.com/spec-kit/hostel-issues/internal/auth"
	"github.com/spec-kit/hostel-issues/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	Intake         *handlers.IntakeHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", func(c *fiber.Ctx) error {
		return c.JSON(cfg.Metrics.Snapshot())
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	intake := app.Group("/intake", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	intake.Post("/keywords", cfg.Intake.Keywords)
	intake.Post("/analyze", cfg.Intake.Analyze)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	issues.Post("/check-duplicate", cfg.Intake.CheckDuplicate)
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Post("/", cfg.Issues.CreateIssue)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Put("/:id", auth.RequireStaff(), cfg.Issues.UpdateIssue)
	issues.Delete("/:id", auth.RequireStaff(), cfg.Issues.DeleteIssue)
	issues.Post("/:id/react", cfg.Issues.React)
	issues.Post("/:id/comments", cfg.Issues.AddComment)
	issues.Get("/:id/timeline", cfg.Issues.Timeline)
	issues.Get("/:id/history", cfg.Issues.History)
}
