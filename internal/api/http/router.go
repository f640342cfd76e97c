package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bcm-risk-service/internal/api/http/handlers"
	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Risks          *handlers.RisksHandler
	Departments    *handlers.DepartmentsHandler
	Dashboard      *handlers.DashboardHandler
	Exports        *handlers.ExportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	risks := protected.Group("/risks")
	risks.Get("", cfg.Risks.List)
	risks.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleDepartmentUser), cfg.Risks.Create)
	risks.Get("/:id", cfg.Risks.Get)
	risks.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleDepartmentUser), cfg.Risks.Update)
	risks.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Risks.Delete)
	risks.Post("/:id/lock", auth.RequireRole(domain.RoleAdmin), cfg.Risks.Lock)
	risks.Post("/:id/unlock", auth.RequireRole(domain.RoleAdmin), cfg.Risks.Unlock)

	departments := protected.Group("/departments")
	departments.Get("", cfg.Departments.List)
	departments.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Departments.Create)
	departments.Get("/:id", cfg.Departments.Get)
	departments.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Departments.Update)

	protected.Get("/dashboard", cfg.Dashboard.Get)

	exports := protected.Group("/exports", auth.RequireRole(domain.RoleAdmin))
	exports.Get("/risks.xlsx", cfg.Exports.Excel)
	exports.Get("/report.pdf", cfg.Exports.PDF)
}
