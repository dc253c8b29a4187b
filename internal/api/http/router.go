package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Catalog        *handlers.CatalogHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role gates mirror the workflow table:
// the route keeps out obviously wrong roles, the workflow engine enforces
// the transition-level rules.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/me", cfg.Users.Me)
	authProtected.Post("/password/change", cfg.Users.ChangePassword)

	catalog := app.Group("/catalog", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	catalog.Get("/departments", cfg.Catalog.ListDepartments)
	catalog.Get("/departments/:id/agents", cfg.Catalog.ListAgents)
	catalog.Get("/categories", cfg.Catalog.ListCategories)
	catalog.Get("/categories/:id/services", cfg.Catalog.ListServices)
	catalog.Get("/services/:id", cfg.Catalog.GetService)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)

	staff := app.Group("/staff/tickets", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleAgent, domain.RoleDepartmentStaff, domain.RoleApprover, domain.RoleAdmin))
	staff.Get("", cfg.StaffTickets.List)
	staff.Get("/number/:number", cfg.StaffTickets.GetByNumber)
	staff.Get("/:id", cfg.StaffTickets.Get)
	staff.Post("/:id/status", cfg.StaffTickets.Transition)
	staff.Post("/:id/assign-department",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDepartmentStaff), cfg.StaffTickets.AssignDepartment)
	staff.Post("/:id/assign-agent",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDepartmentStaff), cfg.StaffTickets.AssignAgent)
	staff.Post("/:id/approve", auth.RequireRole(domain.RoleApprover), cfg.StaffTickets.Approve)
	staff.Post("/:id/reject", auth.RequireRole(domain.RoleApprover), cfg.StaffTickets.Reject)
	staff.Post("/:id/escalate",
		auth.RequireRole(domain.RoleAgent, domain.RoleDepartmentStaff, domain.RoleAdmin), cfg.StaffTickets.Escalate)
	staff.Post("/:id/priority", auth.RequireRole(domain.RoleAdmin), cfg.StaffTickets.ChangePriority)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Put("/users/:id/active", cfg.Users.SetUserActive)
	admin.Post("/departments", cfg.Catalog.CreateDepartment)
	admin.Put("/departments/:id", cfg.Catalog.UpdateDepartment)
	admin.Post("/categories", cfg.Catalog.CreateCategory)
	admin.Put("/categories/:id", cfg.Catalog.UpdateCategory)
	admin.Post("/services", cfg.Catalog.CreateService)
	admin.Put("/services/:id", cfg.Catalog.UpdateService)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	reports.Get("/dashboard", cfg.Reports.Dashboard)
	reports.Get("/departments", cfg.Reports.Departments)
}
