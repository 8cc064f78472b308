package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forensic-case-service/internal/api/http/handlers"
	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Cases          *handlers.CasesHandler
	Assignments    *handlers.AssignmentsHandler
	Evidence       *handlers.EvidenceHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Route-level role gates are a coarse
// first filter; the services re-check authorization against the loaded
// aggregate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := authed.Group("/users", auth.RequireRole(domain.RoleAdmin))
	users.Post("", cfg.Users.Register)
	users.Delete("/:id", cfg.Users.Deactivate)

	cases := authed.Group("/cases")
	cases.Post("", auth.RequireRole(domain.RoleRegistration, domain.RoleAdmin), cfg.Cases.CreateCase)
	cases.Get("", cfg.Cases.ListCases)
	cases.Get("/:id", cfg.Cases.GetCase)
	cases.Patch("/:id/priority", auth.RequireRole(domain.RoleRegistration, domain.RoleAdmin), cfg.Cases.SetPriority)
	cases.Post("/:id/complete", auth.RequireRole(domain.RoleForensics, domain.RoleForensicsHead, domain.RoleAdmin), cfg.Cases.CompleteCase)
	cases.Post("/:id/assign", auth.RequireRole(domain.RoleForensicsHead, domain.RoleAdmin), cfg.Assignments.Assign)

	assignments := authed.Group("/assignments", auth.RequireRole(domain.RoleForensicsHead, domain.RoleAdmin))
	assignments.Get("/unassigned", cfg.Assignments.ListUnassigned)
	assignments.Get("/roster", cfg.Assignments.ListRoster)

	forensics := auth.RequireRole(domain.RoleForensics, domain.RoleForensicsHead, domain.RoleAdmin)

	cases.Get("/:id/evidence", cfg.Evidence.ListEvidence)
	cases.Post("/:id/evidence", forensics, cfg.Evidence.AttachEvidence)
	authed.Delete("/evidence/:id", forensics, cfg.Evidence.RemoveEvidence)

	cases.Get("/:id/specimens", cfg.Evidence.ListSpecimens)
	cases.Post("/:id/specimens", forensics, cfg.Evidence.AddSpecimen)
	authed.Delete("/specimens/:id", forensics, cfg.Evidence.RemoveSpecimen)

	authed.Post("/specimens/:id/tests", forensics, cfg.Evidence.AddTest)
	authed.Patch("/tests/:id", forensics, cfg.Evidence.UpdateTest)
	authed.Delete("/tests/:id", forensics, cfg.Evidence.RemoveTest)
}
