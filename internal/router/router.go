package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edutrack-admin-api/internal/config"
	"github.com/noah-isme/edutrack-admin-api/internal/handler"
	"github.com/noah-isme/edutrack-admin-api/internal/middleware"
	"github.com/noah-isme/edutrack-admin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler     *handler.AdminActivityHandler
	ActivityFeedHandler *handler.ActivityFeedHandler
	ActivityStream      *handler.ActivityStreamHandler
	AttendanceHandler   *handler.AttendanceHandler
	MemberHandler       *handler.MemberHandler
	PartnerHandler      *handler.PartnerHandler
	BatchSessionHandler *handler.BatchSessionHandler
	AmenityHandler      *handler.AmenityHandler
	HealthChecks        map[string]handler.DependencyCheck
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	admin := app.Group("/api/admin",
		jwtMiddleware,
		middleware.RequireRole(middleware.AuthRoleAdmin, middleware.AuthRoleStaff),
		middleware.RateLimit("admin", cfg.RateLimitMax, cfg.RateLimitWindow),
	)

	auditGroup := admin.Group("/activity-logs", adminOnly())
	if deps.ActivityStream != nil {
		deps.ActivityStream.Register(auditGroup)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(auditGroup)
	}
	if deps.ActivityFeedHandler != nil {
		deps.ActivityFeedHandler.Register(admin.Group("/dashboard"))
	}
	if deps.MemberHandler != nil {
		deps.MemberHandler.Register(admin.Group("/members"))
	}
	if deps.PartnerHandler != nil {
		deps.PartnerHandler.Register(admin.Group("/partners"))
	}
	if deps.AmenityHandler != nil {
		deps.AmenityHandler.Register(admin.Group("/amenities"))
	}

	batches := admin.Group("/batches")
	if deps.BatchSessionHandler != nil {
		deps.BatchSessionHandler.Register(batches)
	}
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.RegisterBatchRoutes(batches)
		deps.AttendanceHandler.Register(admin)
	}
}

// adminOnly narrows a group to the admin role; staff may operate but not audit.
func adminOnly() fiber.Handler {
	return middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.Next()
	}, middleware.AuthOptions{Role: middleware.AuthRoleAdmin})
}
