package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/tahfiz-go-api/internal/config"
	"github.com/noah-isme/tahfiz-go-api/internal/handler"
	"github.com/noah-isme/tahfiz-go-api/internal/middleware"
	"github.com/noah-isme/tahfiz-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CurriculumHandler *handler.CurriculumHandler
	AssignmentHandler *handler.AssignmentHandler
	SessionHandler    *handler.SessionHandler
	ContentHandler    *handler.ContentHandler
	EvaluationHandler *handler.EvaluationHandler
	AlertHandler      *handler.AlertHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil. Role checks are only
	// meaningful when a real JWT middleware populates user_role.
	jwtMiddleware := deps.JWTMiddleware
	teacherOnly := func(c *fiber.Ctx) error { return c.Next() }
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	} else {
		teacherOnly = middleware.RequireRole(middleware.AuthRoleTeacher, middleware.AuthRoleAdmin)
	}

	if deps.CurriculumHandler != nil {
		curricula := app.Group("/api/v1/curricula", jwtMiddleware)
		deps.CurriculumHandler.Register(curricula)
	}

	if deps.AssignmentHandler != nil {
		assignments := app.Group("/api/v1/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SessionHandler != nil {
		sessions := app.Group("/api/v1/sessions", jwtMiddleware, middleware.RateLimit("sessions", 60, time.Minute))
		deps.SessionHandler.Register(sessions)
	}

	// Student-scoped routes share one group.
	students := app.Group("/api/v1/students", jwtMiddleware)
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.RegisterStudentRoutes(students)
	}
	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(students)
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.RegisterStudentRoutes(students)

		evaluations := app.Group("/api/v1/evaluations", jwtMiddleware, teacherOnly, middleware.RateLimit("evaluations", 10, time.Minute))
		deps.EvaluationHandler.Register(evaluations)
	}

	if deps.AlertHandler != nil {
		alerts := app.Group("/api/v1/alerts", jwtMiddleware, teacherOnly)
		deps.AlertHandler.Register(alerts)
	}
}
