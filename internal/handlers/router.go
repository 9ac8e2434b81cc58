package handlers

import (
	"github.com/arzan03/FileShare/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// AppDeps are the collaborators the HTTP app is built from.
type AppDeps struct {
	Files     FileService
	Stats     StatsService
	Auth      AuthService
	JWTSecret string
	BodyLimit int
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer  prometheus.Gatherer
	Log       zerolog.Logger
	AccessLog bool
}

// NewApp wires middleware and routes into a Fiber app.
func NewApp(deps AppDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "fileshare",
		BodyLimit:    deps.BodyLimit,
		ErrorHandler: ErrorHandler(deps.Log),
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New())

	auth := middleware.Auth(deps.JWTSecret)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	stats := NewStatsHandler(deps.Stats)
	api := app.Group("/api")
	api.Get("/stats", stats.SystemStats)
	NewAuthHandler(deps.Auth).Register(api.Group("/auth"), auth)

	files := app.Group("/files")
	files.Get("/user-stats", auth, stats.UserStats)
	NewFileHandler(deps.Files).Register(files, auth)

	return app
}
