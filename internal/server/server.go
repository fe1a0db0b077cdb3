package server

import (
	"net"

	"coreader-client/internal/bootstrap"
	"coreader-client/internal/config"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Server is the development backend implementing the document QA API.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.DevServerContainer
	logger    logger.ILogger
}

func New(cfg *config.Config, container *bootstrap.DevServerContainer, log logger.ILogger) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		BodyLimit:             10 * 1024 * 1024, // 10MB
		ErrorHandler:          serverutils.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.DevServer.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
		logger:    log,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.logger.Info("Server", "Dev backend listening", map[string]interface{}{"addr": "http://localhost:" + s.cfg.DevServer.Port})
	return s.app.Listen(":" + s.cfg.DevServer.Port)
}

// Serve runs on an existing listener; tests pass a loopback one.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Server", "Dev backend listening", map[string]interface{}{"addr": ln.Addr().String()})
	return s.app.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.DevServerContainer) {
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"service": "coreader devserver"})
	})

	c.DocumentController.RegisterRoutes(app)
	c.StreamHandler.RegisterRoutes(app)
}
