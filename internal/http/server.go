// Package http exposes the report API over fiber.
package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"shoplens/internal/config"
	"shoplens/internal/report"
	"shoplens/internal/store"
)

// Server wires the fiber app to the snapshot store and report assembler.
type Server struct {
	app       *fiber.App
	store     *store.Store
	assembler *report.Assembler
	logger    *slog.Logger
}

func NewServer(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsTest(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())

	s := &Server{
		app:       app,
		store:     st,
		assembler: report.NewAssembler(cfg.ReportWorkers, logger),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.healthAction)

	api := s.app.Group("/api/v1")
	api.Get("/filters", s.filterOptionsAction)
	api.Get("/reports/:view", s.reportAction)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
