package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"db_status"`
}

// healthAction handles the health check endpoint
func (s *Server) healthAction(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := s.store.Ping(c.Context()); err != nil {
		dbStatus = "error"
		s.logger.Error("database ping failed", "error", err)
	}

	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		DBStatus:  dbStatus,
	}
	if dbStatus != "ok" {
		health.Status = "degraded"
	}
	return c.JSON(health)
}
