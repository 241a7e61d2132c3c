package http

import (
	"github.com/gofiber/fiber/v2"

	"shoplens/internal/filters"
	"shoplens/internal/report"
)

// reportAction serves GET /api/v1/reports/:view.
func (s *Server) reportAction(c *fiber.Ctx) error {
	view := c.Params("view")
	if !report.KnownView(view) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown view: "+view)
	}

	criteria, err := parseCriteria(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ds, err := s.store.Snapshot(c.Context())
	if err != nil {
		s.logger.Error("snapshot load failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "snapshot unavailable")
	}

	filtered := filters.Apply(ds, criteria)
	rep, err := s.assembler.Assemble(c.Context(), ds, filtered, view)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(rep)
}

// filterOptionsAction serves GET /api/v1/filters with the selectable values
// for every filter control.
func (s *Server) filterOptionsAction(c *fiber.Ctx) error {
	ds, err := s.store.Snapshot(c.Context())
	if err != nil {
		s.logger.Error("snapshot load failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "snapshot unavailable")
	}
	return c.JSON(filters.CollectOptions(ds))
}
