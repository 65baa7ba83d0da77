package status

import (
	"nubes-server/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the runtime status.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/status")
	group.Get("/", h.HandleStatus)
	group.Get("/services/:name", h.HandleService)
}

// HandleStatus reports every registered service and template engine.
// Responds 503 when a service ping fails.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	report := h.service.Report(c.Context())
	if report.Status != StatusOK {
		logger.WithRayID(h.service.logger, c).Warn("Status degraded")
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleService reports a single service.
func (h *Handler) HandleService(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")

	sr, ok := h.service.Check(c.Context(), name)
	if !ok {
		l.Debug("Unknown service requested", zap.String("service", name))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "service not registered"})
	}
	if sr.Status == StatusError {
		return c.Status(fiber.StatusServiceUnavailable).JSON(sr)
	}
	return c.JSON(sr)
}
