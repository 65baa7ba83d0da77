package assets

import (
	"errors"
	"path"

	"nubes-server/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for assets.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the asset routes.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/assets")
	group.Get("/", h.HandleList)
	group.Get("/*", h.HandleGet)
}

// HandleList lists object keys, optionally under ?prefix=.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	keys, err := h.service.List(c.Context(), c.Query("prefix"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list assets", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"keys": keys})
}

// HandleGet streams one object. The content type is derived from the key's
// extension.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	key := c.Params("*")

	obj, err := h.service.Open(c.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.Debug("Asset not found", zap.String("key", key))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
		}
		l.Error("Failed to open asset", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if ext := path.Ext(key); ext != "" {
		c.Type(ext[1:])
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	// The stream is closed by fasthttp once the body is written.
	return c.SendStream(obj)
}
