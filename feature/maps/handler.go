package maps

import (
	"map-manager/core/env"
	"map-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the map capability.
type Handler struct {
	adapter     *Adapter
	environment *env.Environment
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(adapter *Adapter, environment *env.Environment, logg *zap.Logger) *Handler {
	return &Handler{adapter: adapter, environment: environment, logger: logg}
}

// RegisterRoutes registers the maps routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/maps")
	group.Get("/status", h.HandleStatus)
	group.Post("/retry", h.HandleRetry)
	group.Get("/modules", h.HandleModules)
}

// HandleStatus returns the current capability status.
// @Summary Map Capability Status
// @Description Returns whether the vendor map SDK is loaded, plus any load or credential error.
// @Tags maps
// @Accept json
// @Produce json
// @Success 200 {object} maps.Snapshot "Status"
// @Router /maps/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.adapter.Snapshot())
}

// HandleRetry resets the loader and runs a fresh load attempt.
// @Summary Retry Map Capability Load
// @Description Clears the failed state, removes the stale SDK reference and performs a new installation attempt. Blocks until the attempt completes.
// @Tags maps
// @Accept json
// @Produce json
// @Success 200 {object} maps.Snapshot "Loaded"
// @Failure 502 {object} maps.Snapshot "Load failed"
// @Router /maps/retry [post]
func (h *Handler) HandleRetry(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Map capability retry requested")

	err := <-h.adapter.Retry(c.Context())
	snap := h.adapter.Snapshot()
	if err != nil {
		l.Error("Retry failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(snap)
	}
	return c.JSON(snap)
}

// HandleModules lists the SDK modules currently mounted.
// @Summary Mounted SDK Modules
// @Description Lists the vendor SDK modules present on the capability surface.
// @Tags maps
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Modules"
// @Router /maps/modules [get]
func (h *Handler) HandleModules(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"modules": h.environment.Modules(),
	})
}
