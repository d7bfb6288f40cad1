package maps

import (
	"context"

	"map-manager/core/capability"
	"map-manager/core/env"
	"map-manager/core/keyring"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	adapter *Adapter
	handler *Handler
}

// NewFeature creates a new Maps feature.
func NewFeature(core *capability.Loader, provider keyring.Provider, environment *env.Environment, logger *zap.Logger) *Feature {
	adapter := NewAdapter(core, provider, logger)
	h := NewHandler(adapter, environment, logger)
	return &Feature{adapter: adapter, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "maps"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load activates the adapter and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.adapter.Activate(context.Background())
	f.handler.RegisterRoutes(app)
	return nil
}

// Close detaches the feature's adapter from the loader core.
func (f *Feature) Close() {
	f.adapter.Close()
}
