package maps

import (
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"map-manager/core/env"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFeature(t *testing.T) {
	ready := &atomic.Bool{}
	ready.Store(true)
	core := newCore(&fakeInstaller{}, ready)
	feature := NewFeature(core, staticKey("ABC"), env.New(), zap.NewNop())

	assert.Equal(t, "maps", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	defer feature.Close()

	req := httptest.NewRequest("GET", "/maps/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
