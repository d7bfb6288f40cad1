package maps

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"map-manager/core/env"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(inst *fakeInstaller, ready *atomic.Bool, key string) (*fiber.App, *Adapter, *env.Environment) {
	app := fiber.New()
	environment := env.New()
	core := newCore(inst, ready)
	adapter := NewAdapter(core, staticKey(key), zap.NewNop())
	handler := NewHandler(adapter, environment, zap.NewNop())
	handler.RegisterRoutes(app)
	return app, adapter, environment
}

func TestHandleStatus(t *testing.T) {
	app, _, _ := setupTestApp(&fakeInstaller{}, &atomic.Bool{}, "")

	req := httptest.NewRequest("GET", "/maps/status", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.False(t, snap.IsLoaded)
	assert.Equal(t, "not_loaded", snap.Status)
}

func TestHandleRetry_Success(t *testing.T) {
	ready := &atomic.Bool{}
	ready.Store(true)
	inst := &fakeInstaller{}
	app, adapter, _ := setupTestApp(inst, ready, "ABC")
	adapter.Activate(context.Background())
	defer adapter.Close()

	req := httptest.NewRequest("POST", "/maps/retry", nil)
	resp, err := app.Test(req, 5000)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.True(t, snap.IsLoaded)
	assert.Equal(t, "loaded", snap.Status)
}

func TestHandleRetry_Failure(t *testing.T) {
	// Readiness never turns true, so the retry itself fails too.
	inst := &fakeInstaller{}
	app, adapter, _ := setupTestApp(inst, &atomic.Bool{}, "ABC")
	adapter.Activate(context.Background())
	defer adapter.Close()

	req := httptest.NewRequest("POST", "/maps/retry", nil)
	resp, err := app.Test(req, 5000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.False(t, snap.IsLoaded)
	assert.Equal(t, "failed", snap.Status)
	assert.NotEmpty(t, snap.LoadErr)
}

func TestHandleModules(t *testing.T) {
	app, _, environment := setupTestApp(&fakeInstaller{}, &atomic.Bool{}, "")
	environment.Mount("atlas:test", "atlas", "atlas.geometry")

	req := httptest.NewRequest("GET", "/maps/modules", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.ElementsMatch(t, []string{"atlas", "atlas.geometry"}, body["modules"])
}
