package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type testFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (f *testFeature) Name() string            { return f.name }
func (f *testFeature) IsEnabled() bool         { return f.enabled }
func (f *testFeature) Load(fiber.Router) error { f.loaded = true; return f.loadErr }

func TestManager_LoadAll(t *testing.T) {
	m := NewManager()
	enabled := &testFeature{name: "maps", enabled: true}
	disabled := &testFeature{name: "integrity", enabled: false}
	m.Register(enabled)
	m.Register(disabled)

	err := m.LoadAll(fiber.New())
	assert.NoError(t, err)
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded, "disabled features must be skipped")
}

func TestManager_LoadAllPropagatesError(t *testing.T) {
	m := NewManager()
	m.Register(&testFeature{name: "maps", enabled: true, loadErr: errors.New("boom")})

	err := m.LoadAll(fiber.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "maps")
}
