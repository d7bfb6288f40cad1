package maps

import (
	"context"
	"sync"

	"map-manager/core/capability"
	"map-manager/core/keyring"

	"go.uber.org/zap"
)

// Snapshot is the consumer-facing status surface.
type Snapshot struct {
	IsLoaded bool   `json:"is_loaded"`
	Status   string `json:"status"`
	LoadErr  string `json:"load_error,omitempty"`
	KeyErr   string `json:"key_error,omitempty"`
}

// Adapter binds one consumer to the singleton loader. It subscribes for its
// whole lifetime and caches the credential plus the latest loader state so
// Snapshot never blocks.
type Adapter struct {
	loader   *capability.Loader
	provider keyring.Provider
	logger   *zap.Logger

	mu     sync.RWMutex
	key    string
	keyErr error
	state  capability.State
	unsub  func()
}

// NewAdapter creates an inactive adapter; call Activate to bind it.
func NewAdapter(loader *capability.Loader, provider keyring.Provider, logger *zap.Logger) *Adapter {
	return &Adapter{loader: loader, provider: provider, logger: logger}
}

// Activate resolves the credential, subscribes to the loader and kicks off
// a load when a key is available and nothing is loaded or loading yet.
func (a *Adapter) Activate(ctx context.Context) {
	key, err := a.provider.Key(ctx)
	a.mu.Lock()
	a.key, a.keyErr = key, err
	a.mu.Unlock()

	if err != nil {
		a.logger.Warn("Vendor credential lookup failed", zap.Error(err))
	}

	unsub := a.loader.Subscribe(func(st capability.State) {
		a.mu.Lock()
		a.state = st
		a.mu.Unlock()
	})
	a.mu.Lock()
	a.unsub = unsub
	a.mu.Unlock()

	if key == "" {
		return
	}
	st := a.loader.State()
	if st.Status == capability.StatusLoaded || st.Status == capability.StatusLoading {
		return
	}
	a.loader.EnsureLoaded(ctx, key)
}

// Close detaches the adapter from the loader. The loader itself lives on;
// one consumer going away must not tear down shared state.
func (a *Adapter) Close() {
	a.mu.Lock()
	unsub := a.unsub
	a.unsub = nil
	a.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Snapshot returns the current consumer-facing status.
func (a *Adapter) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := Snapshot{
		IsLoaded: a.state.Status == capability.StatusLoaded && a.key != "",
		Status:   a.state.Status.String(),
	}
	if a.state.Err != nil {
		snap.LoadErr = a.state.Err.Error()
	}
	if a.keyErr != nil {
		snap.KeyErr = a.keyErr.Error()
	}
	return snap
}

// Retry resets the loader and starts a fresh attempt. When no credential was
// cached yet it asks the keyring again first. The returned channel delivers
// the outcome of the new attempt.
func (a *Adapter) Retry(ctx context.Context) <-chan error {
	a.mu.RLock()
	key := a.key
	a.mu.RUnlock()

	if key == "" {
		fresh, err := a.provider.Key(ctx)
		a.mu.Lock()
		a.key, a.keyErr = fresh, err
		a.mu.Unlock()
		key = fresh
	}

	a.logger.Info("Retrying map capability load")
	a.loader.Reset(ctx)
	return a.loader.EnsureLoaded(ctx, key)
}
