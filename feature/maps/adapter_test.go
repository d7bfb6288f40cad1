package maps

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"map-manager/core/capability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInstaller struct {
	mu         sync.Mutex
	installs   int
	uninstalls int
	err        error
	block      chan struct{}
}

func (f *fakeInstaller) Install(ctx context.Context, key string) error {
	f.mu.Lock()
	f.installs++
	block := f.block
	err := f.err
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeInstaller) Uninstall(ctx context.Context) error {
	f.mu.Lock()
	f.uninstalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeInstaller) installCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installs
}

type fakeProvider struct {
	fn func() (string, error)
}

func (p fakeProvider) Key(_ context.Context) (string, error) {
	return p.fn()
}

func staticKey(key string) fakeProvider {
	return fakeProvider{fn: func() (string, error) { return key, nil }}
}

func newCore(inst *fakeInstaller, ready *atomic.Bool) *capability.Loader {
	return capability.NewLoader(inst, func() bool { return ready.Load() }, zap.NewNop(), nil)
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, 3*time.Second, 10*time.Millisecond, msg)
}

func TestAdapter_ActivateLoads(t *testing.T) {
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	ready.Store(true)
	core := newCore(inst, ready)

	adapter := NewAdapter(core, staticKey("ABC"), zap.NewNop())
	adapter.Activate(context.Background())
	defer adapter.Close()

	eventually(t, func() bool { return adapter.Snapshot().IsLoaded }, "activation must load the capability")
	assert.Equal(t, 1, inst.installCount())

	snap := adapter.Snapshot()
	assert.Equal(t, "loaded", snap.Status)
	assert.Empty(t, snap.LoadErr)
	assert.Empty(t, snap.KeyErr)
}

func TestAdapter_FiveConsumersShareOneInstall(t *testing.T) {
	inst := &fakeInstaller{block: make(chan struct{})}
	ready := &atomic.Bool{}
	ready.Store(true)
	core := newCore(inst, ready)

	adapters := make([]*Adapter, 5)
	for i := range adapters {
		adapters[i] = NewAdapter(core, staticKey("ABC"), zap.NewNop())
		adapters[i].Activate(context.Background())
		defer adapters[i].Close()
	}

	close(inst.block)

	for _, a := range adapters {
		a := a
		eventually(t, func() bool { return a.Snapshot().IsLoaded }, "every consumer must observe the shared load")
	}
	assert.Equal(t, 1, inst.installCount(), "five consumers must trigger exactly one installation")
}

func TestAdapter_MissingKeySkipsLoad(t *testing.T) {
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	core := newCore(inst, ready)

	adapter := NewAdapter(core, staticKey(""), zap.NewNop())
	adapter.Activate(context.Background())
	defer adapter.Close()

	snap := adapter.Snapshot()
	assert.False(t, snap.IsLoaded)
	assert.Equal(t, "not_loaded", snap.Status)
	assert.Equal(t, 0, inst.installCount())
}

func TestAdapter_KeyErrorIsReportedSeparately(t *testing.T) {
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	core := newCore(inst, ready)

	provider := fakeProvider{fn: func() (string, error) { return "", errors.New("keyring down") }}
	adapter := NewAdapter(core, provider, zap.NewNop())
	adapter.Activate(context.Background())
	defer adapter.Close()

	snap := adapter.Snapshot()
	assert.False(t, snap.IsLoaded)
	assert.Equal(t, "keyring down", snap.KeyErr)
	assert.Empty(t, snap.LoadErr, "a credential failure is not a load failure")
}

func TestAdapter_RetryAfterIncompleteBundle(t *testing.T) {
	// First attempt: the bundle installs but lacks the required sub-module.
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	core := newCore(inst, ready)

	adapter := NewAdapter(core, staticKey("ABC"), zap.NewNop())
	adapter.Activate(context.Background())
	defer adapter.Close()

	eventually(t, func() bool { return adapter.Snapshot().Status == "failed" }, "incomplete bundle must fail the load")
	snap := adapter.Snapshot()
	assert.False(t, snap.IsLoaded)
	assert.Contains(t, snap.LoadErr, capability.ErrIncompleteCapability.Error())

	// The account got upgraded; a retry starts clean and succeeds.
	ready.Store(true)
	err := <-adapter.Retry(context.Background())
	require.NoError(t, err)

	eventually(t, func() bool { return adapter.Snapshot().IsLoaded }, "retry must recover the capability")
	assert.Equal(t, 2, inst.installCount())
}

func TestAdapter_RetryRefetchesMissingKey(t *testing.T) {
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	ready.Store(true)
	core := newCore(inst, ready)

	// Not provisioned at startup, provisioned by the time of the retry.
	var calls atomic.Int32
	provider := fakeProvider{fn: func() (string, error) {
		if calls.Add(1) == 1 {
			return "", nil
		}
		return "ABC", nil
	}}

	adapter := NewAdapter(core, provider, zap.NewNop())
	adapter.Activate(context.Background())
	defer adapter.Close()
	require.Equal(t, 0, inst.installCount())

	err := <-adapter.Retry(context.Background())
	require.NoError(t, err)
	eventually(t, func() bool { return adapter.Snapshot().IsLoaded }, "retry must pick up the new credential")
}

func TestAdapter_ConcurrentActivateAndClose(t *testing.T) {
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	ready.Store(true)
	core := newCore(inst, ready)

	adapter := NewAdapter(core, staticKey("ABC"), zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		adapter.Activate(context.Background())
	}()
	go func() {
		defer wg.Done()
		adapter.Close()
	}()
	wg.Wait()

	// Repeated close is a no-op.
	adapter.Close()
	adapter.Close()
}

func TestAdapter_CloseStopsMirroring(t *testing.T) {
	inst := &fakeInstaller{}
	ready := &atomic.Bool{}
	ready.Store(true)
	core := newCore(inst, ready)

	adapter := NewAdapter(core, staticKey(""), zap.NewNop())
	adapter.Activate(context.Background())
	adapter.Close()

	// The loader moves on without this consumer.
	<-core.EnsureLoaded(context.Background(), "ABC")
	assert.Equal(t, "not_loaded", adapter.Snapshot().Status)
}
