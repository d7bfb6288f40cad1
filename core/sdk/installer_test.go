package sdk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"map-manager/core/capability"
	"map-manager/core/env"
	"map-manager/core/storage/mocks"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBucket = "mapsdk"

type stubVendor struct {
	mu       sync.Mutex
	calls    int
	manifest *Manifest
	err      error
}

func (s *stubVendor) FetchManifest(ctx context.Context, url string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.manifest, s.err
}

func (s *stubVendor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestInstaller(environment *env.Environment, store *mocks.Client, vendor VendorClient) *Installer {
	return NewInstaller(environment, store, testBucket, vendor, Config{BaseURL: "https://cdn.atlas.example/v3/bundle"}, zap.NewNop())
}

func TestInstaller_CacheMissFetchesVendor(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{manifest: &Manifest{Version: "3.58", Modules: []string{ModuleBase, ModuleGeometry}}}
	inst := newTestInstaller(environment, store, vendor)

	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	store.On("GetObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil, errors.New("object not found"))
	store.On("PutObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, inst.Install(context.Background(), "test-key"))

	assert.Equal(t, 1, vendor.callCount())
	assert.True(t, environment.Has(ModuleBase))
	assert.True(t, environment.Has(ModuleGeometry))
	assert.True(t, inst.Readiness()())
	store.AssertExpectations(t)
}

func TestInstaller_CacheHitSkipsVendor(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{err: errors.New("vendor must not be called")}
	inst := newTestInstaller(environment, store, vendor)

	cached, err := json.Marshal(Manifest{Version: "3.58", Modules: []string{ModuleBase, ModuleGeometry}})
	require.NoError(t, err)

	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	store.On("GetObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(io.NopCloser(bytes.NewReader(cached)), nil)

	require.NoError(t, inst.Install(context.Background(), "test-key"))

	assert.Equal(t, 0, vendor.callCount())
	assert.True(t, environment.Has(ModuleGeometry))
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInstaller_CorruptCacheFallsBackToVendor(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{manifest: &Manifest{Version: "3.58", Modules: []string{ModuleBase, ModuleGeometry}}}
	inst := newTestInstaller(environment, store, vendor)

	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	store.On("GetObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte("{broken"))), nil)
	store.On("PutObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, inst.Install(context.Background(), "test-key"))
	assert.Equal(t, 1, vendor.callCount())
}

func TestInstaller_IncompleteBundleCleansUp(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	// The credential is not provisioned for the geometry sub-module.
	vendor := &stubVendor{manifest: &Manifest{Version: "3.58", Modules: []string{ModuleBase}}}
	inst := newTestInstaller(environment, store, vendor)

	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "limited-key")
	store.On("GetObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil, errors.New("object not found"))
	store.On("RemoveObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil)

	err := inst.Install(context.Background(), "limited-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, capability.ErrIncompleteCapability)

	assert.False(t, environment.Has(ModuleBase), "a partial mount must be rolled back")
	assert.False(t, inst.Readiness()())
	store.AssertExpectations(t)
}

func TestInstaller_VendorFailure(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{err: errors.New("503 from CDN")}
	inst := newTestInstaller(environment, store, vendor)

	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	store.On("GetObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil, errors.New("object not found"))
	store.On("RemoveObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil)

	err := inst.Install(context.Background(), "test-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, capability.ErrInstallationFailed)

	_, found := environment.Lookup(desc.ID())
	assert.False(t, found, "a failed reference must not linger")
}

func TestInstaller_AdoptsExistingReference(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{err: errors.New("vendor must not be called")}
	inst := newTestInstaller(environment, store, vendor)

	// An equivalent bundle was already installed by someone else.
	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	ref, created := environment.Register(desc.ID(), desc.URL(), desc.Modules)
	require.True(t, created)
	environment.Mount(desc.ID(), ModuleBase, ModuleGeometry)
	ref.Complete(nil)

	require.NoError(t, inst.Install(context.Background(), "test-key"))
	assert.Equal(t, 0, vendor.callCount())
	store.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInstaller_AdoptedReferenceTimesOut(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{err: errors.New("vendor must not be called")}
	inst := NewInstaller(environment, store, testBucket, vendor,
		Config{BaseURL: "https://cdn.atlas.example/v3/bundle", AdoptWaitSeconds: 1}, zap.NewNop())

	// Someone registered the reference but its owner died before completing.
	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	_, created := environment.Register(desc.ID(), desc.URL(), desc.Modules)
	require.True(t, created)

	err := inst.Install(context.Background(), "test-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, capability.ErrInstallationFailed)

	// The dead reference is gone, so a later attempt can install fresh.
	_, found := environment.Lookup(desc.ID())
	assert.False(t, found)
	assert.Equal(t, 0, vendor.callCount())
}

func TestInstaller_UninstallIsIdempotent(t *testing.T) {
	environment := env.New()
	store := new(mocks.Client)
	vendor := &stubVendor{manifest: &Manifest{Version: "3.58", Modules: []string{ModuleBase, ModuleGeometry}}}
	inst := newTestInstaller(environment, store, vendor)

	desc := NewDescriptor("https://cdn.atlas.example/v3/bundle", "test-key")
	store.On("GetObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil, errors.New("object not found"))
	store.On("PutObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	store.On("RemoveObject", mock.Anything, testBucket, desc.CacheObject(), mock.Anything).
		Return(nil)

	require.NoError(t, inst.Install(context.Background(), "test-key"))
	require.True(t, environment.Has(ModuleBase))

	require.NoError(t, inst.Uninstall(context.Background()))
	assert.False(t, environment.Has(ModuleBase))
	assert.False(t, environment.Has(ModuleGeometry))

	require.NoError(t, inst.Uninstall(context.Background()))
}
