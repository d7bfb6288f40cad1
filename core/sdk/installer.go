package sdk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"map-manager/core/capability"
	"map-manager/core/env"
	"map-manager/core/storage"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Installer implements capability.Installer against the hosting environment,
// with a MinIO-backed manifest cache in front of the vendor CDN.
type Installer struct {
	environment *env.Environment
	store       storage.Client
	bucket      string
	vendor      VendorClient
	baseURL     string
	adoptWait   time.Duration
	logger      *zap.Logger

	mu   sync.Mutex
	last *Descriptor
}

// NewInstaller creates the installer.
func NewInstaller(environment *env.Environment, store storage.Client, bucket string, vendor VendorClient, cfg Config, logger *zap.Logger) *Installer {
	adoptWait := cfg.AdoptWaitSeconds
	if adoptWait <= 0 {
		adoptWait = 30
	}
	return &Installer{
		environment: environment,
		store:       store,
		bucket:      bucket,
		vendor:      vendor,
		baseURL:     cfg.BaseURL,
		adoptWait:   time.Duration(adoptWait) * time.Second,
		logger:      logger,
	}
}

// Readiness returns the predicate confirming the full capability surface is
// mounted. It is re-evaluated on every completion, never cached.
func (i *Installer) Readiness() capability.Readiness {
	return func() bool {
		for _, m := range RequiredModules {
			if !i.environment.Has(m) {
				return false
			}
		}
		return true
	}
}

// Install makes the bundle for key available in the environment and blocks
// until its completion signal. If an equivalent reference already exists it
// attaches to that reference instead of fetching a duplicate. On any failure
// the reference and the cached manifest are removed so a later attempt
// starts clean.
func (i *Installer) Install(ctx context.Context, key string) error {
	desc := NewDescriptor(i.baseURL, key)

	i.mu.Lock()
	i.last = &desc
	i.mu.Unlock()

	ref, created := i.environment.Register(desc.ID(), desc.URL(), desc.Modules)
	if !created {
		// Installed (or installing) by a prior attempt or an external
		// actor: adopt its completion signal. The wait is bounded so a
		// reference whose owner died cannot park the load forever.
		i.logger.Debug("Adopting existing SDK reference", zap.String("ref", desc.ID()))
		wctx, cancel := context.WithTimeout(ctx, i.adoptWait)
		defer cancel()
		err := ref.Wait(wctx)
		if errors.Is(err, context.DeadlineExceeded) {
			i.environment.RemoveMatching(desc.ID())
			return fmt.Errorf("%w: adopted reference %s never completed", capability.ErrInstallationFailed, desc.ID())
		}
		return err
	}

	err := i.fetchAndMount(ctx, desc)
	if err != nil {
		i.cleanup(ctx, desc)
	}
	ref.Complete(err)
	return err
}

// Uninstall removes any reference this installer created plus its cached
// manifest. It is idempotent and safe to call when nothing is installed.
func (i *Installer) Uninstall(ctx context.Context) error {
	i.mu.Lock()
	desc := i.last
	i.mu.Unlock()

	removed := i.environment.RemoveMatching(ReferencePrefix)
	if removed > 0 {
		i.logger.Debug("Removed SDK references", zap.Int("count", removed))
	}
	if desc != nil {
		i.dropCache(ctx, *desc)
	}
	return nil
}

func (i *Installer) fetchAndMount(ctx context.Context, desc Descriptor) error {
	manifest, cached, err := i.manifest(ctx, desc)
	if err != nil {
		return fmt.Errorf("%w: %v", capability.ErrInstallationFailed, err)
	}

	i.environment.Mount(desc.ID(), manifest.Modules...)

	for _, m := range desc.Modules {
		if !i.environment.Has(m) {
			return fmt.Errorf("%w: bundle %s is missing module %q",
				capability.ErrIncompleteCapability, manifest.Version, m)
		}
	}

	if !cached {
		i.cacheManifest(ctx, desc, manifest)
	}

	i.logger.Info("SDK bundle mounted",
		zap.String("version", manifest.Version),
		zap.Strings("modules", manifest.Modules),
		zap.Bool("from_cache", cached))
	return nil
}

// manifest returns the bundle manifest, preferring the storage cache.
// A corrupt cache entry is ignored and the vendor is asked instead.
func (i *Installer) manifest(ctx context.Context, desc Descriptor) (*Manifest, bool, error) {
	if rc, err := i.store.GetObject(ctx, i.bucket, desc.CacheObject(), minio.GetObjectOptions{}); err == nil {
		data, rerr := io.ReadAll(rc)
		_ = rc.Close()
		if rerr == nil {
			var m Manifest
			if uerr := json.Unmarshal(data, &m); uerr == nil && len(m.Modules) > 0 {
				return &m, true, nil
			}
		}
		i.logger.Warn("Ignoring unreadable cached manifest", zap.String("object", desc.CacheObject()))
	}

	m, err := i.vendor.FetchManifest(ctx, desc.URL())
	if err != nil {
		return nil, false, err
	}
	return m, false, nil
}

func (i *Installer) cacheManifest(ctx context.Context, desc Descriptor, m *Manifest) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	_, err = i.store.PutObject(ctx, i.bucket, desc.CacheObject(),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		// Cache write-back is best effort; the load itself succeeded.
		i.logger.Warn("Failed to cache bundle manifest",
			zap.String("object", desc.CacheObject()), zap.Error(err))
	}
}

func (i *Installer) cleanup(ctx context.Context, desc Descriptor) {
	i.environment.RemoveMatching(ReferencePrefix)
	i.dropCache(ctx, desc)
}

// dropCache removes the cached manifest so a failed or stale bundle cannot
// poison the next attempt.
func (i *Installer) dropCache(ctx context.Context, desc Descriptor) {
	if err := i.store.RemoveObject(ctx, i.bucket, desc.CacheObject(), minio.RemoveObjectOptions{}); err != nil {
		i.logger.Debug("Cache object removal failed",
			zap.String("object", desc.CacheObject()), zap.Error(err))
	}
}
