package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Manifest is the bundle manifest the vendor (or the cache) returns. Modules
// lists what the bundle actually ships, which may be less than what the
// descriptor asked for when the credential is not provisioned for a
// sub-module.
type Manifest struct {
	Version string   `json:"version"`
	Modules []string `json:"modules"`
}

// VendorClient fetches bundle manifests from the vendor CDN.
type VendorClient interface {
	FetchManifest(ctx context.Context, url string) (*Manifest, error)
}

// HTTPVendorClient is the production VendorClient.
type HTTPVendorClient struct {
	client *http.Client
}

// NewVendorClient creates a vendor client with the configured timeout.
func NewVendorClient(cfg Config) *HTTPVendorClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	return &HTTPVendorClient{
		client: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// FetchManifest downloads and decodes the manifest at url.
func (c *HTTPVendorClient) FetchManifest(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vendor fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vendor returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor response: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse bundle manifest: %w", err)
	}
	return &m, nil
}
