package keyring

import "context"

// Provider asynchronously supplies the vendor credential.
// An empty key with a nil error means "not provisioned yet".
type Provider interface {
	Key(ctx context.Context) (string, error)
}

// StaticProvider serves a fixed key from configuration.
type StaticProvider struct {
	key string
}

// NewStaticProvider creates a provider returning key verbatim.
func NewStaticProvider(key string) *StaticProvider {
	return &StaticProvider{key: key}
}

// Key returns the configured key.
func (p *StaticProvider) Key(_ context.Context) (string, error) {
	return p.key, nil
}
