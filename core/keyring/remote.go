package keyring

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// RemoteProvider fetches the credential from the account service.
// Transient failures (network, 5xx) are retried with exponential backoff;
// client errors fail immediately.
type RemoteProvider struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewRemoteProvider creates a provider against the account-service endpoint.
func NewRemoteProvider(url string, logger *zap.Logger) *RemoteProvider {
	return &RemoteProvider{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type keyResponse struct {
	Key string `json:"key"`
}

// Key fetches the credential, retrying transient errors up to three times.
func (p *RemoteProvider) Key(ctx context.Context) (string, error) {
	var key string

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			p.logger.Warn("Key fetch attempt failed", zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			err := fmt.Errorf("account service returned status %d", resp.StatusCode)
			p.logger.Warn("Key fetch attempt failed", zap.Error(err))
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("account service returned status %d", resp.StatusCode))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var kr keyResponse
		if err := json.Unmarshal(data, &kr); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse key response: %w", err))
		}
		key = kr.Key
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", fmt.Errorf("failed to fetch vendor key: %w", err)
	}
	return key, nil
}
