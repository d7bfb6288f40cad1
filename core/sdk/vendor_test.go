package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPVendorClient_FetchManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"3.58","modules":["atlas","atlas.geometry"]}`))
	}))
	defer srv.Close()

	client := NewVendorClient(Config{TimeoutSeconds: 5})
	m, err := client.FetchManifest(context.Background(), srv.URL+"?key=abc123")
	require.NoError(t, err)

	assert.Equal(t, "3.58", m.Version)
	assert.Equal(t, []string{"atlas", "atlas.geometry"}, m.Modules)
}

func TestHTTPVendorClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewVendorClient(Config{})
	_, err := client.FetchManifest(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestHTTPVendorClient_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewVendorClient(Config{})
	_, err := client.FetchManifest(context.Background(), srv.URL)
	assert.Error(t, err)
}
