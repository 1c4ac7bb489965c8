package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: client without rate limiting
func createTestClient() *Client {
	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 0
	cfg.Timeout = 5 * time.Second
	return New(cfg)
}

// TestFetch_ReturnsBody verifies a successful fetch returns the page text
func TestFetch_ReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>cards</body></html>"))
	}))
	defer server.Close()

	body, err := createTestClient().Fetch(context.Background(), server.URL+"/cards/", nil)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>cards</body></html>", body)
}

// TestFetch_SendsQuery verifies query parameters reach the server
func TestFetch_SendsQuery(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	query := url.Values{}
	query.Set("page", "3")
	query.Set("rarity", "Rare")

	_, err := createTestClient().Fetch(context.Background(), server.URL, query)
	require.NoError(t, err)
	assert.Equal(t, "3", got.Get("page"))
	assert.Equal(t, "Rare", got.Get("rarity"))
}

// TestFetch_SendsUserAgent verifies the configured User-Agent header
func TestFetch_SendsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := createTestClient().Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().UserAgent, got)
}

// TestFetch_HTTPError verifies non-2xx responses become transport errors
func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := createTestClient().Fetch(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var transportErr *Error
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 503")
}

// TestFetch_NetworkError verifies connection failures become transport
// errors
func TestFetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	_, err := createTestClient().Fetch(context.Background(), serverURL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var transportErr *Error
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
}

// TestFetch_CancelledContext verifies a cancelled context stops the request
func TestFetch_CancelledContext(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := createTestClient().Fetch(ctx, server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Zero(t, hits.Load())
}

// TestFetch_RateLimited verifies requests are spaced by the limiter
func TestFetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 20
	client := New(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), server.URL, nil)
		require.NoError(t, err)
	}

	// first request is immediate, the next two wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
