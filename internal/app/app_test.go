package app

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-taskboard/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:              "0",
		ServerReadHeaderTimeout: time.Second,
		ServerWriteTimeout:      5 * time.Second,
		ServerIdleTimeout:       5 * time.Second,
		RequestTimeout:          5 * time.Second,
		ShutdownTimeout:         2 * time.Second,
		JWTSecret:               "0123456789abcdef0123456789abcdef",
		JWTIssuer:               "taskboard-api",
		JWTAudience:             "taskboard-client",
		JWTAccessTTL:            2 * time.Hour,
		JWTRefreshTTL:           7 * 24 * time.Hour,
		JWTClockSkew:            time.Minute,
		CORSOrigins:             []string{"*"},
		LogLevel:                "info",
		LogFormat:               "json",
		MetricsNamespace:        "taskboard",
	}
}

func TestNew_InMemoryStore(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(), slog.New(slog.DiscardHandler), "test")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		bytes.NewBufferString(`{"email":"a@x.com","password":"secret123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"memory"`)
}

func TestNew_RejectsInvalidTokenSettings(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.JWTSecret = "short"

	_, err := New(context.Background(), cfg, nil, "test")
	require.Error(t, err)
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(), slog.New(slog.DiscardHandler), "test")
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, listener) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
