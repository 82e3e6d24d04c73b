package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestAuthOperationCounter(t *testing.T) {
	t.Parallel()

	m := New("test")
	m.AuthOperation("login", OutcomeSuccess)
	m.AuthOperation("login", OutcomeSuccess)
	m.AuthOperation("login", OutcomeRejected)

	require.InDelta(t, 2, testutil.ToFloat64(m.authOperations.WithLabelValues("login", OutcomeSuccess)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.authOperations.WithLabelValues("login", OutcomeRejected)), 0)
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.AuthOperation("register", OutcomeError)
		m.TokensIssued("access", 1)
		m.ObserveHTTP("/health", http.MethodGet, http.StatusOK, time.Millisecond)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	t.Parallel()

	m := New("test")
	m.TokensIssued("refresh", 2)
	m.ObserveHTTP("/api/v1/auth/login", http.MethodPost, http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `test_auth_tokens_issued_total{kind="refresh"} 2`)
	require.Contains(t, string(body), "test_http_request_duration_seconds")
}
