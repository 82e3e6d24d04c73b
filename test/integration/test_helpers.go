//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"go-taskboard/internal/app"
	"go-taskboard/internal/config"
	"go-taskboard/internal/model"
)

const testSecret = "integration-secret-0123456789abcdef"

func testConfig(databaseURL string) *config.Config {
	return &config.Config{
		ServerPort:              "0",
		ServerReadHeaderTimeout: 5 * time.Second,
		ServerWriteTimeout:      30 * time.Second,
		ServerIdleTimeout:       time.Minute,
		RequestTimeout:          10 * time.Second,
		ShutdownTimeout:         5 * time.Second,
		DatabaseURL:             databaseURL,
		DBMaxConns:              5,
		DBMinConns:              1,
		JWTSecret:               testSecret,
		JWTIssuer:               "taskboard-api",
		JWTAudience:             "taskboard-client",
		JWTAccessTTL:            2 * time.Hour,
		JWTRefreshTTL:           7 * 24 * time.Hour,
		JWTClockSkew:            time.Minute,
		CORSOrigins:             []string{"*"},
		LogLevel:                "error",
		LogFormat:               "text",
		MetricsNamespace:        "taskboard",
	}
}

// startPostgres returns the URL of a fresh PostgreSQL container.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "taskboard",
				"POSTGRES_PASSWORD": "taskboard",
				"POSTGRES_DB":       "taskboard",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://taskboard:taskboard@%s:%s/taskboard?sslmode=disable", host, port.Port())
}

func newServer(t *testing.T, databaseURL string) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	application, err := app.New(context.Background(), testConfig(databaseURL), logger, "integration")
	require.NoError(t, err)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, envelope) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp, readEnvelope(t, resp)
}

func getWithToken(t *testing.T, url string, accessToken string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp, readEnvelope(t, resp)
}

func readEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func tokensFrom(t *testing.T, env envelope) model.TokenPair {
	t.Helper()

	require.True(t, env.Success)
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}
