//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"go-taskboard/internal/database"
	"go-taskboard/internal/model"
)

func startPostgres(t *testing.T) *database.DB {
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
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://taskboard:taskboard@%s:%s/taskboard?sslmode=disable", host, port.Port())
	require.NoError(t, database.Migrate(url))

	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

func TestUserRepository_Postgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewUserRepository(db.Pool)

	created, err := repo.Create(ctx, model.User{Email: "a@x.com", PasswordHash: "opaque", IsActive: true})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := repo.FindByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, "opaque", found.PasswordHash)
	require.True(t, found.IsActive)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)

	_, err = repo.Create(ctx, model.User{Email: "A@x.com", PasswordHash: "other", IsActive: true})
	require.ErrorIs(t, err, model.ErrUserAlreadyExists)

	_, err = repo.FindByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = repo.FindByID(ctx, created.ID+1000)
	require.ErrorIs(t, err, model.ErrUserNotFound)

	audit := NewAuditRepository(db.Pool)
	require.NoError(t, audit.Log(ctx, model.AuditEntry{
		Action:     "login",
		Status:     "success",
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Actor:      model.AuditActor{UserID: created.ID, Email: "a@x.com", IP: "127.0.0.1"},
	}))
	count, err := audit.CountByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
