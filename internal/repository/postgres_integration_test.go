//go:build integration

package repository

import (
	"context"
	"testing"

	"mapcal-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	// Start PostgreSQL container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	// Connect to database
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	require.NoError(t, NewRepository(pool).EnsureSchema(ctx))

	return pool
}

func TestPostgresRepository_CalibrationLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	m := &models.MapCalibration{
		ID:      uuid.New(),
		Name:    "trail",
		Content: "OziExplorer Map Data File Version 2.2\ntrail.jpg\n",
	}
	require.NoError(t, repo.SaveCalibration(ctx, m))
	assert.False(t, m.CreatedAt.IsZero())

	got, err := repo.GetCalibration(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Content, got.Content)

	m.Content += "MM1B,1.5\n"
	require.NoError(t, repo.SaveCalibration(ctx, m))
	assert.False(t, m.UpdatedAt.Before(m.CreatedAt))

	list, err := repo.ListCalibrations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.Content, list[0].Content)

	require.NoError(t, repo.DeleteCalibration(ctx, m.ID))

	_, err = repo.GetCalibration(ctx, m.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteCalibration(ctx, m.ID), models.ErrNotFound)
}
