package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/peek/v1/database"
)

func TestStoreAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	conn, containerInstance, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	now := time.Now()
	store, err := Open(database.PostgresConfig(conn), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer store.Close()

	t.Run("Save and Get", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "r1", "db.queries", 3))
		require.NoError(t, store.Save(ctx, "r1", "db.queries", 4))
		require.NoError(t, store.Save(ctx, "r1", "db.time_ms", 12.5))

		got, err := store.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"db.queries": float64(4), "db.time_ms": 12.5}, got)
	})

	t.Run("Requests and Purge", func(t *testing.T) {
		now = now.Add(time.Hour)
		require.NoError(t, store.Save(ctx, "r2", "db.queries", 1))

		ids, err := store.Requests(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r2"}, ids)

		removed, err := store.Purge(ctx, 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		ids, err = store.Requests(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"r2"}, ids)
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx))

		ids, err := store.Requests(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func setupPostgresContainer(ctx context.Context) (database.Connection, testcontainers.Container, error) {
	port, err := getFreePort()
	if err != nil {
		return database.Connection{}, nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = nat.PortMap{
				"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
			}
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	containerInstance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return database.Connection{}, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := containerInstance.Host(ctx)
	if err != nil {
		_ = containerInstance.Terminate(ctx)
		return database.Connection{}, nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := containerInstance.MappedPort(ctx, "5432")
	if err != nil {
		_ = containerInstance.Terminate(ctx)
		return database.Connection{}, nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	conn := database.Connection{
		Host:     host,
		Port:     mappedPort.Port(),
		User:     "testuser",
		Password: "testpass",
		DbName:   "testdb",
		SSLMode:  "disable",
	}
	if err := waitForPostgresReady(conn, 30*time.Second); err != nil {
		_ = containerInstance.Terminate(ctx)
		return database.Connection{}, nil, fmt.Errorf("postgres container not ready: %w", err)
	}
	return conn, containerInstance, nil
}

// waitForPostgresReady attempts to connect to PostgreSQL until it's ready or times out
func waitForPostgresReady(conn database.Connection, timeout time.Duration) error {
	connStr := database.PostgresDSN(conn)

	startTime := time.Now()
	for {
		if time.Since(startTime) > timeout {
			return fmt.Errorf("timed out waiting for PostgreSQL to be ready after %s", timeout)
		}

		db, err := sql.Open("postgres", connStr)
		if err != nil {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		err = db.Ping()
		_ = db.Close()
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
