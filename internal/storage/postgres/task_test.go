package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BuzzLyutic/taskeeper/internal/storage"
	"github.com/BuzzLyutic/taskeeper/internal/storage/storagetest"
)

// setupTestDB connects to TEST_DATABASE_URL, or starts a throwaway container
// when TASKEEPER_TESTCONTAINERS=1. Otherwise the test is skipped.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		if os.Getenv("TASKEEPER_TESTCONTAINERS") != "1" {
			t.Skip("TEST_DATABASE_URL not set and TASKEEPER_TESTCONTAINERS != 1")
		}
		dbURL = startContainer(t)
	}

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func startContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return connStr
}

func TestTaskAdapter_Conformance(t *testing.T) {
	pool := setupTestDB(t)

	storagetest.Run(t, func(t *testing.T) storage.Adapter {
		_, err := pool.Exec(context.Background(), "TRUNCATE tasks")
		require.NoError(t, err)
		return NewTaskAdapter(pool)
	})
}

func TestTaskAdapter_DuplicateIsSentinel(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	_, err := pool.Exec(ctx, "TRUNCATE tasks")
	require.NoError(t, err)

	a := NewTaskAdapter(pool)
	task := storagetest.NewTask("dup")
	require.NoError(t, a.Insert(ctx, task))
	assert.ErrorIs(t, a.Insert(ctx, task), storage.ErrDuplicate)
}

func TestTaskAdapter_RejectsUnknownStatus(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	task := storagetest.NewTask("bad-status")
	task.Status = "pending"
	assert.Error(t, NewTaskAdapter(pool).Insert(ctx, task), "CHECK constraint must reject it")
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505", Detail: "Key (id)=(dup) already exists."}), storage.ErrDuplicate)

	other := &pgconn.PgError{Code: "23514"}
	assert.Same(t, other, mapError(other))
}
