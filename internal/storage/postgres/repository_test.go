//go:build integration

package postgres

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/storagetest"
	"github.com/bissquit/store-rating/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var testDBURL string

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testutil.NewPostgresContainer(ctx)
	if err != nil {
		slog.Error("failed to start postgres container", "error", err)
		os.Exit(1)
	}
	testDBURL = container.ConnectionString

	if err := Migrate(testDBURL); err != nil {
		slog.Error("failed to migrate", "error", err)
		_ = testcontainers.TerminateContainer(container)
		os.Exit(1)
	}

	code := m.Run()

	_ = testcontainers.TerminateContainer(container)
	os.Exit(code)
}

func newTestBackend(t *testing.T) storage.Backend {
	t.Helper()
	ctx := context.Background()

	pool, err := Connect(ctx, Config{URL: testDBURL, MaxOpenConns: 20, ConnectAttempts: 1})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE current_session, ratings, stores, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return NewBackend(pool)
}

func TestBackend(t *testing.T) {
	storagetest.Run(t, newTestBackend)
}

func TestMigrate_Idempotent(t *testing.T) {
	require.NoError(t, Migrate(testDBURL))
}
