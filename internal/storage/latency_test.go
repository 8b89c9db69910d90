package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/memory"
	"github.com/bissquit/store-rating/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLatency_ZeroDelayReturnsBackend(t *testing.T) {
	b := memory.New()
	assert.Same(t, b, storage.WithLatency(b, 0))
}

func TestWithLatency_Delays(t *testing.T) {
	const delay = 20 * time.Millisecond
	b := storage.WithLatency(memory.New(), delay)

	start := time.Now()
	_, err := b.ListUsers(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestWithLatency_CancelledContext(t *testing.T) {
	mem := memory.New()
	b := storage.WithLatency(mem, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.AddUser(ctx, &domain.User{ID: "u-1"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = b.UpsertRating(ctx, &domain.Rating{ID: "r-1"})
	assert.ErrorIs(t, err, context.Canceled)

	users, err := mem.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users, "cancelled write is not applied")
}

func TestWithLatency_Conformance(t *testing.T) {
	storagetest.Run(t, func(_ *testing.T) storage.Backend {
		return storage.WithLatency(memory.New(), time.Millisecond)
	})
}
