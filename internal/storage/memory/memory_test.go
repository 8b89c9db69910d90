package memory

import (
	"context"
	"testing"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(_ *testing.T) storage.Backend {
		return New()
	})
}

func TestBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := New()
	require.NoError(t, b.AddUser(ctx, &domain.User{ID: "u-1", Email: "a@example.com"}))

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	users[0].Email = "changed@example.com"

	got, err := b.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestBackend_PingAfterClose(t *testing.T) {
	b := New()
	require.NoError(t, b.Close())

	assert.Error(t, b.Ping(context.Background()))
}
