package auth

import (
	"context"
	"testing"
	"time"

	"github.com/example/storefront/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(cache.NewMemoryCache())

	ok, err := store.Valid(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "u1", "t1", time.Hour))
	ok, err = store.Valid(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	// a new login replaces the previous refresh token
	require.NoError(t, store.Save(ctx, "u1", "t2", time.Hour))
	ok, err = store.Valid(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Revoke(ctx, "u1"))
	ok, err = store.Valid(ctx, "u1", "t2")
	require.NoError(t, err)
	assert.False(t, ok)
}
