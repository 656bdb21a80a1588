package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, c.Has("k"))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	assert.True(t, c.Has("k"))

	now = now.Add(2 * time.Second)
	assert.False(t, c.Has("k"))
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type snapshot struct {
		UserID string `json:"user_id"`
		Lines  int    `json:"lines"`
	}

	require.NoError(t, SetJSON(ctx, c, "cart:u1", snapshot{UserID: "u1", Lines: 2}, time.Minute))

	var got snapshot
	ok, err := GetJSON(ctx, c, "cart:u1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, snapshot{UserID: "u1", Lines: 2}, got)

	ok, err = GetJSON(ctx, c, "cart:missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
