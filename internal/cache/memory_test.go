package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set_get", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)
		c.Set(ctx, "abc123", "https://x.example/a")

		url, ok := c.Get(ctx, "abc123")
		require.True(t, ok)
		assert.Equal(t, "https://x.example/a", url)
	})

	t.Run("miss", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)
		_, ok := c.Get(ctx, "nope")
		assert.False(t, ok)
	})

	t.Run("invalidate_then_set_returns_latest", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)
		c.Set(ctx, "abc123", "https://x.example/urlA")
		c.Invalidate(ctx, "abc123")

		_, ok := c.Get(ctx, "abc123")
		require.False(t, ok)

		c.Set(ctx, "abc123", "https://x.example/urlB")
		url, ok := c.Get(ctx, "abc123")
		require.True(t, ok)
		assert.Equal(t, "https://x.example/urlB", url)
	})

	t.Run("ttl_expiry", func(t *testing.T) {
		c := NewMemoryCache(10 * time.Millisecond)
		c.Set(ctx, "abc123", "https://x.example/a")

		time.Sleep(20 * time.Millisecond)

		_, ok := c.Get(ctx, "abc123")
		assert.False(t, ok)
	})
}
