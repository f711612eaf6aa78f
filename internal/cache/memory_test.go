package cache

import (
	"context"
	"testing"

	"storefront-checkout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheMissThenHit(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	items := []models.CartItem{{ItemUUID: "u1", Quantity: 2}}
	require.NoError(t, c.Set(ctx, "s1", items))

	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "s1", []models.CartItem{{ItemUUID: "u1"}}))
	require.NoError(t, c.Delete(ctx, "s1"))

	_, err := c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Deleting an absent key is fine.
	assert.NoError(t, c.Delete(ctx, "s1"))
}

func TestMemoryCacheCopiesOnReadAndWrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	items := []models.CartItem{{ItemUUID: "u1", Quantity: 2}}
	require.NoError(t, c.Set(ctx, "s1", items))

	// Mutating the caller's slice must not reach the cache.
	items[0].Quantity = 99
	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got[0].Quantity)

	// Mutating a returned slice must not reach the cache either.
	got[0].Quantity = 42
	again, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, again[0].Quantity)
}
