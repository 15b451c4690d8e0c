package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedResult struct {
	Source    string `json:"source"`
	Available bool   `json:"available"`
}

func testCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := testCache(t, time.Hour)

	require.NoError(t, c.Set("avail:book_1:library", cachedResult{Source: "library", Available: true}))

	var got cachedResult
	hit, err := c.Get("avail:book_1:library", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "library", got.Source)
	assert.True(t, got.Available)
}

func TestCache_Miss(t *testing.T) {
	c := testCache(t, time.Hour)

	var got cachedResult
	hit, err := c.Get("avail:absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_Expiry(t *testing.T) {
	c := testCache(t, 50*time.Millisecond)

	require.NoError(t, c.Set("avail:short", cachedResult{Available: true}))
	time.Sleep(100 * time.Millisecond)

	var got cachedResult
	hit, err := c.Get("avail:short", &got)
	require.NoError(t, err)
	assert.False(t, hit, "expired entries must miss")
}

func TestCache_Delete(t *testing.T) {
	c := testCache(t, time.Hour)

	require.NoError(t, c.Set("avail:gone", cachedResult{Available: true}))
	require.NoError(t, c.Delete("avail:gone"))

	var got cachedResult
	hit, err := c.Get("avail:gone", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.Delete("avail:never-existed"))
}

func TestCache_Overwrite(t *testing.T) {
	c := testCache(t, time.Hour)

	require.NoError(t, c.Set("avail:book_1", cachedResult{Available: false}))
	require.NoError(t, c.Set("avail:book_1", cachedResult{Available: true}))

	var got cachedResult
	hit, err := c.Get("avail:book_1", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.True(t, got.Available)
}
