// SPDX-License-Identifier: MIT
package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close() //nolint:errcheck

	c.Set("export:ini:rev1", []byte("[flake8]\n"), time.Minute)

	got, ok := c.Get("export:ini:rev1")
	require.True(t, ok)
	assert.Equal(t, []byte("[flake8]\n"), got)

	_, ok = c.Get("export:ini:rev2")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close() //nolint:errcheck

	c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheJanitorEvicts(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewMemoryCache(20 * time.Millisecond)
	c.Set("k", []byte("v"), 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Stats().Evictions >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	time.Sleep(50 * time.Millisecond)
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close() //nolint:errcheck

	c.Set("a", []byte("1"), time.Minute)
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemoryCacheClearAndDelete(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close() //nolint:errcheck

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}
	c.Delete("k0")
	_, ok := c.Get("k0")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Stats().CurrentSize)
}

func TestMemoryCacheDoubleCloseIsSafe(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
