package cache

import (
	"context"
	"testing"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLayoutCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Miss then hit", func(t *testing.T) {
		c := NewMemoryLayoutCache()
		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, i.ErrCacheMiss)

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	})

	t.Run("Entries expire", func(t *testing.T) {
		c := NewMemoryLayoutCache()
		now := time.Now()
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
		require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

		now = now.Add(2 * time.Second)
		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, i.ErrCacheMiss)
		_, err = c.Get(ctx, "forever")
		assert.NoError(t, err)
	})

	t.Run("Lock is exclusive per key", func(t *testing.T) {
		c := NewMemoryLayoutCache()
		unlock, err := c.Lock(ctx, "k")
		require.NoError(t, err)

		other, err := c.Lock(ctx, "other")
		require.NoError(t, err)
		other()

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = c.Lock(short, "k")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		again, err := c.Lock(ctx, "k")
		require.NoError(t, err)
		again()
	})
}
