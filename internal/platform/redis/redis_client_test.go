package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/platform/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("connects", func(t *testing.T) {
		rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = rdb.Close() })

		assert.NoError(t, rdb.Ping(context.Background()).Err())
	})

	t.Run("disabled without address", func(t *testing.T) {
		rdb, err := NewRedisClient(context.Background(), config.RedisConfig{})
		assert.ErrorIs(t, err, ErrDisabled)
		assert.Nil(t, rdb)
	})

	t.Run("unreachable", func(t *testing.T) {
		rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
		assert.Error(t, err)
		assert.Nil(t, rdb)
	})
}
