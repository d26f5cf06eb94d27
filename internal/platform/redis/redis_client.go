// Package redis connects to the optional Redis instance backing sessions and the product cache.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/platform/config"
)

// ErrDisabled is returned when no Redis address is configured.
var ErrDisabled = errors.New("redis disabled")

// NewRedisClient returns a connected client, or an error when Redis is disabled or unreachable.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrDisabled
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		zap.S().Errorw("redis connection failed", "address", cfg.Addr, "error", err)
		return nil, err
	}

	zap.S().Infow("redis connection successful", "address", cfg.Addr)
	return rdb, nil
}
