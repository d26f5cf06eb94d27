// Command sweep deletes expired and revoked login sessions once and exits.
// It serves deployments that run housekeeping from an external scheduler.
package main

import (
	"context"
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/app/di"
	"storefront/internal/platform/config"
	platformdb "storefront/internal/platform/db"
	"storefront/internal/platform/logger"
	platformredis "storefront/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := platformdb.Open(cfg.DB)
	if err != nil {
		zap.S().Fatalw("failed to open database", "error", err)
	}

	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err == nil {
		rdb = tmp
		defer rdb.Close()
	}

	n, err := di.NewSessionRepository(rdb, db).DeleteExpired(ctx)
	if err != nil {
		zap.S().Fatalw("session sweep failed", "error", err)
	}
	zap.S().Infow("session sweep ok", "deleted", n)
}
