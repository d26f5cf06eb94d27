package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/app/di"
	"storefront/internal/platform/config"
	platformdb "storefront/internal/platform/db"
	"storefront/internal/platform/logger"
	platformredis "storefront/internal/platform/redis"
	"storefront/templates"
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
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(cfg.DB)
	if err != nil {
		zap.S().Fatalw("failed to open database", "error", err)
	}

	// Redis is optional: sessions fall back to SQL and the product cache is bypassed.
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		zap.S().Warnw("redis unavailable, running without it", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				zap.S().Errorw("failed to close redis client", "error", err)
			}
		}()
	}

	app, err := di.Build(cfg, db, rdb, templates.FS)
	if err != nil {
		zap.S().Fatalw("failed to build app", "error", err)
	}
	app.Scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.S().Infow("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Errorw("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("http server shutdown failed", "error", err)
	}
	<-app.Scheduler.Stop().Done()
	if err := app.Dispatcher.Close(5 * time.Second); err != nil {
		zap.S().Warnw("mail queue not drained", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
