package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"toplists/internal/config"
	"toplists/internal/db"
	"toplists/internal/middleware"
	"toplists/internal/router"
	"toplists/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func main() {
	cfg, envLoaded := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !envLoaded {
		logger.Info("No .env file found, finding env vars from system")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	gdb, err := db.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	logger.Info("Database connection established", zap.String("driver", cfg.DBDriver))

	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed")

	if cfg.SeedCategories {
		if err := db.SeedCategories(gdb, logger); err != nil {
			logger.Fatal("Failed to seed categories", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 排行缓存：配置了 REDIS_URL 时多实例共享，否则使用进程内 LRU
	var cache utils.Cache
	if cfg.RedisURL != "" {
		rc, err := utils.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rc.Close()
		cache = rc
		logger.Info("Using redis cache")
	} else {
		lc, err := utils.NewLocalCache(500)
		if err != nil {
			logger.Fatal("Failed to create LRU cache", zap.Error(err))
		}
		cache = lc
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := router.New(router.App{
		DB:           gdb,
		Logger:       logger,
		Cache:        cache,
		CacheTTL:     cfg.CacheTTL,
		Metrics:      middleware.NewMetrics(reg),
		WriteLimiter: middleware.NewWriteLimiter(cfg.WriteRate, cfg.WriteBurst),
		JWTSecret:    cfg.JWTSecret,
		ClientOrigin: cfg.ClientOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
