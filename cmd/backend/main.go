// Package main provides the entry point for the QRLink redirect service:
// the short-code resolution hot path with its cache-aside Redis layer
// and the asynchronous scan-analytics tracker.
package main

import (
	"QRLink-Backend/internal/cache"
	"QRLink-Backend/internal/config"
	"QRLink-Backend/internal/database"
	httpHandler "QRLink-Backend/internal/handler/http"
	"QRLink-Backend/internal/repository/postgres"
	"QRLink-Backend/internal/service"
	"QRLink-Backend/internal/tracker"
	"QRLink-Backend/pkg/logger"
	"QRLink-Backend/pkg/useragent"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting QRLink redirect service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Initialize User-Agent parser
	if err := useragent.InitGlobalParser(cfg.Tracker.RegexesPath, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using substring fallback", zap.Error(err))
	}

	// Initialize storage
	storage := postgres.New(db, log)

	// Initialize resolution cache. A missing Redis degrades to an
	// in-process cache rather than disabling caching entirely.
	var resolutionCache cache.ResolutionCache
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB)
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to in-memory cache", zap.Error(err))
			resolutionCache = cache.NewMemoryCache(cfg.Cache.TTL())
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("failed to close Redis client", zap.Error(err))
				}
			}()
			resolutionCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL(), log)
			log.Info("connected to Redis resolution cache",
				zap.String("addr", cfg.Cache.RedisAddr),
				zap.Duration("ttl", cfg.Cache.TTL()))
		}
	} else {
		resolutionCache = cache.NewMemoryCache(cfg.Cache.TTL())
		log.Info("Redis cache disabled, using in-memory resolution cache")
	}

	// Initialize scan tracker
	trackerConfig := tracker.DefaultConfig()
	trackerConfig.WorkerCount = cfg.Tracker.WorkerCount
	trackerConfig.BufferSize = cfg.Tracker.BufferSize
	scanTracker := tracker.New(storage, log, trackerConfig)
	if err := scanTracker.Start(); err != nil {
		log.Fatal("failed to start scan tracker", zap.Error(err))
	}

	// Initialize services
	generator := service.NewCodeGenerator(storage.ExistsByShortCode, &cfg.ShortCode)
	resolver := service.NewResolver(storage, resolutionCache, log)
	links := service.NewLinkService(storage, resolutionCache, generator, log)

	// Create HTTP server
	apiServer := httpHandler.NewServer(storage, resolver, links, scanTracker, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", httpServer.Addr))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down QRLink redirect service...")

	// Stop accepting requests, then drain the tracker queue
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if err := scanTracker.Stop(); err != nil {
		log.Error("failed to stop scan tracker", zap.Error(err))
	}
}
