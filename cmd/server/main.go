package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-roster/internal/cache"
	"hospital-roster/internal/config"
	"hospital-roster/internal/database"
	"hospital-roster/internal/handler"
	"hospital-roster/internal/middleware"
	"hospital-roster/internal/repository"
	"hospital-roster/internal/service"
	"hospital-roster/pkg/logger"
	"hospital-roster/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(cfg.JWT.AccessSecret)

	// 3. Initialize database connection
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Database unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Initialize the roster snapshot cache
	snapshotCache := newCache(ctx, cfg)
	if snapshotCache != nil {
		defer snapshotCache.Close()
	}

	// 5. Initialize repositories
	hospitalRepo := repository.NewHospitalRepo(db)
	adminRepo := repository.NewAdminRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// 6. Initialize services
	hospitalService := service.NewHospitalService(hospitalRepo, adminRepo, auditRepo, snapshotCache, cfg.Cache.TTL)
	if err := hospitalService.PurgeSnapshots(ctx); err != nil {
		log.Warn().Err(err).Msg("Stale roster snapshots may be served until they expire")
	}

	// 7. Start background worker in goroutine
	if cfg.Worker.Enabled && snapshotCache != nil {
		workerService := service.NewWorkerService(hospitalService, cfg.Worker.Interval)
		go workerService.Start(ctx)
	}

	// 8. Setup Gin mode and router
	gin.SetMode(cfg.Server.GinMode)
	r := handler.NewRouter(cfg,
		handler.NewHospitalHandler(hospitalService),
		middleware.NewAccessControlMiddleware(adminRepo),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 9. Setup graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Cancel background worker context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// newCache returns nil when caching is disabled. An unreachable Redis falls
// back to the in-process cache so the server can still start.
func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		rc, err := cache.NewRedisCache(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			log.Info().Str("addr", addr).Msg("Using redis snapshot cache")
			return rc
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory snapshot cache")
	}
	return cache.NewMemoryCache(time.Minute)
}
