package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/city-api/internal/api"
	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/database"
	"github.com/alexivanou/city-api/internal/geocoding"
	"github.com/alexivanou/city-api/internal/repository"
	"github.com/alexivanou/city-api/internal/seeder"
	"github.com/alexivanou/city-api/internal/service"
	"github.com/alexivanou/city-api/internal/stats"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Reload)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.MigrateUp(db, cfg.DB, migrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	if cfg.Seeder.AutoSeed {
		if _, _, err := seeder.New(cfg.Seeder, repos.City, logger).RunIfEmpty(ctx); err != nil {
			logger.Error("Failed to auto-seed database", zap.Error(err))
		}
	}

	geoClient := geocoding.NewClient(cfg.Geocoding, logger)
	defer geoClient.Close()

	var resolver geocoding.Resolver = geoClient
	if cfg.Geocoding.CacheTTL > 0 {
		resolver = geocoding.NewCachedResolver(geoClient, cfg.Geocoding.CacheTTL)
	}

	svc := service.NewService(repos.City, resolver, logger)
	router := api.NewRouter(api.Dependencies{
		Service:        svc,
		Stats:          stats.NewCollector(db, cfg.DB),
		Health:         database.NewChecker(db),
		App:            cfg.App,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("service", cfg.App.Name),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
