package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/database"
	"github.com/alexivanou/city-api/internal/repository"
	"github.com/alexivanou/city-api/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Make sure the schema exists, an in-memory database starts empty
	if err := database.MigrateUp(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	logger.Info("Starting data import...",
		zap.String("file", cfg.Seeder.FileName),
		zap.Int("min_population", cfg.Seeder.MinPopulation),
	)

	res, err := seeder.New(cfg.Seeder, repos.City, logger).Run(ctx)
	if err != nil {
		logger.Fatal("Failed to import cities", zap.Error(err), zap.Int64("inserted", res.Inserted))
	}

	total, err := repos.City.Count(ctx)
	if err != nil {
		logger.Fatal("Failed to count cities", zap.Error(err))
	}
	logger.Info("Data import completed successfully!",
		zap.Int("parsed", res.Parsed),
		zap.Int64("inserted", res.Inserted),
		zap.Int("total_cities", total),
	)
}
