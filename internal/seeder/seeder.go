// Package seeder imports cities from GeoNames dumps into the repository.
package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/alexivanou/city-api/internal/repository"
	"go.uber.org/zap"
)

// Result summarises one import run
type Result struct {
	Parsed   int
	Inserted int64
}

// Seeder feeds parsed batches into the city repository
type Seeder struct {
	parser *Parser
	repo   repository.CityRepository
	logger *zap.Logger
}

func New(cfg config.SeederConfig, repo repository.CityRepository, logger *zap.Logger) *Seeder {
	return &Seeder{
		parser: NewParser(cfg),
		repo:   repo,
		logger: logger,
	}
}

// Run imports the configured dump. Names already stored are left untouched.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	parsed, err := s.parser.ProcessCities(func(batch []model.City) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		inserted, err := s.repo.BulkInsert(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to insert cities batch: %w", err)
		}
		res.Inserted += inserted
		s.logger.Debug("Inserted batch", zap.Int("size", len(batch)), zap.Int64("inserted", inserted))
		return nil
	})
	res.Parsed = parsed
	if err != nil {
		return res, err
	}

	s.logger.Info("Data import completed",
		zap.Int("parsed", res.Parsed),
		zap.Int64("inserted", res.Inserted),
	)
	return res, nil
}

// RunIfEmpty imports the dump only when no city is stored yet. A failure to
// read the current count is returned rather than treated as an empty table.
func (s *Seeder) RunIfEmpty(ctx context.Context) (Result, bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to count cities: %w", err)
	}
	if count > 0 {
		s.logger.Info("Database already populated, skipping seed", zap.Int("cities", count))
		return Result{}, false, nil
	}

	s.logger.Info("Database is empty, auto-seeding data...")
	res, err := s.Run(ctx)
	return res, true, err
}
