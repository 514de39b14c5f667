package service

import (
	"context"
	"errors"

	"github.com/alexivanou/city-api/internal/geocoding"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/alexivanou/city-api/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidName             = errors.New("invalid city name")
	ErrInvalidCoordinates      = errors.New("invalid coordinates")
	ErrDuplicateName           = errors.New("city already exists")
	ErrCoordinatesUnresolvable = errors.New("coordinates could not be resolved")
	ErrCityNotFound            = errors.New("city not found")
	ErrInsufficientCandidates  = errors.New("not enough cities stored to find the nearest ones")
)

// Service provides business logic for the API
type Service struct {
	cityRepo repository.CityRepository
	resolver geocoding.Resolver
	logger   *zap.Logger
}

// NewService creates a new service instance
func NewService(
	cityRepo repository.CityRepository,
	resolver geocoding.Resolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		cityRepo: cityRepo,
		resolver: resolver,
		logger:   logger,
	}
}

// GetStats returns storage statistics
func (s *Service) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	count, err := s.cityRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &model.StatsResponse{TotalCities: count}, nil
}
