package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/city-api/internal/geo"
	"github.com/alexivanou/city-api/internal/metrics"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/alexivanou/city-api/internal/repository"
	"go.uber.org/zap"
)

const nearestLimit = 2

// CreateCity resolves the coordinates of name and stores a new city
func (s *Service) CreateCity(ctx context.Context, name string) (*model.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidName, model.MaxNameLength)
	}

	exists, err := s.cityRepo.Exists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check city existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	coords, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		s.logger.Warn("Failed to resolve coordinates", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %q", ErrCoordinatesUnresolvable, name)
	}

	city, err := s.cityRepo.Insert(ctx, name, coords.Latitude, coords.Longitude)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("failed to insert city: %w", err)
	}

	metrics.CitiesCreatedTotal.Inc()
	s.logger.Info("City added", zap.String("name", city.Name), zap.Int("id", city.ID))
	return city, nil
}

// ListCities returns every stored city
func (s *Service) ListCities(ctx context.Context) ([]model.City, error) {
	cities, err := s.cityRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// GetCity retrieves a city by id
func (s *Service) GetCity(ctx context.Context, id int) (*model.City, error) {
	city, err := s.cityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, fmt.Errorf("%w: id %d", ErrCityNotFound, id)
	}
	return city, nil
}

// DeleteCity removes a city by id
func (s *Service) DeleteCity(ctx context.Context, id int) error {
	deleted, err := s.cityRepo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete city: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: id %d", ErrCityNotFound, id)
	}
	s.logger.Info("City deleted", zap.Int("id", id))
	return nil
}

// FindNearestCities returns the two stored cities closest to coords
func (s *Service) FindNearestCities(ctx context.Context, coords model.Coordinates) (*model.NearestCitiesResponse, error) {
	if coords.Latitude < -90 || coords.Latitude > 90 {
		return nil, fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinates)
	}
	if coords.Longitude < -180 || coords.Longitude > 180 {
		return nil, fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinates)
	}

	cities, err := s.cityRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}

	nearest := geo.Rank(coords, cities, nearestLimit)
	if len(nearest) < nearestLimit {
		return nil, ErrInsufficientCandidates
	}

	return &model.NearestCitiesResponse{
		Coordinates:   coords,
		NearestCities: nearest,
	}, nil
}
