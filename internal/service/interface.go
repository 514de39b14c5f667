package service

import (
	"context"

	"github.com/alexivanou/city-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	CreateCity(ctx context.Context, name string) (*model.City, error)
	ListCities(ctx context.Context) ([]model.City, error)
	GetCity(ctx context.Context, id int) (*model.City, error)
	DeleteCity(ctx context.Context, id int) error
	FindNearestCities(ctx context.Context, coords model.Coordinates) (*model.NearestCitiesResponse, error)
	GetStats(ctx context.Context) (*model.StatsResponse, error)
}
