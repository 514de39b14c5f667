package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alexivanou/city-api/internal/geocoding"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/alexivanou/city-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCityRepository) Insert(ctx context.Context, name string, lat, lon float64) (*model.City, error) {
	args := m.Called(ctx, name, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) GetByID(ctx context.Context, id int) (*model.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) GetAll(ctx context.Context) ([]model.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.City), args.Error(1)
}

func (m *MockCityRepository) DeleteByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCityRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCityRepository) BulkInsert(ctx context.Context, cities []model.City) (int64, error) {
	args := m.Called(ctx, cities)
	return args.Get(0).(int64), args.Error(1)
}

var _ geocoding.Resolver = (*MockResolver)(nil)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, name string) (model.Coordinates, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Coordinates), args.Error(1)
}

func newTestService() (*Service, *MockCityRepository, *MockResolver) {
	repo := new(MockCityRepository)
	resolver := new(MockResolver)
	return NewService(repo, resolver, zap.NewNop()), repo, resolver
}

func TestService_CreateCity(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		setupMocks  func(*MockCityRepository, *MockResolver)
		expectedErr error
		expected    *model.City
	}{
		{
			name:  "successful create",
			input: "  Moscow ",
			setupMocks: func(repo *MockCityRepository, resolver *MockResolver) {
				repo.On("Exists", mock.Anything, "Moscow").Return(false, nil)
				resolver.On("Resolve", mock.Anything, "Moscow").
					Return(model.Coordinates{Latitude: 55.75, Longitude: 37.62}, nil)
				repo.On("Insert", mock.Anything, "Moscow", 55.75, 37.62).
					Return(&model.City{ID: 1, Name: "Moscow", Latitude: 55.75, Longitude: 37.62}, nil)
			},
			expected: &model.City{ID: 1, Name: "Moscow", Latitude: 55.75, Longitude: 37.62},
		},
		{
			name:        "empty name",
			input:       "   ",
			expectedErr: ErrInvalidName,
		},
		{
			name:        "name too long",
			input:       strings.Repeat("я", 101),
			expectedErr: ErrInvalidName,
		},
		{
			name:  "duplicate name",
			input: "paris",
			setupMocks: func(repo *MockCityRepository, resolver *MockResolver) {
				repo.On("Exists", mock.Anything, "paris").Return(true, nil)
			},
			expectedErr: ErrDuplicateName,
		},
		{
			name:  "unknown place",
			input: "Qwxyzzzz",
			setupMocks: func(repo *MockCityRepository, resolver *MockResolver) {
				repo.On("Exists", mock.Anything, "Qwxyzzzz").Return(false, nil)
				resolver.On("Resolve", mock.Anything, "Qwxyzzzz").
					Return(model.Coordinates{}, geocoding.ErrNotFound)
			},
			expectedErr: ErrCoordinatesUnresolvable,
		},
		{
			name:  "provider unavailable",
			input: "Tula",
			setupMocks: func(repo *MockCityRepository, resolver *MockResolver) {
				repo.On("Exists", mock.Anything, "Tula").Return(false, nil)
				resolver.On("Resolve", mock.Anything, "Tula").
					Return(model.Coordinates{}, geocoding.ErrUnavailable)
			},
			expectedErr: ErrCoordinatesUnresolvable,
		},
		{
			name:  "concurrent duplicate caught by insert",
			input: "Kazan",
			setupMocks: func(repo *MockCityRepository, resolver *MockResolver) {
				repo.On("Exists", mock.Anything, "Kazan").Return(false, nil)
				resolver.On("Resolve", mock.Anything, "Kazan").
					Return(model.Coordinates{Latitude: 55.79, Longitude: 49.12}, nil)
				repo.On("Insert", mock.Anything, "Kazan", 55.79, 49.12).
					Return(nil, repository.ErrDuplicateName)
			},
			expectedErr: ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, resolver := newTestService()
			if tt.setupMocks != nil {
				tt.setupMocks(repo, resolver)
			}

			city, err := svc.CreateCity(context.Background(), tt.input)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, city)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, city)
			}
			repo.AssertExpectations(t)
			resolver.AssertExpectations(t)
		})
	}
}

func TestService_CreateCity_UnresolvableNotPersisted(t *testing.T) {
	svc, repo, resolver := newTestService()
	repo.On("Exists", mock.Anything, "Qwxyzzzz").Return(false, nil)
	resolver.On("Resolve", mock.Anything, "Qwxyzzzz").Return(model.Coordinates{}, geocoding.ErrNotFound)

	_, err := svc.CreateCity(context.Background(), "Qwxyzzzz")

	assert.ErrorIs(t, err, ErrCoordinatesUnresolvable)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateCity_RepositoryError(t *testing.T) {
	svc, repo, _ := newTestService()
	dbErr := errors.New("connection refused")
	repo.On("Exists", mock.Anything, "Moscow").Return(false, dbErr)

	_, err := svc.CreateCity(context.Background(), "Moscow")

	assert.ErrorIs(t, err, dbErr)
}

func TestService_GetCity(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("GetByID", mock.Anything, 1).Return(&model.City{ID: 1, Name: "Moscow"}, nil)
	repo.On("GetByID", mock.Anything, 99).Return(nil, nil)

	city, err := svc.GetCity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Moscow", city.Name)

	_, err = svc.GetCity(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestService_DeleteCity(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("DeleteByID", mock.Anything, 1).Return(true, nil)
	repo.On("DeleteByID", mock.Anything, 2).Return(false, nil)

	assert.NoError(t, svc.DeleteCity(context.Background(), 1))
	assert.ErrorIs(t, svc.DeleteCity(context.Background(), 2), ErrCityNotFound)
}

func TestService_ListCities(t *testing.T) {
	svc, repo, _ := newTestService()
	cities := []model.City{{ID: 1, Name: "Moscow"}, {ID: 2, Name: "Tula"}}
	repo.On("GetAll", mock.Anything).Return(cities, nil)

	got, err := svc.ListCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cities, got)
}

func TestService_FindNearestCities(t *testing.T) {
	moscow := model.City{ID: 1, Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173}
	tula := model.City{ID: 2, Name: "Tula", Latitude: 54.1931, Longitude: 37.6173}
	kazan := model.City{ID: 3, Name: "Kazan", Latitude: 55.7963, Longitude: 49.1088}

	tests := []struct {
		name        string
		coords      model.Coordinates
		stored      []model.City
		expectedErr error
		expected    []string
	}{
		{
			name:     "two nearest",
			coords:   model.Coordinates{Latitude: 55.0, Longitude: 37.6},
			stored:   []model.City{kazan, moscow, tula},
			expected: []string{"Moscow", "Tula"},
		},
		{
			name:        "single stored city",
			coords:      model.Coordinates{Latitude: 55.0, Longitude: 37.6},
			stored:      []model.City{moscow},
			expectedErr: ErrInsufficientCandidates,
		},
		{
			name:        "no stored cities",
			coords:      model.Coordinates{Latitude: 0, Longitude: 0},
			stored:      []model.City{},
			expectedErr: ErrInsufficientCandidates,
		},
		{
			name:        "latitude out of range",
			coords:      model.Coordinates{Latitude: 90.5, Longitude: 0},
			expectedErr: ErrInvalidCoordinates,
		},
		{
			name:        "longitude out of range",
			coords:      model.Coordinates{Latitude: 0, Longitude: -180.1},
			expectedErr: ErrInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			if tt.stored != nil {
				repo.On("GetAll", mock.Anything).Return(tt.stored, nil)
			}

			resp, err := svc.FindNearestCities(context.Background(), tt.coords)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.coords, resp.Coordinates)
			names := make([]string, 0, len(resp.NearestCities))
			for _, c := range resp.NearestCities {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestService_GetStats(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("Count", mock.Anything).Return(3, nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCities)
}
