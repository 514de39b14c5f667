package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/database"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (CityRepository, func()) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("repo_test_%d", rng.Int()),
	}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite",
		"sqlite3",
		driver,
	)
	require.NoError(t, err)
	err = m.Up()
	require.NoError(t, err)

	repos := NewRepositories(db, config.DBTypeMemory)

	cleanup := func() {
		db.Close()
	}

	return repos.City, cleanup
}

func TestCityRepository_InsertAndGetByID(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, "Moscow", 55.75, 37.62)
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Greater(t, inserted.ID, 0)

	fetched, err := repo.GetByID(ctx, inserted.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, *inserted, *fetched)
	assert.Equal(t, "Moscow", fetched.Name)
	assert.Equal(t, 55.75, fetched.Latitude)
	assert.Equal(t, 37.62, fetched.Longitude)
}

func TestCityRepository_GetByID_Missing(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	city, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, city)
}

func TestCityRepository_Exists(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Insert(ctx, "Paris", 48.85, 2.35)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "Москва", 55.75, 37.62)
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{name: "Exact", query: "Paris", expected: true},
		{name: "Lower case", query: "paris", expected: true},
		{name: "Upper case", query: "PARIS", expected: true},
		{name: "Cyrillic lower case", query: "москва", expected: true},
		{name: "Prefix only", query: "Par", expected: false},
		{name: "Absent", query: "Berlin", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := repo.Exists(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestCityRepository_Insert_DuplicateName(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Insert(ctx, "Paris", 48.85, 2.35)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "paris", 48.85, 2.35)
	assert.ErrorIs(t, err, ErrDuplicateName)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCityRepository_GetAll_InsertionOrder(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	for _, name := range []string{"Tula", "Moscow", "Kazan"} {
		_, err := repo.Insert(ctx, name, 55, 37)
		require.NoError(t, err)
	}

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Tula", all[0].Name)
	assert.Equal(t, "Moscow", all[1].Name)
	assert.Equal(t, "Kazan", all[2].Name)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)
}

func TestCityRepository_DeleteByID(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	city, err := repo.Insert(ctx, "Kazan", 55.80, 49.10)
	require.NoError(t, err)

	deleted, err := repo.DeleteByID(ctx, city.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(ctx, city.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	fetched, err := repo.GetByID(ctx, city.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)

	// The name is free again after deletion.
	_, err = repo.Insert(ctx, "kazan", 55.80, 49.10)
	assert.NoError(t, err)
}

func TestCityRepository_Count(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = repo.Insert(ctx, "Moscow", 55.75, 37.62)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "Tula", 54.20, 37.62)
	require.NoError(t, err)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCityRepository_BulkInsert(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Insert(ctx, "Moscow", 55.75, 37.62)
	require.NoError(t, err)

	cities := make([]model.City, 0, 250)
	for i := 0; i < 249; i++ {
		cities = append(cities, model.City{
			Name:      fmt.Sprintf("City %d", i),
			Latitude:  float64(i%90) - 45,
			Longitude: float64(i%180) - 90,
		})
	}
	// Already stored, skipped.
	cities = append(cities, model.City{Name: "MOSCOW", Latitude: 1, Longitude: 1})

	inserted, err := repo.BulkInsert(ctx, cities)
	require.NoError(t, err)
	assert.Equal(t, int64(249), inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, count)
}
