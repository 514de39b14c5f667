package repository

import (
	"context"
	"errors"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// ErrDuplicateName is returned when a city with the same case-folded name is already stored
var ErrDuplicateName = errors.New("city with this name already exists")

// CityRepository defines operations for cities
type CityRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, name string, lat, lon float64) (*model.City, error)
	GetByID(ctx context.Context, id int) (*model.City, error)
	GetAll(ctx context.Context) ([]model.City, error)
	DeleteByID(ctx context.Context, id int) (bool, error)
	Count(ctx context.Context) (int, error)
	BulkInsert(ctx context.Context, cities []model.City) (int64, error)
}

// Container holds all repositories
type Container struct {
	City CityRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City: &pgCityRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		City: &sqliteCityRepository{db: db},
	}
}

// cityRow is the full persisted row, including the derived uniqueness key
type cityRow struct {
	model.City
	NameKey string `db:"name_key"`
}

func toRows(cities []model.City) []cityRow {
	rows := make([]cityRow, len(cities))
	for i, c := range cities {
		rows[i] = cityRow{City: c, NameKey: model.NameKey(c.Name)}
	}
	return rows
}
