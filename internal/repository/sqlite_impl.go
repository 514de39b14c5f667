package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/city-api/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM cities WHERE name_key = ?)`
	if err := r.db.GetContext(ctx, &exists, q, model.NameKey(name)); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *sqliteCityRepository) Insert(ctx context.Context, name string, lat, lon float64) (*model.City, error) {
	q := `INSERT INTO cities (name, name_key, latitude, longitude) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, name, model.NameKey(name), lat, lon)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.City{ID: int(id), Name: name, Latitude: lat, Longitude: lon}, nil
}

func (r *sqliteCityRepository) GetByID(ctx context.Context, id int) (*model.City, error) {
	var city model.City
	q := `SELECT id, name, latitude, longitude FROM cities WHERE id = ?`
	if err := r.db.GetContext(ctx, &city, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *sqliteCityRepository) GetAll(ctx context.Context) ([]model.City, error) {
	cities := []model.City{}
	q := `SELECT id, name, latitude, longitude FROM cities ORDER BY id`
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) DeleteByID(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cities WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sqliteCityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM cities`); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sqliteCityRepository) BulkInsert(ctx context.Context, cities []model.City) (int64, error) {
	// SQLite variable limit workaround (batch size of 100 * 4 params = 400 variables)
	chunkSize := 100
	rows := toRows(cities)
	var inserted int64
	for i := 0; i < len(rows); i += chunkSize {
		end := i + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		res, err := r.db.NamedExecContext(ctx, `
		INSERT OR IGNORE INTO cities (name, name_key, latitude, longitude)
		VALUES (:name, :name_key, :latitude, :longitude)`,
			batch)
		if err != nil {
			return inserted, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	return inserted, nil
}
