package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/city-api/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

const pgUniqueViolation = "23505"

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM cities WHERE name_key = $1)`
	if err := r.db.GetContext(ctx, &exists, q, model.NameKey(name)); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pgCityRepository) Insert(ctx context.Context, name string, lat, lon float64) (*model.City, error) {
	q := `
		INSERT INTO cities (name, name_key, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int
	if err := r.db.GetContext(ctx, &id, q, name, model.NameKey(name), lat, lon); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &model.City{ID: id, Name: name, Latitude: lat, Longitude: lon}, nil
}

func (r *pgCityRepository) GetByID(ctx context.Context, id int) (*model.City, error) {
	var city model.City
	q := `SELECT id, name, latitude, longitude FROM cities WHERE id = $1`
	if err := r.db.GetContext(ctx, &city, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) GetAll(ctx context.Context) ([]model.City, error) {
	cities := []model.City{}
	q := `SELECT id, name, latitude, longitude FROM cities ORDER BY id`
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) DeleteByID(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *pgCityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM cities`); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pgCityRepository) BulkInsert(ctx context.Context, cities []model.City) (int64, error) {
	// Chunking to avoid parameter limit issues even in PG (max 65535 parameters)
	chunkSize := 2000
	rows := toRows(cities)
	var inserted int64
	for i := 0; i < len(rows); i += chunkSize {
		end := i + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (name, name_key, latitude, longitude)
		VALUES (:name, :name_key, :latitude, :longitude)
		ON CONFLICT (name_key) DO NOTHING`,
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
