package postgres

import (
	"context"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository.
type LocationRepo struct {
	db *DB
}

func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `id, name, address, country_id, state_id, city_id,
	country_name, state_name, city_name, latitude, longitude, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLocation(row scanner) (*domain.Location, error) {
	var l domain.Location
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.CountryID, &l.StateID, &l.CityID,
		&l.CountryName, &l.StateName, &l.CityName, &l.Latitude, &l.Longitude, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns a page of locations ordered by name, plus the total count.
func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]domain.Location, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM locations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+locationColumns+`
		FROM locations ORDER BY name, id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	locations := []domain.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		locations = append(locations, *l)
	}
	return locations, total, rows.Err()
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	l, err := scanLocation(r.db.Pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

func (r *LocationRepo) Upsert(ctx context.Context, l *domain.Location) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO locations (id, name, address, country_id, state_id, city_id,
			country_name, state_name, city_name, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address,
		    country_id = EXCLUDED.country_id, state_id = EXCLUDED.state_id, city_id = EXCLUDED.city_id,
		    country_name = EXCLUDED.country_name, state_name = EXCLUDED.state_name, city_name = EXCLUDED.city_name,
		    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude
	`, l.ID, l.Name, l.Address, l.CountryID, l.StateID, l.CityID,
		l.CountryName, l.StateName, l.CityName, l.Latitude, l.Longitude, nullTime(l.CreatedAt))
	return mapErr(err)
}

func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.Pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id))
}
