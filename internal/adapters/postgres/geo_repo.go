package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// CountryRepo implements ports.CountryRepository.
type CountryRepo struct {
	db *DB
}

func NewCountryRepo(db *DB) *CountryRepo {
	return &CountryRepo{db: db}
}

func (r *CountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(code, ''), created_at FROM countries ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	countries := []domain.Country{}
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *CountryRepo) GetByID(ctx context.Context, id string) (*domain.Country, error) {
	var c domain.Country
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(code, ''), created_at FROM countries WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CountryRepo) Upsert(ctx context.Context, c *domain.Country) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO countries (id, name, code, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, code = EXCLUDED.code
	`, c.ID, c.Name, nullable(c.Code), nullTime(c.CreatedAt))
	return mapErr(err)
}

func (r *CountryRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.Pool.Exec(ctx, `DELETE FROM countries WHERE id = $1`, id))
}

// StateRepo implements ports.StateRepository.
type StateRepo struct {
	db *DB
}

func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

const stateColumns = `id, name, country_id, created_at`

func scanStates(rows pgx.Rows) ([]domain.State, error) {
	defer rows.Close()
	states := []domain.State{}
	for rows.Next() {
		var s domain.State
		if err := rows.Scan(&s.ID, &s.Name, &s.CountryID.ID, &s.CreatedAt); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func (r *StateRepo) List(ctx context.Context) ([]domain.State, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+stateColumns+` FROM states ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanStates(rows)
}

func (r *StateRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.State, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+stateColumns+` FROM states WHERE country_id = $1 ORDER BY name`, countryID)
	if err != nil {
		return nil, err
	}
	return scanStates(rows)
}

func (r *StateRepo) GetByID(ctx context.Context, id string) (*domain.State, error) {
	var s domain.State
	err := r.db.Pool.QueryRow(ctx, `SELECT `+stateColumns+` FROM states WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.CountryID.ID, &s.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *StateRepo) Upsert(ctx context.Context, s *domain.State) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO states (id, name, country_id, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, country_id = EXCLUDED.country_id
	`, s.ID, s.Name, s.CountryID.ID, nullTime(s.CreatedAt))
	return mapErr(err)
}

func (r *StateRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.Pool.Exec(ctx, `DELETE FROM states WHERE id = $1`, id))
}

// CityRepo implements ports.CityRepository.
type CityRepo struct {
	db *DB
}

func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

const upsertCitySQL = `
	INSERT INTO cities (id, name, state_id, country_id, latitude, longitude, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, state_id = EXCLUDED.state_id, country_id = EXCLUDED.country_id,
	    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude
`

func cityArgs(c *domain.City) []any {
	return []any{
		c.ID, c.Name,
		nullable(domain.ExtractID(c.StateID)), nullable(domain.ExtractID(c.CountryID)),
		c.Latitude, c.Longitude, nullTime(c.CreatedAt),
	}
}

func (r *CityRepo) List(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, state_id, country_id, latitude, longitude, created_at
		FROM cities ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *c)
	}
	return cities, rows.Err()
}

func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, state_id, country_id, latitude, longitude, created_at
		FROM cities WHERE id = $1
	`, id)
	c, err := scanCity(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func scanCity(row pgx.Row) (*domain.City, error) {
	var (
		c                domain.City
		stateID, country *string
	)
	if err := row.Scan(&c.ID, &c.Name, &stateID, &country, &c.Latitude, &c.Longitude, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.StateID = domain.RefPtr(deref(stateID))
	c.CountryID = domain.RefPtr(deref(country))
	return &c, nil
}

func (r *CityRepo) Upsert(ctx context.Context, c *domain.City) error {
	_, err := r.db.Pool.Exec(ctx, upsertCitySQL, cityArgs(c)...)
	return mapErr(err)
}

// UpsertBatch inserts many cities using pgx.Batch.
func (r *CityRepo) UpsertBatch(ctx context.Context, cities []domain.City) error {
	batch := &pgx.Batch{}
	for i := range cities {
		batch.Queue(upsertCitySQL, cityArgs(&cities[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range cities {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", mapErr(err))
		}
	}
	return nil
}

func (r *CityRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.Pool.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id))
}
