package ports

import (
	"context"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// CountryRepository persists countries.
type CountryRepository interface {
	List(ctx context.Context) ([]domain.Country, error)
	GetByID(ctx context.Context, id string) (*domain.Country, error)
	Upsert(ctx context.Context, country *domain.Country) error
	Delete(ctx context.Context, id string) error
}

// StateRepository persists states.
type StateRepository interface {
	List(ctx context.Context) ([]domain.State, error)
	ListByCountry(ctx context.Context, countryID string) ([]domain.State, error)
	GetByID(ctx context.Context, id string) (*domain.State, error)
	Upsert(ctx context.Context, state *domain.State) error
	Delete(ctx context.Context, id string) error
}

// CityRepository persists cities.
type CityRepository interface {
	List(ctx context.Context) ([]domain.City, error)
	GetByID(ctx context.Context, id string) (*domain.City, error)
	Upsert(ctx context.Context, city *domain.City) error
	UpsertBatch(ctx context.Context, cities []domain.City) error
	Delete(ctx context.Context, id string) error
}

// LocationRepository persists locations.
type LocationRepository interface {
	List(ctx context.Context, limit, offset int) ([]domain.Location, int, error)
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	Upsert(ctx context.Context, loc *domain.Location) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepository persists JSON documents grouped by collection.
type DocumentRepository interface {
	List(ctx context.Context, collection string, limit, offset int) ([]domain.Document, int, error)
	GetByID(ctx context.Context, collection, id string) (*domain.Document, error)
	Upsert(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, collection, id string) error
}

// UserRepository persists platform users.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
