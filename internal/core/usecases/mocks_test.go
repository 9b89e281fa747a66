package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// --- Mock CountryRepository ---

type mockCountryRepo struct {
	listFn    func(ctx context.Context) ([]domain.Country, error)
	getByIDFn func(ctx context.Context, id string) (*domain.Country, error)
	upsertFn  func(ctx context.Context, c *domain.Country) error
	deleted   []string
}

func (m *mockCountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCountryRepo) GetByID(ctx context.Context, id string) (*domain.Country, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCountryRepo) Upsert(ctx context.Context, c *domain.Country) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, c)
	}
	return nil
}

func (m *mockCountryRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// --- Mock StateRepository ---

type mockStateRepo struct {
	listFn          func(ctx context.Context) ([]domain.State, error)
	listByCountryFn func(ctx context.Context, countryID string) ([]domain.State, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.State, error)
	upserted        []domain.State
}

func (m *mockStateRepo) List(ctx context.Context) ([]domain.State, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockStateRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.State, error) {
	if m.listByCountryFn != nil {
		return m.listByCountryFn(ctx, countryID)
	}
	return nil, nil
}

func (m *mockStateRepo) GetByID(ctx context.Context, id string) (*domain.State, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStateRepo) Upsert(ctx context.Context, st *domain.State) error {
	m.upserted = append(m.upserted, *st)
	return nil
}

func (m *mockStateRepo) Delete(ctx context.Context, id string) error { return nil }

// --- Mock CityRepository ---

type mockCityRepo struct {
	listFn   func(ctx context.Context) ([]domain.City, error)
	upserted []domain.City
}

func (m *mockCityRepo) List(ctx context.Context) ([]domain.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	return nil, domain.ErrNotFound
}

func (m *mockCityRepo) Upsert(ctx context.Context, c *domain.City) error {
	m.upserted = append(m.upserted, *c)
	return nil
}

func (m *mockCityRepo) UpsertBatch(ctx context.Context, cities []domain.City) error { return nil }
func (m *mockCityRepo) Delete(ctx context.Context, id string) error                 { return nil }

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	upserted []domain.Location
}

func (m *mockLocationRepo) List(ctx context.Context, limit, offset int) ([]domain.Location, int, error) {
	return m.upserted, len(m.upserted), nil
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	return nil, domain.ErrNotFound
}

func (m *mockLocationRepo) Upsert(ctx context.Context, loc *domain.Location) error {
	m.upserted = append(m.upserted, *loc)
	return nil
}

func (m *mockLocationRepo) Delete(ctx context.Context, id string) error { return nil }

// --- In-memory DocumentRepository ---

type memDocs struct {
	mu   sync.Mutex
	docs map[string]domain.Document
}

func newMemDocs(seed ...domain.Document) *memDocs {
	m := &memDocs{docs: map[string]domain.Document{}}
	for _, d := range seed {
		m.docs[d.Collection+"/"+d.ID] = d
	}
	return m
}

func (m *memDocs) List(ctx context.Context, collection string, limit, offset int) ([]domain.Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Document
	for _, d := range m.docs {
		if d.Collection == collection {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (m *memDocs) GetByID(ctx context.Context, collection, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[collection+"/"+id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *memDocs) Upsert(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.Collection+"/"+doc.ID] = *doc
	return nil
}

func (m *memDocs) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection+"/"+id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, collection+"/"+id)
	return nil
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	users    map[string]domain.User
	getCalls int
}

func newMockUserRepo(users ...domain.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]domain.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.getCalls++
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) Upsert(ctx context.Context, u *domain.User) error {
	m.users[u.ID] = *u
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

// --- In-memory CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deletes = append(c.deletes, key)
	return nil
}

// --- Recording EventPublisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(ctx context.Context, ev *domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *ev)
	return nil
}

func f(v float64) *float64 { return &v }

// geoFixture returns repositories seeded with a small hierarchy.
func geoFixture() (*mockCountryRepo, *mockStateRepo, *mockCityRepo) {
	countries := []domain.Country{
		{ID: "c1", Name: "India", Code: "IN"},
		{ID: "c2", Name: "Spain", Code: "ES"},
	}
	states := []domain.State{
		{ID: "s1", Name: "Gujarat", CountryID: domain.NewRef("c1")},
		{ID: "s2", Name: "Bizkaia", CountryID: domain.NewRef("c2")},
	}
	cities := []domain.City{
		{ID: "ct1", Name: "Ahmedabad", StateID: domain.RefPtr("s1"), CountryID: domain.RefPtr("c1"), Latitude: f(23.0225), Longitude: f(72.5714)},
		{ID: "ct2", Name: "Surat", CountryID: domain.RefPtr("c1"), Latitude: f(21.1702), Longitude: f(72.8311)},
		{ID: "ct3", Name: "Bilbao", StateID: domain.RefPtr("s2"), CountryID: domain.RefPtr("c2"), Latitude: f(43.2630), Longitude: f(-2.9350)},
		{ID: "ct4", Name: "Getxo", StateID: domain.RefPtr("s2"), Latitude: f(43.3569), Longitude: f(-3.0114)},
	}

	cr := &mockCountryRepo{
		listFn: func(ctx context.Context) ([]domain.Country, error) { return countries, nil },
		getByIDFn: func(ctx context.Context, id string) (*domain.Country, error) {
			for _, c := range countries {
				if c.ID == id {
					return &c, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}
	sr := &mockStateRepo{
		listFn: func(ctx context.Context) ([]domain.State, error) { return states, nil },
		getByIDFn: func(ctx context.Context, id string) (*domain.State, error) {
			for _, s := range states {
				if s.ID == id {
					return &s, nil
				}
			}
			return nil, domain.ErrNotFound
		},
		listByCountryFn: func(ctx context.Context, countryID string) ([]domain.State, error) {
			var out []domain.State
			for _, s := range states {
				if s.CountryID.ID == countryID {
					out = append(out, s)
				}
			}
			return out, nil
		},
	}
	cir := &mockCityRepo{
		listFn: func(ctx context.Context) ([]domain.City, error) { return cities, nil },
	}
	return cr, sr, cir
}
