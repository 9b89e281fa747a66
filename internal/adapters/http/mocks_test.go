package http_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// ---- In-memory geography ----

type memGeo struct {
	countries []domain.Country
	states    []domain.State
	cities    []domain.City
}

type countryRepo struct{ g *memGeo }

func (r countryRepo) List(ctx context.Context) ([]domain.Country, error) { return r.g.countries, nil }
func (r countryRepo) GetByID(ctx context.Context, id string) (*domain.Country, error) {
	for _, c := range r.g.countries {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r countryRepo) Upsert(ctx context.Context, c *domain.Country) error {
	r.g.countries = append(r.g.countries, *c)
	return nil
}
func (r countryRepo) Delete(ctx context.Context, id string) error { return nil }

type stateRepo struct{ g *memGeo }

func (r stateRepo) List(ctx context.Context) ([]domain.State, error) { return r.g.states, nil }
func (r stateRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.State, error) {
	var out []domain.State
	for _, s := range r.g.states {
		if s.CountryID.ID == countryID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r stateRepo) GetByID(ctx context.Context, id string) (*domain.State, error) {
	for _, s := range r.g.states {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r stateRepo) Upsert(ctx context.Context, s *domain.State) error { return nil }
func (r stateRepo) Delete(ctx context.Context, id string) error        { return nil }

type cityRepo struct{ g *memGeo }

func (r cityRepo) List(ctx context.Context) ([]domain.City, error) { return r.g.cities, nil }
func (r cityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	for _, c := range r.g.cities {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r cityRepo) Upsert(ctx context.Context, c *domain.City) error            { return nil }
func (r cityRepo) UpsertBatch(ctx context.Context, cities []domain.City) error { return nil }
func (r cityRepo) Delete(ctx context.Context, id string) error                 { return nil }

func f(v float64) *float64 { return &v }

func newMemGeo() *memGeo {
	return &memGeo{
		countries: []domain.Country{
			{ID: "c1", Name: "India", Code: "IN"},
			{ID: "c2", Name: "Spain", Code: "ES"},
		},
		states: []domain.State{
			{ID: "s1", Name: "Gujarat", CountryID: domain.NewRef("c1")},
			{ID: "s2", Name: "Bizkaia", CountryID: domain.NewRef("c2")},
		},
		cities: []domain.City{
			{ID: "ct1", Name: "Ahmedabad", StateID: domain.RefPtr("s1"), CountryID: domain.RefPtr("c1"), Latitude: f(23.0225), Longitude: f(72.5714)},
			{ID: "ct3", Name: "Bilbao", StateID: domain.RefPtr("s2"), CountryID: domain.RefPtr("c2"), Latitude: f(43.2630), Longitude: f(-2.9350)},
			{ID: "ct4", Name: "Getxo", StateID: domain.RefPtr("s2"), Latitude: f(43.3569), Longitude: f(-3.0114)},
		},
	}
}

// ---- In-memory locations ----

type memLocations struct {
	mu   sync.Mutex
	locs map[string]domain.Location
}

func (m *memLocations) List(ctx context.Context, limit, offset int) ([]domain.Location, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Location
	for _, l := range m.locs {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (m *memLocations) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (m *memLocations) Upsert(ctx context.Context, l *domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locs[l.ID] = *l
	return nil
}

func (m *memLocations) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locs, id)
	return nil
}

// ---- In-memory documents ----

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
	var all []domain.Document
	for _, d := range m.docs {
		if d.Collection == collection {
			all = append(all, d)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return []domain.Document{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
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

// ---- Users and permissions ----

type memUsers struct {
	users map[string]domain.User
}

func (m *memUsers) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) Upsert(ctx context.Context, u *domain.User) error {
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

// ---- Event publisher ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) PublishChange(ctx context.Context, ev *domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

// ---- Readiness ----

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

var errDown = errors.New("connection refused")
