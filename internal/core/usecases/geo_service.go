package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/geocascade"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/pkg/geospatial"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
	"github.com/samirrijal/backoffice/internal/pkg/telemetry"
)

// GeoSnapshotKey is the cache key of the full geography snapshot.
const GeoSnapshotKey = "geo:snapshot"

// CascadeEvent names the form field that changed.
type CascadeEvent string

const (
	CascadeCountry CascadeEvent = "country"
	CascadeState   CascadeEvent = "state"
	CascadeCity    CascadeEvent = "city"
)

// CascadeRequest is one interaction with a country/state/city form.
// For CascadeCity, CityID picks a city and CityText is used when CityID is empty.
type CascadeRequest struct {
	Selection geocascade.Selection `json:"selection"`
	Event     CascadeEvent         `json:"event"`
	CountryID string               `json:"country_id,omitempty"`
	StateID   string               `json:"state_id,omitempty"`
	CityID    string               `json:"city_id,omitempty"`
	CityText  string               `json:"city_text,omitempty"`
}

// CascadeResult is the next form state.
type CascadeResult struct {
	Selection geocascade.Selection `json:"selection"`
	Options   geocascade.Options   `json:"options"`
}

// NearbyCity is a city with its distance from a query point.
type NearbyCity struct {
	domain.City
	DistanceMeters float64 `json:"distance_meters"`
}

// GeoService handles country, state and city reference data.
type GeoService struct {
	countries ports.CountryRepository
	states    ports.StateRepository
	cities    ports.CityRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	ttl       int
}

// NewGeoService creates a new GeoService. ttlSeconds applies to the cached snapshot.
func NewGeoService(
	countries ports.CountryRepository,
	states ports.StateRepository,
	cities ports.CityRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	ttlSeconds int,
) *GeoService {
	if ttlSeconds <= 0 {
		ttlSeconds = 600
	}
	return &GeoService{
		countries: countries,
		states:    states,
		cities:    cities,
		cache:     cache,
		publisher: publisher,
		ttl:       ttlSeconds,
	}
}

// Snapshot returns all countries, states and cities.
func (s *GeoService) Snapshot(ctx context.Context) (*domain.GeoSnapshot, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, GeoSnapshotKey); err == nil {
			var snap domain.GeoSnapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				metrics.CacheHits.WithLabelValues("geo_snapshot").Inc()
				return &snap, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geo_snapshot").Inc()
	}

	countries, err := s.countries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	states, err := s.states.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	snap := &domain.GeoSnapshot{Countries: countries, States: states, Cities: cities}

	if s.cache != nil {
		if data, err := json.Marshal(snap); err == nil {
			_ = s.cache.Set(ctx, GeoSnapshotKey, data, s.ttl)
		}
	}
	return snap, nil
}

// ListCountries returns every country ordered by name.
func (s *GeoService) ListCountries(ctx context.Context) ([]domain.Country, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return geocascade.SortByName(snap.Countries), nil
}

// ListStates returns the states of countryID, or all states when it is empty.
func (s *GeoService) ListStates(ctx context.Context, countryID string) ([]domain.State, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if countryID == "" {
		return geocascade.SortByName(snap.States), nil
	}
	return geocascade.SortByName(geocascade.StatesForCountry(snap.States, countryID)), nil
}

// ListCities returns the cities valid for a country/state pair, or all cities
// when both are empty.
func (s *GeoService) ListCities(ctx context.Context, countryID, stateID string) ([]domain.City, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if countryID == "" && stateID == "" {
		return geocascade.SortByName(snap.Cities), nil
	}
	return geocascade.SortByName(geocascade.CitiesForSelection(snap.Cities, countryID, stateID)), nil
}

func (s *GeoService) GetCountry(ctx context.Context, id string) (*domain.Country, error) {
	return s.countries.GetByID(ctx, id)
}

func (s *GeoService) GetState(ctx context.Context, id string) (*domain.State, error) {
	return s.states.GetByID(ctx, id)
}

func (s *GeoService) GetCity(ctx context.Context, id string) (*domain.City, error) {
	return s.cities.GetByID(ctx, id)
}

// SaveCountry creates or updates a country.
func (s *GeoService) SaveCountry(ctx context.Context, c *domain.Country) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: country name is required", domain.ErrValidation)
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code != "" && len(c.Code) != 2 {
		return fmt.Errorf("%w: country code must have two letters", domain.ErrValidation)
	}

	action := stampNew(&c.ID, &c.CreatedAt)
	if err := s.countries.Upsert(ctx, c); err != nil {
		return fmt.Errorf("upsert country: %w", err)
	}
	s.changed(ctx, domain.CollectionCountries, c.ID, action)
	return nil
}

// SaveState creates or updates a state. Its country must exist.
func (s *GeoService) SaveState(ctx context.Context, st *domain.State) error {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return fmt.Errorf("%w: state name is required", domain.ErrValidation)
	}
	if st.CountryID.ID == "" {
		return fmt.Errorf("%w: country_id is required", domain.ErrValidation)
	}
	if err := s.requireCountry(ctx, st.CountryID.ID); err != nil {
		return err
	}

	action := stampNew(&st.ID, &st.CreatedAt)
	if err := s.states.Upsert(ctx, st); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	s.changed(ctx, domain.CollectionStates, st.ID, action)
	return nil
}

// SaveCity creates or updates a city. A city with a state but no country
// inherits the state's country.
func (s *GeoService) SaveCity(ctx context.Context, c *domain.City) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: city name is required", domain.ErrValidation)
	}
	if c.StateID == nil && c.CountryID == nil {
		return fmt.Errorf("%w: city needs a state_id or a country_id", domain.ErrValidation)
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", domain.ErrValidation)
	}
	if pt, ok := c.Point(); ok && !geospatial.ValidCoordinate(pt.Lat, pt.Lon) {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrValidation)
	}

	if id := domain.ExtractID(c.StateID); id != "" {
		st, err := s.states.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown state %q", domain.ErrValidation, id)
		}
		if err != nil {
			return fmt.Errorf("get state: %w", err)
		}
		if c.CountryID == nil {
			c.CountryID = domain.RefPtr(st.CountryID.ID)
		}
	}
	if id := domain.ExtractID(c.CountryID); id != "" {
		if err := s.requireCountry(ctx, id); err != nil {
			return err
		}
	}

	action := stampNew(&c.ID, &c.CreatedAt)
	if err := s.cities.Upsert(ctx, c); err != nil {
		return fmt.Errorf("upsert city: %w", err)
	}
	s.changed(ctx, domain.CollectionCities, c.ID, action)
	return nil
}

// DeleteCountry removes a country that no state references.
func (s *GeoService) DeleteCountry(ctx context.Context, id string) error {
	states, err := s.states.ListByCountry(ctx, id)
	if err != nil {
		return fmt.Errorf("list states: %w", err)
	}
	if len(states) > 0 {
		return fmt.Errorf("%w: country %s still has %d states", domain.ErrConflict, id, len(states))
	}
	if err := s.countries.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, domain.CollectionCountries, id, domain.ActionDeleted)
	return nil
}

// DeleteState removes a state that no city references.
func (s *GeoService) DeleteState(ctx context.Context, id string) error {
	cities, err := s.cities.List(ctx)
	if err != nil {
		return fmt.Errorf("list cities: %w", err)
	}
	if n := len(geocascade.CitiesForSelection(cities, "", id)); n > 0 {
		return fmt.Errorf("%w: state %s still has %d cities", domain.ErrConflict, id, n)
	}
	if err := s.states.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, domain.CollectionStates, id, domain.ActionDeleted)
	return nil
}

func (s *GeoService) DeleteCity(ctx context.Context, id string) error {
	if err := s.cities.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, domain.CollectionCities, id, domain.ActionDeleted)
	return nil
}

// Cascade applies one form transition and returns the next selection with
// the option lists valid for it.
func (s *GeoService) Cascade(ctx context.Context, req CascadeRequest) (*CascadeResult, error) {
	ctx, span := telemetry.Start(ctx, "GeoService.Cascade", telemetry.AttrCascadeEvent.String(string(req.Event)))
	defer span.End()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sel := req.Selection
	switch req.Event {
	case CascadeCountry:
		sel = geocascade.OnCountryChange(sel, req.CountryID, snap.Countries)
	case CascadeState:
		sel = geocascade.OnStateChange(sel, req.StateID, snap.States, snap.Countries)
	case CascadeCity:
		known := geocascade.CitiesForSelection(snap.Cities, sel.CountryID, sel.StateID)
		choice := geocascade.Typed(req.CityText)
		if req.CityID != "" {
			c, ok := findCity(snap.Cities, req.CityID)
			if !ok {
				c = domain.City{ID: req.CityID, Name: req.CityText}
			}
			choice = geocascade.Picked(c)
		}
		sel = geocascade.OnCityPick(sel, choice, known)
	case "":
		// No transition: just compute options for the current selection.
	default:
		return nil, fmt.Errorf("%w: unknown cascade event %q", domain.ErrValidation, req.Event)
	}

	if req.Event != "" {
		metrics.CascadeTransitions.WithLabelValues(string(req.Event)).Inc()
	}
	return &CascadeResult{Selection: sel, Options: geocascade.OptionsFor(*snap, sel)}, nil
}

// NearbyCities returns cities with coordinates within radiusMeters of a
// point, nearest first.
func (s *GeoService) NearbyCities(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]NearbyCity, error) {
	if !geospatial.ValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrValidation)
	}
	if radiusMeters <= 0 || radiusMeters > 500_000 {
		radiusMeters = 50_000
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	box := geospatial.BoundingBox(lat, lon, radiusMeters)
	out := []NearbyCity{}
	for _, c := range snap.Cities {
		pt, ok := c.Point()
		if !ok || !box.Contains(pt.Lat, pt.Lon) {
			continue
		}
		d := geospatial.Haversine(lat, lon, pt.Lat, pt.Lon)
		if d <= radiusMeters {
			out = append(out, NearbyCity{City: c, DistanceMeters: d})
		}
	}
	slices.SortFunc(out, func(a, b NearbyCity) int {
		switch {
		case a.DistanceMeters < b.DistanceMeters:
			return -1
		case a.DistanceMeters > b.DistanceMeters:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Invalidate drops the cached snapshot.
func (s *GeoService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, GeoSnapshotKey)
}

func (s *GeoService) changed(ctx context.Context, collection, id, action string) {
	if err := s.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "evict geo snapshot", "error", err)
	}
	publishChange(ctx, s.publisher, collection, id, action)
}

func (s *GeoService) requireCountry(ctx context.Context, id string) error {
	_, err := s.countries.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: unknown country %q", domain.ErrValidation, id)
	}
	if err != nil {
		return fmt.Errorf("get country: %w", err)
	}
	return nil
}

// stampNew assigns an id and creation time to new records and returns the
// change action.
func stampNew(id *string, created *time.Time) string {
	if *id != "" {
		return domain.ActionUpdated
	}
	*id = uuid.NewString()
	*created = time.Now().UTC()
	return domain.ActionCreated
}

func findCity(cities []domain.City, id string) (domain.City, bool) {
	for _, c := range cities {
		if c.ID == id {
			return c, true
		}
	}
	return domain.City{}, false
}
