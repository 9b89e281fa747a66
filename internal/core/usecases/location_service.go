package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/geocascade"
	"github.com/samirrijal/backoffice/internal/core/ports"
)

// LocationService manages named places pinned to the geography hierarchy.
type LocationService struct {
	locations ports.LocationRepository
	geo       *GeoService
	publisher ports.EventPublisher
}

// NewLocationService creates a new LocationService.
func NewLocationService(locations ports.LocationRepository, geo *GeoService, publisher ports.EventPublisher) *LocationService {
	return &LocationService{locations: locations, geo: geo, publisher: publisher}
}

func (s *LocationService) List(ctx context.Context, limit, offset int) ([]domain.Location, int, error) {
	return s.locations.List(ctx, limit, offset)
}

func (s *LocationService) Get(ctx context.Context, id string) (*domain.Location, error) {
	return s.locations.GetByID(ctx, id)
}

// Save normalises the location's geography and persists it.
func (s *LocationService) Save(ctx context.Context, loc *domain.Location) error {
	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	snap, err := s.geo.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := Normalize(loc, snap); err != nil {
		return err
	}

	action := stampNew(&loc.ID, &loc.CreatedAt)
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	publishChange(ctx, s.publisher, domain.CollectionLocations, loc.ID, action)
	return nil
}

func (s *LocationService) Delete(ctx context.Context, id string) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		return err
	}
	publishChange(ctx, s.publisher, domain.CollectionLocations, id, domain.ActionDeleted)
	return nil
}

// Normalize replays the location's country, state and city through the
// cascade so the stored ids and names agree with the reference data. A state
// wins over a mismatching country. Explicit coordinates on the location are
// kept; otherwise the picked city's coordinates are used.
func Normalize(loc *domain.Location, snap *domain.GeoSnapshot) error {
	if loc.CountryID == "" && loc.StateID == "" {
		return fmt.Errorf("%w: country_id or state_id is required", domain.ErrValidation)
	}

	lat, lon := loc.Latitude, loc.Longitude

	sel := geocascade.OnCountryChange(geocascade.Selection{}, loc.CountryID, snap.Countries)
	if loc.StateID != "" {
		sel = geocascade.OnStateChange(sel, loc.StateID, snap.States, snap.Countries)
		if sel.StateName == "" {
			return fmt.Errorf("%w: unknown state %q", domain.ErrValidation, loc.StateID)
		}
	}
	if sel.CountryName == "" {
		return fmt.Errorf("%w: unknown country %q", domain.ErrValidation, sel.CountryID)
	}

	known := geocascade.CitiesForSelection(snap.Cities, sel.CountryID, sel.StateID)
	switch {
	case loc.CityID != "":
		c, ok := findCity(known, loc.CityID)
		if !ok {
			return fmt.Errorf("%w: city %q is not in the selected country or state", domain.ErrValidation, loc.CityID)
		}
		sel = geocascade.OnCityPick(sel, geocascade.Picked(c), known)
	case strings.TrimSpace(loc.CityName) != "":
		name := strings.TrimSpace(loc.CityName)
		choice := geocascade.Typed(name)
		// A stored name is matched only against cities of the selected
		// country or state.
		if c, ok := findCityByName(known, name); ok {
			choice = geocascade.Picked(c)
		}
		sel = geocascade.OnCityPick(sel, choice, known)
	}

	if lat != nil && lon != nil {
		sel.Latitude, sel.Longitude = lat, lon
	}
	sel.ApplyTo(loc)
	return nil
}

func findCityByName(cities []domain.City, name string) (domain.City, bool) {
	for _, c := range cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return domain.City{}, false
}
