package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/core/usecases"
)

// ImportPlan is what an import will change.
type ImportPlan struct {
	Orphans      []Orphan `json:"orphans"`
	NewCountries []string `json:"new_countries"`
	NewStates    []string `json:"new_states"`
	NewCities    []string `json:"new_cities"`
}

// GeoImportActivities holds the activity implementations for GeoImportWorkflow.
type GeoImportActivities struct {
	Geo       *usecases.GeoService
	Countries ports.CountryRepository
	States    ports.StateRepository
	Cities    ports.CityRepository
}

// PlanImport checks the seed for orphans and lists the ids it would create.
func (a *GeoImportActivities) PlanImport(ctx context.Context, seed GeoSeed) (ImportPlan, error) {
	_ = a.Geo.Invalidate(ctx) // best effort
	snap, err := a.Geo.Snapshot(ctx)
	if err != nil {
		return ImportPlan{}, fmt.Errorf("load geography: %w", err)
	}

	plan := ImportPlan{Orphans: CheckSeed(&seed, snap)}
	known := map[string]bool{}
	for _, c := range snap.Countries {
		known["country/"+c.ID] = true
	}
	for _, s := range snap.States {
		known["state/"+s.ID] = true
	}
	for _, c := range snap.Cities {
		known["city/"+c.ID] = true
	}
	for _, c := range seed.Countries {
		if !known["country/"+c.ID] {
			plan.NewCountries = append(plan.NewCountries, c.ID)
		}
	}
	for _, s := range seed.States {
		if !known["state/"+s.ID] {
			plan.NewStates = append(plan.NewStates, s.ID)
		}
	}
	for _, c := range seed.Cities {
		if !known["city/"+c.ID] {
			plan.NewCities = append(plan.NewCities, c.ID)
		}
	}
	return plan, nil
}

func (a *GeoImportActivities) UpsertCountries(ctx context.Context, rows []SeedCountry) (int, error) {
	for _, r := range rows {
		c := r.Country()
		if err := a.Countries.Upsert(ctx, &c); err != nil {
			return 0, permanent(fmt.Errorf("upsert country %s: %w", r.ID, err))
		}
	}
	return len(rows), nil
}

func (a *GeoImportActivities) UpsertStates(ctx context.Context, rows []SeedState) (int, error) {
	for _, r := range rows {
		st := r.State()
		if err := a.States.Upsert(ctx, &st); err != nil {
			return 0, permanent(fmt.Errorf("upsert state %s: %w", r.ID, err))
		}
	}
	return len(rows), nil
}

// UpsertCities writes all cities in one batch. A city without a country
// inherits it from its state.
func (a *GeoImportActivities) UpsertCities(ctx context.Context, rows []SeedCity, states []SeedState) (int, error) {
	parent := make(map[string]string, len(states))
	for _, s := range states {
		parent[s.ID] = s.CountryID
	}

	cities := make([]domain.City, 0, len(rows))
	for _, r := range rows {
		c := r.City()
		if r.CountryID == "" && r.StateID != "" {
			countryID, ok := parent[r.StateID]
			if !ok {
				st, err := a.States.GetByID(ctx, r.StateID)
				if err != nil {
					return 0, permanent(fmt.Errorf("state of city %s: %w", r.ID, err))
				}
				countryID = st.CountryID.ID
			}
			c.CountryID = domain.RefPtr(countryID)
		}
		cities = append(cities, c)
	}
	if err := a.Cities.UpsertBatch(ctx, cities); err != nil {
		return 0, permanent(fmt.Errorf("upsert cities: %w", err))
	}
	return len(cities), nil
}

// DeleteRows removes rows created by a failed import (saga compensation).
// Rows that are already gone are skipped.
func (a *GeoImportActivities) DeleteRows(ctx context.Context, kind string, ids []string) error {
	var del func(context.Context, string) error
	switch kind {
	case domain.CollectionCountries:
		del = a.Countries.Delete
	case domain.CollectionStates:
		del = a.States.Delete
	case domain.CollectionCities:
		del = a.Cities.Delete
	default:
		return temporal.NewNonRetryableApplicationError("unknown kind "+kind, "UnknownKind", nil)
	}
	for _, id := range ids {
		if err := del(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete %s %s: %w", kind, id, err)
		}
	}
	slog.InfoContext(ctx, "import rolled back", "kind", kind, "rows", len(ids))
	return nil
}

// InvalidateGeo drops the cached snapshot after a successful import.
func (a *GeoImportActivities) InvalidateGeo(ctx context.Context) error {
	return a.Geo.Invalidate(ctx)
}

// permanent marks data errors as non-retryable; retrying cannot fix them.
func permanent(err error) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
		return temporal.NewNonRetryableApplicationError(err.Error(), "InvalidSeed", err)
	}
	return err
}
