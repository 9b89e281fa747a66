package workflows

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/geocascade"
)

// GeoSeed is a bulk load of reference geography, read from YAML.
type GeoSeed struct {
	Countries []SeedCountry `yaml:"countries" json:"countries"`
	States    []SeedState   `yaml:"states" json:"states"`
	Cities    []SeedCity    `yaml:"cities" json:"cities"`
}

type SeedCountry struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

type SeedState struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	CountryID string `yaml:"country_id" json:"country_id"`
}

type SeedCity struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	StateID   string   `yaml:"state_id,omitempty" json:"state_id,omitempty"`
	CountryID string   `yaml:"country_id,omitempty" json:"country_id,omitempty"`
	Latitude  *float64 `yaml:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty" json:"longitude,omitempty"`
}

// Orphan is a seed row whose parent cannot be resolved.
type Orphan struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (*GeoSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed GeoSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &seed, nil
}

// Merge returns existing reference data overlaid with the seed rows.
func (s *GeoSeed) Merge(existing *domain.GeoSnapshot) domain.GeoSnapshot {
	var out domain.GeoSnapshot
	if existing != nil {
		out.Countries = append(out.Countries, existing.Countries...)
		out.States = append(out.States, existing.States...)
		out.Cities = append(out.Cities, existing.Cities...)
	}
	for _, c := range s.Countries {
		out.Countries = append(out.Countries, c.Country())
	}
	for _, st := range s.States {
		out.States = append(out.States, st.State())
	}
	for _, c := range s.Cities {
		out.Cities = append(out.Cities, c.City())
	}
	return out
}

func (c SeedCountry) Country() domain.Country {
	return domain.Country{ID: c.ID, Name: strings.TrimSpace(c.Name), Code: strings.ToUpper(strings.TrimSpace(c.Code))}
}

func (s SeedState) State() domain.State {
	return domain.State{ID: s.ID, Name: strings.TrimSpace(s.Name), CountryID: domain.NewRef(s.CountryID)}
}

func (c SeedCity) City() domain.City {
	city := domain.City{ID: c.ID, Name: strings.TrimSpace(c.Name), Latitude: c.Latitude, Longitude: c.Longitude}
	if c.StateID != "" {
		city.StateID = domain.RefPtr(c.StateID)
	}
	if c.CountryID != "" {
		city.CountryID = domain.RefPtr(c.CountryID)
	}
	return city
}

// CheckSeed resolves every seed row against existing data plus the seed
// itself and reports rows that would be orphaned. Cities are replayed through
// the cascade exactly as a location form would resolve them.
func CheckSeed(seed *GeoSeed, existing *domain.GeoSnapshot) []Orphan {
	snap := seed.Merge(existing)
	var orphans []Orphan

	for _, c := range seed.Countries {
		if c.ID == "" || strings.TrimSpace(c.Name) == "" {
			orphans = append(orphans, Orphan{Kind: "country", ID: c.ID, Name: c.Name, Reason: "id and name are required"})
		}
	}

	for _, st := range seed.States {
		sel := geocascade.OnCountryChange(geocascade.Selection{}, st.CountryID, snap.Countries)
		if sel.CountryName == "" {
			orphans = append(orphans, Orphan{Kind: "state", ID: st.ID, Name: st.Name, Reason: fmt.Sprintf("unknown country %q", st.CountryID)})
		}
	}

	for _, c := range seed.Cities {
		if c.StateID == "" && c.CountryID == "" {
			orphans = append(orphans, Orphan{Kind: "city", ID: c.ID, Name: c.Name, Reason: "state_id or country_id is required"})
			continue
		}
		sel := geocascade.OnCountryChange(geocascade.Selection{}, c.CountryID, snap.Countries)
		if c.StateID != "" {
			sel = geocascade.OnStateChange(sel, c.StateID, snap.States, snap.Countries)
			if sel.StateName == "" {
				orphans = append(orphans, Orphan{Kind: "city", ID: c.ID, Name: c.Name, Reason: fmt.Sprintf("unknown state %q", c.StateID)})
				continue
			}
			if c.CountryID != "" && sel.CountryID != c.CountryID {
				orphans = append(orphans, Orphan{Kind: "city", ID: c.ID, Name: c.Name,
					Reason: fmt.Sprintf("state %q belongs to country %q, not %q", c.StateID, sel.CountryID, c.CountryID)})
				continue
			}
		}
		if sel.CountryName == "" {
			orphans = append(orphans, Orphan{Kind: "city", ID: c.ID, Name: c.Name, Reason: fmt.Sprintf("unknown country %q", sel.CountryID)})
		}
	}
	return orphans
}
