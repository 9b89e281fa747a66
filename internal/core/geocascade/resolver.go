// Package geocascade computes cascading country → state → city choices for
// forms that pin a record to the geography hierarchy.
//
// Every function is pure: it reads the collections it is given and returns a
// new value. Unknown ids never fail; they resolve to empty names or empty
// option lists so a form with stale or half-loaded reference data keeps working.
package geocascade

import (
	"slices"
	"strings"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// Selection is the geography part of a form being edited.
type Selection struct {
	CountryID   string   `json:"country_id"`
	StateID     string   `json:"state_id"`
	CityID      string   `json:"city_id"`
	CountryName string   `json:"country_name"`
	StateName   string   `json:"state_name"`
	CityName    string   `json:"city_name"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// FromLocation seeds a selection from a stored location.
func FromLocation(l domain.Location) Selection {
	return Selection{
		CountryID:   l.CountryID,
		StateID:     l.StateID,
		CityID:      l.CityID,
		CountryName: l.CountryName,
		StateName:   l.StateName,
		CityName:    l.CityName,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
	}
}

// ApplyTo copies the selection onto a location.
func (s Selection) ApplyTo(l *domain.Location) {
	l.CountryID = s.CountryID
	l.StateID = s.StateID
	l.CityID = s.CityID
	l.CountryName = s.CountryName
	l.StateName = s.StateName
	l.CityName = s.CityName
	l.Latitude = s.Latitude
	l.Longitude = s.Longitude
}

// StatesForCountry returns the states of countryID in input order. An empty
// countryID matches nothing.
func StatesForCountry(states []domain.State, countryID string) []domain.State {
	out := []domain.State{}
	if countryID == "" {
		return out
	}
	for _, s := range states {
		if s.CountryID.ID == countryID {
			out = append(out, s)
		}
	}
	return out
}

// CitiesForSelection filters by state when stateID is set, otherwise by
// country. A city matching only on country is never added to a state filter,
// and a selection with neither id matches nothing.
func CitiesForSelection(cities []domain.City, countryID, stateID string) []domain.City {
	out := []domain.City{}
	if countryID == "" && stateID == "" {
		return out
	}
	for _, c := range cities {
		if stateID != "" {
			if domain.ExtractID(c.StateID) == stateID {
				out = append(out, c)
			}
			continue
		}
		if domain.ExtractID(c.CountryID) == countryID {
			out = append(out, c)
		}
	}
	return out
}

// OnCountryChange selects countryID and clears the dependent state and city.
func OnCountryChange(sel Selection, countryID string, countries []domain.Country) Selection {
	sel.CountryID = countryID
	sel.CountryName = countryName(countries, countryID)
	sel.StateID, sel.StateName = "", ""
	sel.CityID, sel.CityName = "", ""
	return sel
}

// OnStateChange selects stateID. An empty id clears only the state. A known
// state overwrites the country with the state's own country and drops the
// coordinates.
func OnStateChange(sel Selection, stateID string, states []domain.State, countries []domain.Country) Selection {
	if stateID == "" {
		sel.StateID, sel.StateName = "", ""
		return sel
	}

	sel.StateID = stateID
	sel.Latitude, sel.Longitude = nil, nil

	st, ok := findState(states, stateID)
	if !ok {
		sel.StateName = ""
		return sel
	}

	sel.StateName = st.Name
	sel.CountryID = st.CountryID.ID
	sel.CountryName = countryName(countries, st.CountryID.ID)
	return sel
}

// CityChoice is either a city picked from the option list or free text.
type CityChoice struct {
	city  *domain.City
	typed string
}

// Picked wraps a city chosen from the list.
func Picked(c domain.City) CityChoice { return CityChoice{city: &c} }

// Typed wraps free text entered instead of picking.
func Typed(text string) CityChoice { return CityChoice{typed: text} }

// OnCityPick selects a city. A picked city copies its coordinates; typed
// text is kept as the name with no id and no coordinates, even when it
// happens to equal a listed city's name.
func OnCityPick(sel Selection, choice CityChoice, known []domain.City) Selection {
	city := choice.city
	if city != nil {
		if k, ok := findCity(known, city.ID); ok {
			city = &k
		}
	}

	if city == nil {
		sel.CityID = ""
		sel.CityName = choice.typed
		sel.Latitude, sel.Longitude = nil, nil
		return sel
	}

	sel.CityID = city.ID
	sel.CityName = city.Name
	if pt, ok := city.Point(); ok {
		sel.Latitude, sel.Longitude = &pt.Lat, &pt.Lon
	} else {
		sel.Latitude, sel.Longitude = nil, nil
	}
	return sel
}

// Options are the dropdown lists valid for a selection.
type Options struct {
	States []domain.State `json:"states"`
	Cities []domain.City  `json:"cities"`
}

// OptionsFor returns the name-sorted state and city lists for sel.
func OptionsFor(snap domain.GeoSnapshot, sel Selection) Options {
	return Options{
		States: SortByName(StatesForCountry(snap.States, sel.CountryID)),
		Cities: SortByName(CitiesForSelection(snap.Cities, sel.CountryID, sel.StateID)),
	}
}

// Named is implemented by every geography entity.
type Named interface {
	domain.Country | domain.State | domain.City
}

// SortByName returns a copy of items ordered by case-insensitive name, ties
// broken by id.
func SortByName[T Named](items []T) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		an, aid := nameAndID(a)
		bn, bid := nameAndID(b)
		if c := strings.Compare(strings.ToLower(an), strings.ToLower(bn)); c != 0 {
			return c
		}
		return strings.Compare(aid, bid)
	})
	return out
}

func nameAndID(v any) (string, string) {
	switch e := v.(type) {
	case domain.Country:
		return e.Name, e.ID
	case domain.State:
		return e.Name, e.ID
	case domain.City:
		return e.Name, e.ID
	}
	return "", ""
}

func countryName(countries []domain.Country, id string) string {
	for _, c := range countries {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func findState(states []domain.State, id string) (domain.State, bool) {
	for _, s := range states {
		if s.ID == id {
			return s, true
		}
	}
	return domain.State{}, false
}

func findCity(cities []domain.City, id string) (domain.City, bool) {
	for _, c := range cities {
		if c.ID == id {
			return c, true
		}
	}
	return domain.City{}, false
}
