package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ref is a denormalized reference to another entity. On the wire it is either
// a bare id or an embedded object carrying "id" (or "_id"); it always encodes
// back as the bare id.
type Ref struct {
	ID string
}

// NewRef returns a reference to id.
func NewRef(id string) Ref {
	return Ref{ID: id}
}

// RefPtr returns a reference to id, or nil when id is empty.
func RefPtr(id string) *Ref {
	if id == "" {
		return nil
	}
	return &Ref{ID: id}
}

// ExtractID returns the referenced id, or "" for a nil reference.
func ExtractID(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
	case '{':
		var embedded struct {
			ID      json.RawMessage `json:"id"`
			MongoID json.RawMessage `json:"_id"`
		}
		if err := json.Unmarshal(data, &embedded); err != nil {
			return err
		}
		raw := embedded.ID
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			raw = embedded.MongoID
		}
		var inner Ref
		if len(raw) > 0 {
			if err := inner.UnmarshalJSON(raw); err != nil {
				return err
			}
		}
		*r = inner
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("reference must be an id or an object with an id: %w", err)
		}
		*r = Ref{ID: n.String()}
	}
	return nil
}

// Country is a top-level geographic entity.
type Country struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"` // ISO 3166-1 alpha-2
	CreatedAt time.Time `json:"created_at"`
}

// State belongs to a country.
type State struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CountryID Ref       `json:"country_id"`
	CreatedAt time.Time `json:"created_at"`
}

// City may reference a state, a country, or both.
type City struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StateID   *Ref      `json:"state_id,omitempty"`
	CountryID *Ref      `json:"country_id,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Point returns the city's coordinates when both are known.
func (c City) Point() (GeoPoint, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *c.Latitude, Lon: *c.Longitude}, true
}

// Location is a named place (office, venue, pickup point) pinned to the
// geography hierarchy. Names are stored denormalized next to the ids.
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	CountryID   string    `json:"country_id"`
	StateID     string    `json:"state_id,omitempty"`
	CityID      string    `json:"city_id,omitempty"`
	CountryName string    `json:"country_name"`
	StateName   string    `json:"state_name,omitempty"`
	CityName    string    `json:"city_name,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeoSnapshot is the full geography reference data loaded at once.
type GeoSnapshot struct {
	Countries []Country `json:"countries"`
	States    []State   `json:"states"`
	Cities    []City    `json:"cities"`
}
