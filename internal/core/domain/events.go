package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation wraps input problems detected by the core.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a change would break a reference or a
	// uniqueness rule.
	ErrConflict = errors.New("conflict")
)

// Change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Geography collections. Together with the document collections these are the
// values carried in ChangeEvent.Collection.
const (
	CollectionCountries = "countries"
	CollectionStates    = "states"
	CollectionCities    = "cities"
	CollectionLocations = "locations"
	CollectionUsers     = "users"
)

// ChangeEvent is published after every successful mutation.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor,omitempty"`
	Time       time.Time `json:"time"`
}
