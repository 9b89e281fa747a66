package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AccessLevel gates what a user may do with one resource.
type AccessLevel int

const (
	NoAccess AccessLevel = iota
	ViewOnly
	FullAccess
)

// Wire values used by the admin UI.
const (
	accessNone = "no access"
	accessView = "only view"
	accessAll  = "all access"
)

// ParseAccessLevel maps a stored permission string to a level.
// Unknown values resolve to NoAccess.
func ParseAccessLevel(s string) AccessLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case accessAll:
		return FullAccess
	case accessView:
		return ViewOnly
	default:
		return NoAccess
	}
}

func (l AccessLevel) String() string {
	switch l {
	case FullAccess:
		return accessAll
	case ViewOnly:
		return accessView
	default:
		return accessNone
	}
}

// CanView reports whether the level allows reads.
func (l AccessLevel) CanView() bool { return l >= ViewOnly }

// CanEdit reports whether the level allows mutations.
func (l AccessLevel) CanEdit() bool { return l == FullAccess }

func (l AccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *AccessLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("access level: %w", err)
	}
	*l = ParseAccessLevel(s)
	return nil
}

// Resources that carry their own permission entry.
const (
	ResourceProducts   = "products"
	ResourceAuthors    = "authors"
	ResourceGeography  = "geography"
	ResourceLocations  = "locations"
	ResourceFAQs       = "faqs"
	ResourceContacts   = "contacts"
	ResourceOfficeInfo = "office-info"
	ResourceSEO        = "seo"
	ResourceUsers      = "users"
)

// Permissions maps resource names to access levels.
type Permissions map[string]AccessLevel

// Level returns the level for resource, NoAccess when absent.
func (p Permissions) Level(resource string) AccessLevel {
	return p[resource]
}

// Role names. Admins get FullAccess to every resource regardless of their
// stored permission map.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is a platform (back-office) user.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Role        string      `json:"role"`
	Permissions Permissions `json:"permissions"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EffectivePermissions returns what the user may actually do.
func (u *User) EffectivePermissions() Permissions {
	out := Permissions{}
	if u == nil || !u.Active {
		return out
	}
	if u.Role == RoleAdmin {
		for _, r := range AllResources() {
			out[r] = FullAccess
		}
		return out
	}
	for r, l := range u.Permissions {
		out[r] = l
	}
	return out
}

// AllResources lists every permission-gated resource.
func AllResources() []string {
	return []string{
		ResourceProducts, ResourceAuthors, ResourceGeography, ResourceLocations,
		ResourceFAQs, ResourceContacts, ResourceOfficeInfo, ResourceSEO, ResourceUsers,
	}
}
