package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/core/usecases"
	"github.com/samirrijal/backoffice/internal/pkg/nestedpath"
)

// Pinger is a backing service the readiness check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Geo         *usecases.GeoService
	Locations   *usecases.LocationService
	SEO         *usecases.SEOService
	Products    *usecases.ContentService[domain.Product]
	Authors     *usecases.ContentService[domain.Author]
	FAQs        *usecases.ContentService[domain.FAQ]
	Contacts    *usecases.ContentService[domain.Contact]
	OfficeInfo  *usecases.ContentService[domain.OfficeInfo]
	Users       *usecases.UserService
	Permissions ports.PermissionProvider
	NATS        *nats.Conn
	DB          Pinger
	Cache       Pinger

	RequestTimeout time.Duration
	RateLimit      int
	AllowOrigins   []string
	DocsPath       string
}

// contentStore is the document API shared by every content collection.
type contentStore interface {
	Collection() string
	List(ctx context.Context, limit, offset int) ([]domain.Document, int, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Create(ctx context.Context, data map[string]any) (*domain.Document, error)
	Replace(ctx context.Context, id string, data map[string]any) (*domain.Document, error)
	PatchFields(ctx context.Context, id string, ops []nestedpath.Op) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}
