package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	requestTimeout := deps.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	rateLimit := deps.RateLimit
	if rateLimit <= 0 {
		rateLimit = 120
	}
	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if len(deps.AllowOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(deps.AllowOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, " + HeaderAdminUser,
			AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		}))
	}

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(IdentityMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting per caller, falling back to the client IP.
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := userID(c); id != "" {
				return "user:" + id
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Geography
	geoView := RequireAccess(deps, domain.ResourceGeography, false)
	geoEdit := RequireAccess(deps, domain.ResourceGeography, true)
	v1.Get("/countries", geoView, withTimeout(ListCountriesHandler(deps)))
	v1.Get("/countries/:id", geoView, withTimeout(getEntity(deps.Geo.GetCountry)))
	v1.Post("/countries", geoEdit, withTimeout(SaveCountryHandler(deps)))
	v1.Put("/countries/:id", geoEdit, withTimeout(SaveCountryHandler(deps)))
	v1.Delete("/countries/:id", geoEdit, withTimeout(deleteEntity(deps.Geo.DeleteCountry)))

	v1.Get("/states", geoView, withTimeout(ListStatesHandler(deps)))
	v1.Get("/states/:id", geoView, withTimeout(getEntity(deps.Geo.GetState)))
	v1.Post("/states", geoEdit, withTimeout(SaveStateHandler(deps)))
	v1.Put("/states/:id", geoEdit, withTimeout(SaveStateHandler(deps)))
	v1.Delete("/states/:id", geoEdit, withTimeout(deleteEntity(deps.Geo.DeleteState)))

	v1.Get("/cities", geoView, withTimeout(ListCitiesHandler(deps)))
	v1.Get("/cities/nearby", geoView, withTimeout(NearbyCitiesHandler(deps)))
	v1.Get("/cities/:id", geoView, withTimeout(getEntity(deps.Geo.GetCity)))
	v1.Post("/cities", geoEdit, withTimeout(SaveCityHandler(deps)))
	v1.Put("/cities/:id", geoEdit, withTimeout(SaveCityHandler(deps)))
	v1.Delete("/cities/:id", geoEdit, withTimeout(deleteEntity(deps.Geo.DeleteCity)))

	// The cascade drives location forms, so it follows location access.
	v1.Post("/geo/cascade", RequireAccess(deps, domain.ResourceLocations, false), withTimeout(CascadeHandler(deps)))

	// Locations
	locView := RequireAccess(deps, domain.ResourceLocations, false)
	locEdit := RequireAccess(deps, domain.ResourceLocations, true)
	v1.Get("/locations", locView, withTimeout(ListLocationsHandler(deps)))
	v1.Get("/locations/:id", locView, withTimeout(getEntity(deps.Locations.Get)))
	v1.Post("/locations", locEdit, withTimeout(SaveLocationHandler(deps)))
	v1.Put("/locations/:id", locEdit, withTimeout(SaveLocationHandler(deps)))
	v1.Delete("/locations/:id", locEdit, withTimeout(deleteEntity(deps.Locations.Delete)))

	// SEO extras are registered before the generic collection routes.
	seoView := RequireAccess(deps, domain.ResourceSEO, false)
	v1.Post("/seo/audit", seoView, withTimeout(SEOAuditDraftHandler(deps)))
	v1.Get("/seo/:id/field", seoView, withTimeout(SEOFieldHandler(deps)))
	v1.Get("/seo/:id/audit", seoView, withTimeout(SEOAuditHandler(deps)))

	// Document collections
	for _, col := range []struct {
		resource string
		store    contentStore
	}{
		{domain.ResourceProducts, deps.Products},
		{domain.ResourceAuthors, deps.Authors},
		{domain.ResourceFAQs, deps.FAQs},
		{domain.ResourceContacts, deps.Contacts},
		{domain.ResourceOfficeInfo, deps.OfficeInfo},
		{domain.ResourceSEO, deps.SEO},
	} {
		view := RequireAccess(deps, col.resource, false)
		edit := RequireAccess(deps, col.resource, true)
		base := "/" + col.store.Collection()
		v1.Get(base, view, withTimeout(ListDocumentsHandler(col.store)))
		v1.Get(base+"/:id", view, withTimeout(GetDocumentHandler(col.store)))
		v1.Get(base+"/:id/fields", view, withTimeout(FieldsHandler(col.store)))
		v1.Post(base, edit, withTimeout(CreateDocumentHandler(col.store)))
		v1.Put(base+"/:id", edit, withTimeout(ReplaceDocumentHandler(col.store)))
		v1.Patch(base+"/:id/fields", edit, withTimeout(PatchFieldsHandler(col.store)))
		v1.Delete(base+"/:id", edit, withTimeout(DeleteDocumentHandler(col.store)))
	}

	// Users
	usersView := RequireAccess(deps, domain.ResourceUsers, false)
	usersEdit := RequireAccess(deps, domain.ResourceUsers, true)
	v1.Get("/users", usersView, withTimeout(ListUsersHandler(deps)))
	v1.Get("/users/:id", usersView, withTimeout(getEntity(deps.Users.Get)))
	v1.Post("/users", usersEdit, withTimeout(SaveUserHandler(deps)))
	v1.Put("/users/:id", usersEdit, withTimeout(SaveUserHandler(deps)))
	v1.Delete("/users/:id", usersEdit, withTimeout(deleteEntity(deps.Users.Delete)))
	v1.Get("/me/permissions", RequireUser(), withTimeout(MyPermissionsHandler(deps)))

	// GraphQL (read-only geography)
	app.Post("/graphql", RequireAccess(deps, domain.ResourceGeography, false), GraphQLHandler(deps))

	SetupDocs(app, deps.DocsPath)

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
