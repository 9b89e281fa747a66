package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/usecases"
)

// saveEntity parses the body into v and stores it. On PUT the path id wins
// over any id in the body.
func saveEntity[T any](c *fiber.Ctx, v *T, id func(*T) *string, save func(context.Context, *T) error) error {
	if err := c.BodyParser(v); err != nil {
		return errBadRequest(c, "invalid request body")
	}
	isNew := c.Params("id") == ""
	if !isNew {
		*id(v) = c.Params("id")
	}
	if err := save(c.UserContext(), v); err != nil {
		return fail(c, err)
	}
	if isNew {
		return created(c, v, "created")
	}
	return ok(c, v, "updated")
}

func deleteEntity(del func(context.Context, string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := del(c.UserContext(), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return ok(c, nil, "deleted")
	}
}

func getEntity[T any](get func(context.Context, string) (*T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, v, "")
	}
}

// ---- Countries ----

func ListCountriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries, err := deps.Geo.ListCountries(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return ok(c, countries, "")
	}
}

func SaveCountryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return saveEntity(c, &domain.Country{}, func(v *domain.Country) *string { return &v.ID }, deps.Geo.SaveCountry)
	}
}

// ---- States ----

// ListStatesHandler lists states, optionally filtered by ?country_id.
func ListStatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		states, err := deps.Geo.ListStates(c.UserContext(), c.Query("country_id"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, states, "")
	}
}

func SaveStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return saveEntity(c, &domain.State{}, func(v *domain.State) *string { return &v.ID }, deps.Geo.SaveState)
	}
}

// ---- Cities ----

// ListCitiesHandler lists cities, optionally filtered by ?country_id and ?state_id.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Geo.ListCities(c.UserContext(), c.Query("country_id"), c.Query("state_id"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, cities, "")
	}
}

func SaveCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return saveEntity(c, &domain.City{}, func(v *domain.City) *string { return &v.ID }, deps.Geo.SaveCity)
	}
}

// NearbyCitiesHandler returns cities within ?radius meters of ?lat,?lon.
func NearbyCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		cities, err := deps.Geo.NearbyCities(c.UserContext(),
			c.QueryFloat("lat"), c.QueryFloat("lon"), c.QueryFloat("radius"), c.QueryInt("limit"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, cities, "")
	}
}

// CascadeHandler applies one country/state/city form change and returns the
// next selection with its dropdown options.
func CascadeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.CascadeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		res, err := deps.Geo.Cascade(c.UserContext(), req)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, res, "")
	}
}

// ---- Locations ----

func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)
		locations, total, err := deps.Locations.List(c.UserContext(), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return paginated(c, locations, Pagination{Offset: offset, Limit: limit, Total: total})
	}
}

func SaveLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return saveEntity(c, &domain.Location{}, func(v *domain.Location) *string { return &v.ID }, deps.Locations.Save)
	}
}

// ---- Users ----

func ListUsersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := deps.Users.List(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return ok(c, users, "")
	}
}

func SaveUserHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return saveEntity(c, &domain.User{}, func(v *domain.User) *string { return &v.ID }, deps.Users.Save)
	}
}

// MyPermissionsHandler returns the caller's level on every resource.
func MyPermissionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := userID(c)
		perms := domain.Permissions{}
		if deps.Permissions != nil {
			p, err := deps.Permissions.Permissions(c.UserContext(), id)
			if err != nil {
				return fail(c, err)
			}
			perms = p
		}
		levels := make(domain.Permissions, len(domain.AllResources()))
		for _, r := range domain.AllResources() {
			levels[r] = perms.Level(r)
		}
		return ok(c, fiber.Map{"user_id": id, "permissions": levels}, "")
	}
}
