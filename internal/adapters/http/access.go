package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/backoffice/internal/core/usecases"
)

// HeaderAdminUser carries the id of the signed-in back-office user. It is set
// by the authenticating proxy in front of the API.
const HeaderAdminUser = "X-Admin-User"

const localUserID = "user_id"

// IdentityMiddleware records the caller on the request and in the user
// context, where services pick it up as the change-event actor.
func IdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderAdminUser))
		if id == "" {
			return c.Next()
		}
		c.Locals(localUserID, id)
		ctx := usecases.WithActor(c.UserContext(), id)
		ctx = withLogger(ctx, LoggerFromCtx(ctx).With("actor", id))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// RequireAccess rejects callers whose permission on resource is too low.
// Reads need view access, writes need full access.
func RequireAccess(deps *Dependencies, resource string, write bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := userID(c)
		if id == "" {
			return errUnauthorized(c, "missing "+HeaderAdminUser+" header")
		}
		if deps.Permissions == nil {
			return errForbidden(c, "permissions are not configured")
		}
		perms, err := deps.Permissions.Permissions(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		level := perms.Level(resource)
		if write && !level.CanEdit() {
			return errForbidden(c, "write access to "+resource+" is required")
		}
		if !level.CanView() {
			return errForbidden(c, "view access to "+resource+" is required")
		}
		return c.Next()
	}
}

// RequireUser only checks that a caller is identified.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID(c) == "" {
			return errUnauthorized(c, "missing "+HeaderAdminUser+" header")
		}
		return c.Next()
	}
}
