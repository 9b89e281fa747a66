package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that did not set
// their own. Admin data varies per caller, so API responses are private.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		var value string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			value = "no-cache"
		case path == "/metrics":
			value = "no-cache"
		case path == "/v1/cities/nearby":
			value = "private, max-age=300"
		case strings.HasPrefix(path, "/v1/countries"),
			strings.HasPrefix(path, "/v1/states"),
			strings.HasPrefix(path, "/v1/cities"):
			value = "private, max-age=60"
		case strings.HasPrefix(path, "/docs"):
			value = "public, max-age=3600"
		case strings.HasPrefix(path, "/v1/"):
			value = "private, no-cache"
		}
		if value != "" {
			c.Set(fiber.HeaderCacheControl, value)
		}
		return err
	}
}
