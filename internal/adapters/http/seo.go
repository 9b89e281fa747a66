package http

import (
	"github.com/gofiber/fiber/v2"
)

// SEOFieldHandler reads one dotted ?path of an SEO document.
func SEOFieldHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Query("path")
		if path == "" {
			return errBadRequest(c, "path query parameter is required")
		}
		value, found, err := deps.SEO.Field(c.UserContext(), c.Params("id"), path)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"path": path, "value": value, "exists": found}, "")
	}
}

// SEOAuditHandler runs the audit rules against a stored document.
func SEOAuditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		findings, err := deps.SEO.Audit(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, findings, "")
	}
}

// SEOAuditDraftHandler runs the audit rules against an unsaved tree.
func SEOAuditDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var data map[string]any
		if err := c.BodyParser(&data); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return ok(c, deps.SEO.AuditTree(c.UserContext(), data), "")
	}
}
