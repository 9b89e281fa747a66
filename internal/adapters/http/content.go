package http

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/backoffice/internal/pkg/nestedpath"
)

// patchRequest carries dotted-path edits. Ops are applied in order; Fields is
// a shorthand applied afterwards in path order.
type patchRequest struct {
	Ops    []nestedpath.Op `json:"ops"`
	Fields map[string]any  `json:"fields"`
}

func (r patchRequest) ops() []nestedpath.Op {
	out := append([]nestedpath.Op(nil), r.Ops...)
	paths := make([]string, 0, len(r.Fields))
	for p := range r.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		out = append(out, nestedpath.Op{Path: p, Value: r.Fields[p]})
	}
	return out
}

func ListDocumentsHandler(store contentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)
		docs, total, err := store.List(c.UserContext(), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return paginated(c, docs, Pagination{Offset: offset, Limit: limit, Total: total})
	}
}

func GetDocumentHandler(store contentStore) fiber.Handler {
	return getEntity(store.Get)
}

func CreateDocumentHandler(store contentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var data map[string]any
		if err := c.BodyParser(&data); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		doc, err := store.Create(c.UserContext(), data)
		if err != nil {
			return fail(c, err)
		}
		return created(c, doc, store.Collection()+" created")
	}
}

func ReplaceDocumentHandler(store contentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var data map[string]any
		if err := c.BodyParser(&data); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		doc, err := store.Replace(c.UserContext(), c.Params("id"), data)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, doc, store.Collection()+" updated")
	}
}

// PatchFieldsHandler updates individual fields of a document by dotted path.
func PatchFieldsHandler(store contentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req patchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		doc, err := store.PatchFields(c.UserContext(), c.Params("id"), req.ops())
		if err != nil {
			return fail(c, err)
		}
		return ok(c, doc, store.Collection()+" updated")
	}
}

type fieldLister interface {
	Fields(ctx context.Context, id string) (map[string]any, error)
}

// FieldsHandler returns every leaf of a document keyed by dotted path.
func FieldsHandler(store contentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if fl, isLister := store.(fieldLister); isLister {
			fields, err := fl.Fields(c.UserContext(), c.Params("id"))
			if err != nil {
				return fail(c, err)
			}
			return ok(c, fields, "")
		}
		doc, err := store.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, nestedpath.Flatten(doc.Data), "")
	}
}

func DeleteDocumentHandler(store contentStore) fiber.Handler {
	return deleteEntity(store.Delete)
}
