package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/backoffice/internal/adapters/http"
	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/usecases"
)

const (
	adminID  = "u-admin"
	editorID = "u-editor"
)

type fixture struct {
	app  *fiber.App
	deps *handler.Dependencies
	docs *memDocs
	pub  *recordingPublisher
}

func newFixture(t *testing.T, seed ...domain.Document) *fixture {
	t.Helper()

	geo := newMemGeo()
	docs := newMemDocs(seed...)
	pub := &recordingPublisher{}
	users := &memUsers{users: map[string]domain.User{
		adminID: {ID: adminID, Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Active: true},
		editorID: {ID: editorID, Name: "Editor", Email: "editor@example.com", Role: domain.RoleEditor, Active: true,
			Permissions: domain.Permissions{
				domain.ResourceProducts:  domain.ViewOnly,
				domain.ResourceGeography: domain.ViewOnly,
				domain.ResourceLocations: domain.FullAccess,
			}},
	}}

	geoSvc := usecases.NewGeoService(countryRepo{geo}, stateRepo{geo}, cityRepo{geo}, nil, pub, 0)
	seo, err := usecases.NewSEOService(docs, pub, []usecases.AuditRule{
		{Name: "title-missing", When: `title == nil || title == ""`, Severity: "error", Message: "title is missing"},
	})
	if err != nil {
		t.Fatalf("seo service: %v", err)
	}

	deps := &handler.Dependencies{
		Geo:         geoSvc,
		Locations:   usecases.NewLocationService(&memLocations{locs: map[string]domain.Location{}}, geoSvc, pub),
		SEO:         seo,
		Products:    usecases.NewContentService[domain.Product](domain.CollectionProducts, docs, pub),
		Authors:     usecases.NewContentService[domain.Author](domain.CollectionAuthors, docs, pub),
		FAQs:        usecases.NewContentService[domain.FAQ](domain.CollectionFAQs, docs, pub),
		Contacts:    usecases.NewContentService[domain.Contact](domain.CollectionContacts, docs, pub),
		OfficeInfo:  usecases.NewContentService[domain.OfficeInfo](domain.CollectionOfficeInfo, docs, pub),
		Users:       usecases.NewUserService(users, nil, pub),
		Permissions: usecases.NewPermissionService(users, nil, 0),
		DB:          pinger{},
		RateLimit:   1000,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return &fixture{app: app, deps: deps, docs: docs, pub: pub}
}

func (fx *fixture) do(t *testing.T, method, target, user, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(handler.HeaderAdminUser, user)
	}
	resp, err := fx.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, raw)
		}
	}
	return resp.StatusCode, out
}

// ---- Health ----

func TestHealth(t *testing.T) {
	fx := newFixture(t)
	code, body := fx.do(t, "GET", "/v1/health", "", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != true {
		t.Errorf("expected status true, got %v", body["status"])
	}
}

func TestReady_DatabaseDown(t *testing.T) {
	fx := newFixture(t)
	fx.deps.DB = pinger{err: errDown}

	code, body := fx.do(t, "GET", "/v1/ready", "", "")
	if code != 503 {
		t.Fatalf("expected 503, got %d", code)
	}
	checks := body["data"].(map[string]any)["checks"].(map[string]any)
	if !strings.Contains(checks["database"].(string), "connection refused") {
		t.Errorf("unexpected database check: %v", checks["database"])
	}
	if checks["cache"] != "not configured" {
		t.Errorf("expected cache not configured, got %v", checks["cache"])
	}
}

// ---- Access control ----

func TestAccess_MissingIdentity(t *testing.T) {
	fx := newFixture(t)
	code, body := fx.do(t, "GET", "/v1/countries", "", "")
	if code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
	if body["status"] != false || body["code"] != "unauthorized" {
		t.Errorf("unexpected error body: %v", body)
	}
	if body["request_id"] == "" || body["request_id"] == nil {
		t.Error("expected request_id in error")
	}
}

func TestAccess_ViewOnlyCannotWrite(t *testing.T) {
	fx := newFixture(t)

	code, _ := fx.do(t, "GET", "/v1/products", editorID, "")
	if code != 200 {
		t.Errorf("expected 200 for view, got %d", code)
	}
	code, body := fx.do(t, "POST", "/v1/products", editorID, `{"name":"Tour"}`)
	if code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
	if body["code"] != "forbidden" {
		t.Errorf("expected forbidden, got %v", body["code"])
	}
}

func TestAccess_NoAccessResource(t *testing.T) {
	fx := newFixture(t)
	code, _ := fx.do(t, "GET", "/v1/users", editorID, "")
	if code != 403 {
		t.Errorf("expected 403, got %d", code)
	}
	code, _ = fx.do(t, "GET", "/v1/countries", "stranger", "")
	if code != 403 {
		t.Errorf("unknown users have no access, got %d", code)
	}
}

func TestMyPermissions(t *testing.T) {
	fx := newFixture(t)
	code, body := fx.do(t, "GET", "/v1/me/permissions", editorID, "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	perms := body["data"].(map[string]any)["permissions"].(map[string]any)
	if perms[domain.ResourceProducts] != "only view" {
		t.Errorf("expected only view on products, got %v", perms[domain.ResourceProducts])
	}
	if perms[domain.ResourceLocations] != "all access" {
		t.Errorf("expected all access on locations, got %v", perms[domain.ResourceLocations])
	}
	if perms[domain.ResourceUsers] != "no access" {
		t.Errorf("expected no access on users, got %v", perms[domain.ResourceUsers])
	}
}

// ---- Geography ----

func TestListCountries(t *testing.T) {
	fx := newFixture(t)
	req := httptest.NewRequest("GET", "/v1/countries", nil)
	req.Header.Set(handler.HeaderAdminUser, adminID)
	resp, err := fx.app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "private, max-age=60" {
		t.Errorf("unexpected Cache-Control: %q", cc)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("expected ETag header")
	}

	var body struct {
		Status bool             `json:"status"`
		Data   []domain.Country `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Status || len(body.Data) != 2 || body.Data[0].Name != "India" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestListStates_ByCountry(t *testing.T) {
	fx := newFixture(t)
	_, body := fx.do(t, "GET", "/v1/states?country_id=c2", editorID, "")
	states := body["data"].([]any)
	if len(states) != 1 || states[0].(map[string]any)["name"] != "Bizkaia" {
		t.Errorf("unexpected states: %v", states)
	}
}

func TestGetCountry_NotFound(t *testing.T) {
	fx := newFixture(t)
	code, body := fx.do(t, "GET", "/v1/countries/zz", adminID, "")
	if code != 404 || body["code"] != "not_found" {
		t.Errorf("expected 404 not_found, got %d %v", code, body)
	}
}

func TestNearbyCities(t *testing.T) {
	fx := newFixture(t)

	code, _ := fx.do(t, "GET", "/v1/cities/nearby?lat=43.26", adminID, "")
	if code != 400 {
		t.Errorf("expected 400 without lon, got %d", code)
	}

	code, body := fx.do(t, "GET", "/v1/cities/nearby?lat=43.2630&lon=-2.9350&radius=20000", adminID, "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	cities := body["data"].([]any)
	if len(cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(cities))
	}
	first := cities[0].(map[string]any)
	if first["id"] != "ct3" {
		t.Errorf("expected Bilbao first, got %v", first["id"])
	}

	code, _ = fx.do(t, "GET", "/v1/cities/nearby?lat=95&lon=0", adminID, "")
	if code != 400 {
		t.Errorf("expected 400 for invalid latitude, got %d", code)
	}
}

func TestCascade(t *testing.T) {
	fx := newFixture(t)

	code, body := fx.do(t, "POST", "/v1/geo/cascade", editorID, `{"event":"country","country_id":"c2"}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d: %v", code, body)
	}
	data := body["data"].(map[string]any)
	sel := data["selection"].(map[string]any)
	if sel["country_name"] != "Spain" {
		t.Errorf("expected Spain, got %v", sel["country_name"])
	}
	opts := data["options"].(map[string]any)
	if len(opts["states"].([]any)) != 1 {
		t.Errorf("expected 1 state option, got %v", opts["states"])
	}

	code, body = fx.do(t, "POST", "/v1/geo/cascade", editorID,
		`{"selection":{"country_id":"c2","country_name":"Spain","state_id":"s2","state_name":"Bizkaia"},"event":"city","city_id":"ct4"}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	sel = body["data"].(map[string]any)["selection"].(map[string]any)
	if sel["city_name"] != "Getxo" || sel["latitude"] == nil {
		t.Errorf("expected Getxo with coordinates, got %v", sel)
	}

	code, _ = fx.do(t, "POST", "/v1/geo/cascade", editorID, `{"event":"planet"}`)
	if code != 400 {
		t.Errorf("expected 400 for unknown event, got %d", code)
	}
}

// ---- Locations ----

func TestSaveLocation_Normalises(t *testing.T) {
	fx := newFixture(t)

	code, body := fx.do(t, "POST", "/v1/locations", editorID,
		`{"name":"Bilbao office","country_id":"c1","state_id":"s2","city_id":"ct3"}`)
	if code != 201 {
		t.Fatalf("expected 201, got %d: %v", code, body)
	}
	loc := body["data"].(map[string]any)
	if loc["country_id"] != "c2" || loc["country_name"] != "Spain" {
		t.Errorf("expected country taken from state, got %v", loc)
	}
	if loc["city_name"] != "Bilbao" || loc["latitude"] == nil {
		t.Errorf("expected Bilbao with coordinates, got %v", loc)
	}

	if len(fx.pub.events) != 1 || fx.pub.events[0].Actor != editorID {
		t.Errorf("expected one event by the editor, got %+v", fx.pub.events)
	}

	code, _ = fx.do(t, "POST", "/v1/locations", editorID, `{"name":"Nowhere","state_id":"s1","city_id":"ct3"}`)
	if code != 400 {
		t.Errorf("expected 400 for city outside state, got %d", code)
	}
}

// ---- Documents ----

func TestProductLifecycle(t *testing.T) {
	fx := newFixture(t)

	code, body := fx.do(t, "POST", "/v1/products", adminID, `{"name":"Old town tour","pricing":{"price":10}}`)
	if code != 201 {
		t.Fatalf("expected 201, got %d: %v", code, body)
	}
	id := body["data"].(map[string]any)["id"].(string)

	code, body = fx.do(t, "PATCH", "/v1/products/"+id+"/fields", adminID,
		`{"ops":[{"path":"pricing.sale_price","value":"8","numeric":true},{"path":"media.images[1]","value":"b.jpg"}]}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d: %v", code, body)
	}
	data := body["data"].(map[string]any)["data"].(map[string]any)
	if data["pricing"].(map[string]any)["sale_price"] != 8.0 {
		t.Errorf("expected numeric sale price, got %v", data["pricing"])
	}
	images := data["media"].(map[string]any)["images"].([]any)
	if len(images) != 2 || images[0] != nil || images[1] != "b.jpg" {
		t.Errorf("expected sequence grown with a hole, got %v", images)
	}

	code, body = fx.do(t, "PATCH", "/v1/products/"+id+"/fields", adminID,
		`{"fields":{"pricing.sale_price":20}}`)
	if code != 400 {
		t.Errorf("expected 400 when sale price exceeds price, got %d", code)
	}

	_, body = fx.do(t, "GET", "/v1/products/"+id+"/fields", adminID, "")
	fields := body["data"].(map[string]any)
	if fields["pricing.sale_price"] != 8.0 || fields["name"] != "Old town tour" {
		t.Errorf("unexpected flattened fields: %v", fields)
	}

	code, _ = fx.do(t, "DELETE", "/v1/products/"+id, adminID, "")
	if code != 200 {
		t.Errorf("expected 200, got %d", code)
	}
	code, _ = fx.do(t, "GET", "/v1/products/"+id, adminID, "")
	if code != 404 {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

func TestCreateDocument_Invalid(t *testing.T) {
	fx := newFixture(t)
	code, body := fx.do(t, "POST", "/v1/contacts", adminID, `{"name":"Ann","email":"nope","message":"hi"}`)
	if code != 400 || body["code"] != "bad_request" {
		t.Errorf("expected 400 bad_request, got %d %v", code, body)
	}
}

func TestPatchFields_Empty(t *testing.T) {
	fx := newFixture(t, domain.Document{ID: "a1", Collection: domain.CollectionAuthors, Data: map[string]any{"name": "Ann"}})
	code, _ := fx.do(t, "PATCH", "/v1/authors/a1/fields", adminID, `{"ops":[]}`)
	if code != 400 {
		t.Errorf("expected 400 for no ops, got %d", code)
	}
}

func TestListDocuments_Pagination(t *testing.T) {
	fx := newFixture(t,
		domain.Document{ID: "f1", Collection: domain.CollectionFAQs, Data: map[string]any{"question": "a", "answer": "b"}},
		domain.Document{ID: "f2", Collection: domain.CollectionFAQs, Data: map[string]any{"question": "a", "answer": "b"}},
		domain.Document{ID: "f3", Collection: domain.CollectionFAQs, Data: map[string]any{"question": "a", "answer": "b"}},
	)

	req := httptest.NewRequest("GET", "/v1/faqs?limit=2&category=general", nil)
	req.Header.Set(handler.HeaderAdminUser, adminID)
	resp, err := fx.app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, "category=general") {
		t.Errorf("unexpected Link header: %s", link)
	}

	var body struct {
		Data       []domain.Document  `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 || body.Pagination.Total != 3 {
		t.Errorf("unexpected page: %d items, total %d", len(body.Data), body.Pagination.Total)
	}
}

// ---- SEO ----

func TestSEOFieldAndAudit(t *testing.T) {
	fx := newFixture(t, domain.Document{
		ID: "home", Collection: domain.CollectionSEO,
		Data: map[string]any{
			"page":      "home",
			"openGraph": map[string]any{"title": "Welcome"},
		},
	})

	_, body := fx.do(t, "GET", "/v1/seo/home/field?path=openGraph.title", adminID, "")
	data := body["data"].(map[string]any)
	if data["value"] != "Welcome" || data["exists"] != true {
		t.Errorf("unexpected field: %v", data)
	}

	_, body = fx.do(t, "GET", "/v1/seo/home/field?path=twitter.card", adminID, "")
	if body["data"].(map[string]any)["exists"] != false {
		t.Error("expected missing path to report exists=false")
	}

	code, _ := fx.do(t, "GET", "/v1/seo/home/field", adminID, "")
	if code != 400 {
		t.Errorf("expected 400 without path, got %d", code)
	}

	_, body = fx.do(t, "GET", "/v1/seo/home/audit", adminID, "")
	findings := body["data"].([]any)
	if len(findings) != 1 || findings[0].(map[string]any)["rule"] != "title-missing" {
		t.Errorf("unexpected findings: %v", findings)
	}

	_, body = fx.do(t, "POST", "/v1/seo/audit", adminID, `{"page":"about","title":"About us"}`)
	if len(body["data"].([]any)) != 0 {
		t.Errorf("expected clean draft, got %v", body["data"])
	}

	_, body = fx.do(t, "GET", "/v1/seo/home/fields", adminID, "")
	if body["data"].(map[string]any)["openGraph.title"] != "Welcome" {
		t.Errorf("unexpected fields: %v", body["data"])
	}
}

// ---- Users ----

func TestSaveUser_Conflict(t *testing.T) {
	fx := newFixture(t)
	code, body := fx.do(t, "POST", "/v1/users", adminID, `{"name":"Dup","email":"Editor@Example.com"}`)
	if code != 409 || body["code"] != "conflict" {
		t.Errorf("expected 409 conflict, got %d %v", code, body)
	}
}

// ---- GraphQL ----

func TestGraphQL_Cascade(t *testing.T) {
	fx := newFixture(t)
	query := `{"query":"{ countries { id name } cascade(event: \"state\", state_id: \"s1\") { selection { country_name state_name } cities { name } } }"}`

	code, body := fx.do(t, "POST", "/graphql", editorID, query)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if errs, ok := body["errors"]; ok {
		t.Fatalf("unexpected errors: %v", errs)
	}
	data := body["data"].(map[string]any)
	if len(data["countries"].([]any)) != 2 {
		t.Errorf("expected 2 countries, got %v", data["countries"])
	}
	cascade := data["cascade"].(map[string]any)
	sel := cascade["selection"].(map[string]any)
	if sel["country_name"] != "India" || sel["state_name"] != "Gujarat" {
		t.Errorf("unexpected selection: %v", sel)
	}
	if cities := cascade["cities"].([]any); len(cities) != 1 {
		t.Errorf("expected Ahmedabad only, got %v", cities)
	}
}
