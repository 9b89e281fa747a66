package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fakePool struct{}

func (fakePool) AcquiredConns() int32     { return 2 }
func (fakePool) IdleConns() int32         { return 3 }
func (fakePool) TotalConns() int32        { return 5 }
func (fakePool) EmptyAcquireCount() int64 { return 7 }

func TestHandler_ExposesDomainMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakePool{})
	PathPatchesApplied.WithLabelValues("seo").Inc()

	app := fiber.New()
	app.Use(Middleware())
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	out := string(body)

	for _, want := range []string{
		"backoffice_db_pool_conns_open 5",
		"backoffice_db_pool_empty_acquires 7",
		`backoffice_content_path_patches_applied_total{collection="seo"}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}
