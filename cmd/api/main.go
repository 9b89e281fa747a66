package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/backoffice/internal/adapters/http"
	natsadapter "github.com/samirrijal/backoffice/internal/adapters/nats"
	"github.com/samirrijal/backoffice/internal/adapters/postgres"
	"github.com/samirrijal/backoffice/internal/adapters/valkey"
	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/core/usecases"
	"github.com/samirrijal/backoffice/internal/pkg/config"
	"github.com/samirrijal/backoffice/internal/pkg/logging"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
	"github.com/samirrijal/backoffice/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("backoffice-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup("backoffice-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Interfaces stay nil when a backend is down so services skip it.
	var (
		cache       ports.CacheService
		cachePinger http.Pinger
		publisher   ports.EventPublisher
		natsConn    *nats.Conn
	)

	if vc, err := valkey.New(cfg.Valkey.Addr, "backoffice"); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache, cachePinger = vc, vc
	}

	if nc, err := natsadapter.Connect(cfg.NATS.URL, "backoffice-api"); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		natsConn = nc
		if pub, err := natsadapter.NewPublisher(nc, cfg.NATS.Stream); err != nil {
			slog.Warn("change stream unavailable", "error", err)
		} else {
			publisher = pub
		}
		defer nc.Drain()
	}

	docs := postgres.NewDocumentRepo(db)
	users := postgres.NewUserRepo(db)

	geoSvc := usecases.NewGeoService(
		postgres.NewCountryRepo(db),
		postgres.NewStateRepo(db),
		postgres.NewCityRepo(db),
		cache, publisher, cfg.Cache.GeoTTL,
	)

	rules := make([]usecases.AuditRule, 0, len(cfg.SEO.Rules))
	for _, r := range cfg.SEO.Rules {
		rules = append(rules, usecases.AuditRule{Name: r.Name, When: r.When, Severity: r.Severity, Message: r.Message})
	}
	seoSvc, err := usecases.NewSEOService(docs, publisher, rules)
	if err != nil {
		log.Fatalf("seo rules: %v", err)
	}

	deps := &http.Dependencies{
		Geo:            geoSvc,
		Locations:      usecases.NewLocationService(postgres.NewLocationRepo(db), geoSvc, publisher),
		SEO:            seoSvc,
		Products:       usecases.NewContentService[domain.Product](domain.CollectionProducts, docs, publisher),
		Authors:        usecases.NewContentService[domain.Author](domain.CollectionAuthors, docs, publisher),
		FAQs:           usecases.NewContentService[domain.FAQ](domain.CollectionFAQs, docs, publisher),
		Contacts:       usecases.NewContentService[domain.Contact](domain.CollectionContacts, docs, publisher),
		OfficeInfo:     usecases.NewContentService[domain.OfficeInfo](domain.CollectionOfficeInfo, docs, publisher),
		Users:          usecases.NewUserService(users, cache, publisher),
		Permissions:    usecases.NewPermissionService(users, cache, cfg.Cache.PermissionTTL),
		NATS:           natsConn,
		DB:             db,
		Cache:          cachePinger,
		RequestTimeout: cfg.Server.RequestTimeoutDuration(),
		RateLimit:      cfg.Server.RateLimit,
		AllowOrigins:   cfg.Server.AllowOrigins,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    2 * 1024 * 1024,
		AppName:      "Backoffice API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
