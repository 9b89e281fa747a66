package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/backoffice/internal/adapters/postgres"
	"github.com/samirrijal/backoffice/internal/adapters/valkey"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/core/usecases"
	"github.com/samirrijal/backoffice/internal/pkg/config"
	"github.com/samirrijal/backoffice/internal/pkg/logging"
	"github.com/samirrijal/backoffice/internal/workflows"
)

func main() {
	cfg, err := config.Load("backoffice-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("backoffice-importer", cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "backoffice"); err != nil {
		slog.Warn("valkey unavailable, snapshot eviction skipped", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	countries := postgres.NewCountryRepo(db)
	states := postgres.NewStateRepo(db)
	cities := postgres.NewCityRepo(db)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.GeoImportWorkflow)
	w.RegisterActivity(&workflows.GeoImportActivities{
		// Events are not published for bulk loads; the workflow evicts caches once at the end.
		Geo:       usecases.NewGeoService(countries, states, cities, cache, nil, cfg.Cache.GeoTTL),
		Countries: countries,
		States:    states,
		Cities:    cities,
	})

	slog.Info("geo import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
