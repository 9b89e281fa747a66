package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/backoffice/internal/adapters/nats"
	"github.com/samirrijal/backoffice/internal/adapters/valkey"
	"github.com/samirrijal/backoffice/internal/core/usecases"
	"github.com/samirrijal/backoffice/internal/pkg/config"
	"github.com/samirrijal/backoffice/internal/pkg/logging"
)

// invalidator consumes change events and evicts cached geography snapshots
// and permission maps.
func main() {
	cfg, err := config.Load("backoffice-invalidator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("backoffice-invalidator", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := valkey.New(cfg.Valkey.Addr, "backoffice")
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	nc, err := natsadapter.Connect(cfg.NATS.URL, "backoffice-invalidator")
	if err != nil {
		log.Fatalf("nats: %v", err)
	}

	// Ensures the stream exists before the durable consumer binds to it.
	if _, err := natsadapter.NewPublisher(nc, cfg.NATS.Stream); err != nil {
		log.Fatalf("ensure stream: %v", err)
	}

	sub, err := natsadapter.NewSubscriber(nc)
	if err != nil {
		log.Fatalf("subscriber: %v", err)
	}
	defer sub.Close()

	inv := usecases.NewCacheInvalidator(cache)
	if err := sub.SubscribeChanges(ctx, "cache-invalidator", inv.Handle); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("cache invalidator started", "stream", cfg.NATS.Stream)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("received signal, shutting down invalidator", "signal", sig.String())
}
