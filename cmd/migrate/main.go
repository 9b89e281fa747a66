package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/backoffice/internal/pkg/config"
	"github.com/samirrijal/backoffice/internal/pkg/logging"
)

var files = []string{
	"migrations/001_init.sql",
	"migrations/002_core_tables.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|status>")
	}

	cfg, err := config.Load("backoffice-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("backoffice-migrate", cfg.Log.Level, "text")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		if err := up(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	case "status":
		applied, err := appliedSet(ctx, pool)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		for _, f := range files {
			state := "pending"
			if applied[filepath.Base(f)] {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, f)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// up applies every file not yet recorded in schema_migrations. The first
// file creates that table, so it is always safe to re-run.
func up(ctx context.Context, pool *pgxpool.Pool) error {
	applied, err := appliedSet(ctx, pool)
	if err != nil {
		return err
	}

	for _, f := range files {
		name := filepath.Base(f)
		if applied[name] {
			slog.Debug("skip applied migration", "file", name)
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("exec %s: %w", f, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING`, name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		slog.Info("migration applied", "file", name)
	}

	slog.Info("all migrations applied")
	return nil
}

// appliedSet returns recorded migration names; a missing table means none.
func appliedSet(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	out := map[string]bool{}
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT to_regclass('schema_migrations') IS NOT NULL`).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check schema_migrations: %w", err)
	}
	if !exists {
		return out, nil
	}

	rows, err := pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}
