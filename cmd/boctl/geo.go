package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/backoffice/internal/adapters/postgres"
	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/usecases"
	"github.com/samirrijal/backoffice/internal/pkg/config"
	"github.com/samirrijal/backoffice/internal/workflows"
)

var errOrphans = errors.New("seed has orphaned rows")

func newGeoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Validate and import geography seed files",
	}
	cmd.AddCommand(newGeoCheckCmd(), newGeoImportCmd())
	return cmd
}

func newGeoCheckCmd() *cobra.Command {
	var withDB bool
	cmd := &cobra.Command{
		Use:   "check SEED",
		Short: "Report seed rows whose parent country or state cannot be resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := workflows.LoadSeed(args[0])
			if err != nil {
				return err
			}

			var existing *domain.GeoSnapshot
			if withDB {
				existing, err = loadSnapshot(cmd.Context())
				if err != nil {
					return err
				}
			}

			orphans := workflows.CheckSeed(seed, existing)
			printOrphans(cmd.OutOrStdout(), orphans)
			if len(orphans) > 0 {
				return errOrphans
			}
			fmt.Fprintln(cmd.OutOrStdout(), text.FgGreen.Sprintf("%s: %d countries, %d states, %d cities OK",
				args[0], len(seed.Countries), len(seed.States), len(seed.Cities)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&withDB, "db", false, "Resolve parents against the configured database as well")
	return cmd
}

func newGeoImportCmd() *cobra.Command {
	var (
		actor string
		wait  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import SEED",
		Short: "Start a geography import workflow and wait for its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := workflows.LoadSeed(args[0])
			if err != nil {
				return err
			}
			if orphans := workflows.CheckSeed(seed, nil); len(orphans) > 0 {
				// Parents may already exist in the database; the workflow decides.
				fmt.Fprintln(cmd.ErrOrStderr(), text.FgYellow.Sprintf("%d rows need existing parents", len(orphans)))
			}

			cfg, err := config.Load("boctl")
			if err != nil {
				return err
			}
			c, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort, Namespace: cfg.Temporal.Namespace})
			if err != nil {
				return fmt.Errorf("temporal client: %w", err)
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()

			run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:        "geo-import-" + uuid.NewString(),
				TaskQueue: cfg.Temporal.TaskQueue,
			}, workflows.GeoImportWorkflow, workflows.GeoImportInput{Seed: *seed, Actor: actor})
			if err != nil {
				return fmt.Errorf("start import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s (run %s)\n", run.GetID(), run.GetRunID())

			var res workflows.GeoImportResult
			if err := run.Get(ctx, &res); err != nil {
				return fmt.Errorf("import %s: %w", run.GetID(), err)
			}
			printOrphans(cmd.OutOrStdout(), res.Orphans)
			fmt.Fprintln(cmd.OutOrStdout(), text.FgGreen.Sprintf("imported %d countries, %d states, %d cities",
				res.Countries, res.States, res.Cities))
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "boctl", "User id recorded as the author of the import")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Minute, "How long to wait for the workflow to finish")
	return cmd
}

func loadSnapshot(ctx context.Context) (*domain.GeoSnapshot, error) {
	cfg, err := config.Load("boctl")
	if err != nil {
		return nil, err
	}
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	geo := usecases.NewGeoService(postgres.NewCountryRepo(db), postgres.NewStateRepo(db), postgres.NewCityRepo(db), nil, nil, 0)
	return geo.Snapshot(ctx)
}

func printOrphans(w io.Writer, orphans []workflows.Orphan) {
	if len(orphans) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "ID", "Name", "Reason"})
	for _, o := range orphans {
		t.AppendRow(table.Row{o.Kind, o.ID, o.Name, text.FgRed.Sprint(o.Reason)})
	}
	t.Render()
}
