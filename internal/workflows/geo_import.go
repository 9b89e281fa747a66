package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// GeoImportInput is the input for GeoImportWorkflow.
type GeoImportInput struct {
	Seed  GeoSeed `json:"seed"`
	Actor string  `json:"actor"`
}

// GeoImportResult summarises a finished import.
type GeoImportResult struct {
	Countries int      `json:"countries"`
	States    int      `json:"states"`
	Cities    int      `json:"cities"`
	Orphans   []Orphan `json:"orphans,omitempty"`
	// CachesEvicted is false when the rows were written but the cached
	// snapshot could not be evicted; it then expires on its TTL.
	CachesEvicted bool `json:"caches_evicted"`
}

// ErrOrphanedRows is the application error type returned when a seed has orphans.
const ErrOrphanedRows = "OrphanedRows"

// GeoImportWorkflow loads a geography seed: countries, then states, then
// cities. A seed with orphaned rows is rejected before anything is written.
// If a later step fails, rows created by earlier steps are deleted again
// (saga compensation).
func GeoImportWorkflow(ctx workflow.Context, input GeoImportInput) (GeoImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting geo import", "actor", input.Actor,
		"countries", len(input.Seed.Countries), "states", len(input.Seed.States), "cities", len(input.Seed.Cities))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var result GeoImportResult
	var plan ImportPlan
	if err := workflow.ExecuteActivity(ctx, "PlanImport", input.Seed).Get(ctx, &plan); err != nil {
		return result, err
	}
	if len(plan.Orphans) > 0 {
		result.Orphans = plan.Orphans
		return result, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("seed has %d orphaned rows", len(plan.Orphans)), ErrOrphanedRows, nil, plan.Orphans)
	}

	var compensations []func()
	rollback := func() {
		for i := len(compensations) - 1; i >= 0; i-- {
			compensations[i]()
		}
	}
	undo := func(kind string, ids []string) func() {
		return func() {
			if len(ids) == 0 {
				return
			}
			dctx, _ := workflow.NewDisconnectedContext(ctx)
			if err := workflow.ExecuteActivity(dctx, "DeleteRows", kind, ids).Get(dctx, nil); err != nil {
				logger.Error("rollback failed", "kind", kind, "error", err)
			}
		}
	}

	compensations = append(compensations, undo(domain.CollectionCountries, plan.NewCountries))
	if err := workflow.ExecuteActivity(ctx, "UpsertCountries", input.Seed.Countries).Get(ctx, &result.Countries); err != nil {
		logger.Warn("country import failed, compensating", "error", err)
		rollback()
		return result, err
	}

	compensations = append(compensations, undo(domain.CollectionStates, plan.NewStates))
	if err := workflow.ExecuteActivity(ctx, "UpsertStates", input.Seed.States).Get(ctx, &result.States); err != nil {
		logger.Warn("state import failed, compensating", "error", err)
		rollback()
		return result, err
	}

	compensations = append(compensations, undo(domain.CollectionCities, plan.NewCities))
	if err := workflow.ExecuteActivity(ctx, "UpsertCities", input.Seed.Cities, input.Seed.States).Get(ctx, &result.Cities); err != nil {
		logger.Warn("city import failed, compensating", "error", err)
		rollback()
		return result, err
	}

	if err := workflow.ExecuteActivity(ctx, "InvalidateGeo").Get(ctx, nil); err != nil {
		logger.Warn("geo cache eviction failed, snapshot expires on its TTL", "error", err)
	} else {
		result.CachesEvicted = true
	}

	logger.Info("Geo import finished", "countries", result.Countries, "states", result.States, "cities", result.Cities)
	return result, nil
}
