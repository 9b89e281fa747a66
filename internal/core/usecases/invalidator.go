package usecases

import (
	"context"
	"log/slog"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
)

// CacheInvalidator evicts cached read models when change events arrive from
// another process.
type CacheInvalidator struct {
	cache ports.CacheService
}

// NewCacheInvalidator creates a new CacheInvalidator.
func NewCacheInvalidator(cache ports.CacheService) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// Handle evicts the keys affected by ev. Collections without cached read
// models are ignored.
func (i *CacheInvalidator) Handle(ctx context.Context, ev *domain.ChangeEvent) error {
	var key string
	switch ev.Collection {
	case domain.CollectionCountries, domain.CollectionStates, domain.CollectionCities:
		key = GeoSnapshotKey
	case domain.CollectionUsers:
		key = PermissionKey(ev.ID)
	default:
		return nil
	}
	if err := i.cache.Delete(ctx, key); err != nil {
		return err
	}
	slog.DebugContext(ctx, "cache evicted", "key", key, "collection", ev.Collection, "action", ev.Action)
	return nil
}
