package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
)

type actorKey struct{}

// WithActor attaches the id of the user performing a change.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the id set by WithActor, or "".
func ActorFromContext(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

// publishChange is best-effort: the write already succeeded.
func publishChange(ctx context.Context, pub ports.EventPublisher, collection, id, action string) {
	if pub == nil {
		return
	}
	ev := &domain.ChangeEvent{
		Collection: collection,
		ID:         id,
		Action:     action,
		Actor:      ActorFromContext(ctx),
		Time:       time.Now().UTC(),
	}
	if err := pub.PublishChange(ctx, ev); err != nil {
		metrics.ChangeEventsFailed.WithLabelValues(collection).Inc()
		slog.WarnContext(ctx, "publish change event", "collection", collection, "id", id, "error", err)
		return
	}
	metrics.ChangeEventsPublished.WithLabelValues(collection, action).Inc()
}
