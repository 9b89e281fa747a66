package ports

import (
	"context"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// EventPublisher publishes change events to a message broker.
type EventPublisher interface {
	PublishChange(ctx context.Context, event *domain.ChangeEvent) error
}

// EventSubscriber subscribes to change events from a message broker.
type EventSubscriber interface {
	SubscribeChanges(ctx context.Context, durable string, handler func(ctx context.Context, event *domain.ChangeEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PermissionProvider resolves what a caller may do.
type PermissionProvider interface {
	Permissions(ctx context.Context, userID string) (domain.Permissions, error)
}
