package ports

import (
	"context"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// FramePublisher receives every frame an engine emits.
// Implementations must not block the caller.
type FramePublisher interface {
	PublishFrame(ctx context.Context, f *domain.Frame) error
}

// EventPublisher publishes session lifecycle events to a message broker.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
