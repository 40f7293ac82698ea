package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/redis"
)

// EventPublisher emits domain events once a mutation has committed
type EventPublisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Locker runs fn while holding a named lock shared across instances
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// SessionStore keeps server-side sessions for clients that sign in with useSession
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// localLocker is used when no shared lock backend is configured
type localLocker struct{}

func (localLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// publish is best effort: the mutation already committed
func publish(ctx context.Context, pub EventPublisher, subject string, v any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, v); err != nil {
		logger.Warn(ctx, "Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
