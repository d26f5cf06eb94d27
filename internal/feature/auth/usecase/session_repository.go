package usecase

import (
	"context"

	"storefront/internal/feature/auth/domain/entity"
)

// SessionRepository stores login sessions. Both the Redis and the SQL store satisfy it.
// FindByID returns ErrSessionNotFound for unknown IDs, and so does Revoke.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, id string) (*entity.Session, error)
	Revoke(ctx context.Context, id string) error
	// RevokeAll logs the user out everywhere, e.g. after a password reset.
	RevokeAll(ctx context.Context, userID uint) error

	// CountActive and EvictOldest enforce the per-user session cap on login.
	CountActive(ctx context.Context, userID uint) (int64, error)
	EvictOldest(ctx context.Context, userID uint) error

	// DeleteExpired purges sessions that can no longer be used and reports how many went.
	DeleteExpired(ctx context.Context) (int64, error)
}
