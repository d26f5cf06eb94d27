package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "storefront/internal/feature/auth/adapters"
	"storefront/internal/feature/auth/usecase"
	"storefront/internal/platform/session"
)

// NewSessionRepository returns the Redis-backed repository when Redis is up, the SQL one otherwise.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionGorm(db)
}
