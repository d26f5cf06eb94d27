// Package adapters provides gorm-backed repositories for the auth feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/usecase"
)

// SessionRow is one login in the sessions table. RevokedAt stays nil until logout.
type SessionRow struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"index;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"`
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

func (SessionRow) TableName() string { return "sessions" }

// SessionRow mirrors entity.Session field for field, so the two convert directly.
func (r *SessionRow) toEntity() *entity.Session {
	s := entity.Session(*r)
	return &s
}

func sessionRowFrom(s *entity.Session) *SessionRow {
	row := SessionRow(*s)
	return &row
}

// sessionGorm stores login sessions in the sessions table.
type sessionGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm creates a session repository backed by db.
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db, now: time.Now}
}

// active scopes a query to sessions of userID that are neither revoked nor expired.
func (r *sessionGorm) active(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now())
	}
}

func (r *sessionGorm) Create(ctx context.Context, session *entity.Session) error {
	return r.db.WithContext(ctx).Create(sessionRowFrom(session)).Error
}

func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.toEntity(), nil
}

// activeSessions returns the user's active sessions, oldest first.
func (r *sessionGorm) activeSessions(ctx context.Context, userID uint) ([]*entity.Session, error) {
	var models []SessionRow
	if err := r.db.WithContext(ctx).
		Scopes(r.active(userID)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entity.Session, len(models))
	for i := range models {
		sessions[i] = models[i].toEntity()
	}
	return sessions, nil
}

func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&SessionRow{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Revoking twice is not an error; only an unknown ID is.
		var count int64
		if err := r.db.WithContext(ctx).Model(&SessionRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return usecase.ErrSessionNotFound
		}
	}
	return nil
}

func (r *sessionGorm) RevokeAll(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&SessionRow{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now()).Error
}

// DeleteExpired purges sessions that can never be used again: expired or revoked.
func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", r.now()).
		Delete(&SessionRow{})
	return result.RowsAffected, result.Error
}

func (r *sessionGorm) CountActive(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SessionRow{}).
		Scopes(r.active(userID)).
		Count(&count).Error
	return count, err
}

func (r *sessionGorm) EvictOldest(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldest SessionRow
		err := tx.Scopes(r.active(userID)).Order("created_at ASC").First(&oldest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Delete(&SessionRow{}, "id = ?", oldest.ID).Error
	})
}
