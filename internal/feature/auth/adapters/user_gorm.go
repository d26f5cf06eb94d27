package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/usecase"
)

// pgUniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

// userGorm persists users through gorm.
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm returns a user repository backed by db.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isDuplicateKey reports whether err is a unique violation, either already translated by gorm
// or surfaced raw by the Postgres driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create inserts u. A duplicate email yields usecase.ErrEmailAlreadyExists.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// Update saves every column of u.
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByResetTokenHash returns the user with a pending reset whose digest is hash.
func (r *userGorm) FindByResetTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	if hash == "" {
		return nil, usecase.ErrUserNotFound
	}
	return r.first(ctx, "reset_token_hash = ?", hash)
}

// ConsumeResetToken only matches while the token is still pending, so of two
// concurrent redemptions at most one changes the row.
func (r *userGorm) ConsumeResetToken(ctx context.Context, userID uint, hash, passwordHash string, now time.Time) error {
	if hash == "" {
		return usecase.ErrInvalidResetToken
	}
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ? AND reset_token_hash = ? AND reset_token_expires_at > ?", userID, hash, now).
		Updates(map[string]any{
			"password":               passwordHash,
			"reset_token_hash":       "",
			"reset_token_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrInvalidResetToken
	}
	return nil
}

func (r *userGorm) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
