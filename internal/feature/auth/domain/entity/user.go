// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered shopper. Every user may also list products for sale.
type User struct {
	ID uint `gorm:"primaryKey"`

	// Name is the display name shown in the navigation bar and on invoices.
	Name string `gorm:"size:255;not null"`

	// Email is unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash, never the plaintext.
	Password string `gorm:"size:255;not null"`

	// ResetTokenHash is the SHA-256 hex digest of the outstanding password reset token.
	ResetTokenHash string `gorm:"index;size:64"`

	// ResetTokenExpiresAt is nil when no reset is pending.
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasValidResetToken reports whether hash matches the pending reset token and it has not expired.
func (u *User) HasValidResetToken(hash string, now time.Time) bool {
	if u.ResetTokenHash == "" || u.ResetTokenExpiresAt == nil {
		return false
	}
	return u.ResetTokenHash == hash && now.Before(*u.ResetTokenExpiresAt)
}

// SetResetToken records a pending reset token digest.
func (u *User) SetResetToken(hash string, expiresAt time.Time) {
	u.ResetTokenHash = hash
	u.ResetTokenExpiresAt = &expiresAt
}

// ClearResetToken makes any pending reset token unusable.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
}
