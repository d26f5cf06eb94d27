package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/feature/auth/domain/entity"
)

// dummyHash is compared against when the email is unknown so that both failure paths cost one bcrypt run.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for user entities.
type UserRepository interface {
	// Create returns ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	// FindByResetTokenHash returns ErrUserNotFound when no user holds hash.
	FindByResetTokenHash(ctx context.Context, hash string) (*entity.User, error)
	// ConsumeResetToken sets passwordHash and clears the reset token in one conditional
	// write. It returns ErrInvalidResetToken unless userID still holds hash unexpired at now.
	ConsumeResetToken(ctx context.Context, userID uint, hash, passwordHash string, now time.Time) error
}

// TokenSigner signs the cookie token that carries a session ID.
type TokenSigner interface {
	GenerateToken(sessionID string, userID uint, expiresAt time.Time) (string, error)
}

// MailSender queues an email without waiting for delivery.
type MailSender interface {
	SendAsync(to, subject, html string)
}

// Options tunes sessions, reset links and hashing.
type Options struct {
	SessionTTL         time.Duration
	MaxSessionsPerUser int
	ResetTokenTTL      time.Duration
	// BaseURL prefixes the emailed reset link.
	BaseURL  string
	HashCost int
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 7 * 24 * time.Hour
	}
	if o.MaxSessionsPerUser <= 0 {
		o.MaxSessionsPerUser = 5
	}
	if o.ResetTokenTTL <= 0 {
		o.ResetTokenTTL = time.Hour
	}
	if o.HashCost == 0 {
		o.HashCost = 12
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return o
}

// ClientInfo describes the browser a session is opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// LoginResult is a freshly opened session and the signed token for its cookie.
type LoginResult struct {
	User      *entity.User
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// AuthUsecase implements signup, login sessions and password reset.
type AuthUsecase struct {
	users    UserRepository
	sessions SessionRepository
	mail     MailSender
	tokens   TokenSigner
	opts     Options
	now      func() time.Time
}

func NewAuthUsecase(users UserRepository, sessions SessionRepository, mail MailSender, tokens TokenSigner, opts Options) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
		mail:     mail,
		tokens:   tokens,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// Signup stores a new user with a hashed password and sends a welcome email.
func (u *AuthUsecase) Signup(ctx context.Context, name, email, password string) (*entity.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.opts.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Name: name, Email: email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.mail.SendAsync(email, "Signup Successful!", "<h1>You have signed up successfully!</h1>")
	return user, nil
}

// Login checks the credentials and opens a session, evicting the user's oldest
// sessions once the per-user cap is reached. Any mismatch is ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash := dummyHash
	if user != nil {
		hash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if user == nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	if err := u.enforceSessionLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	id, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	now := u.now()
	session := &entity.Session{
		ID:        id,
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.opts.SessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := u.tokens.GenerateToken(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{User: user, SessionID: session.ID, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (u *AuthUsecase) enforceSessionLimit(ctx context.Context, userID uint) error {
	count, err := u.sessions.CountActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	for ; count >= int64(u.opts.MaxSessionsPerUser); count-- {
		if err := u.sessions.EvictOldest(ctx, userID); err != nil {
			return fmt.Errorf("failed to evict oldest session: %w", err)
		}
	}
	return nil
}

// Logout revokes the session. An unknown session is already logged out.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	err := u.sessions.Revoke(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

// Authenticate returns the owner of a live session.
func (u *AuthUsecase) Authenticate(ctx context.Context, sessionID string) (*entity.User, error) {
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpiredAt(u.now()) {
		return nil, ErrSessionExpired
	}
	return u.users.FindByID(ctx, session.UserID)
}

// RequestPasswordReset emails a one-hour reset link to the account holder.
// An unknown email returns nil without sending anything.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		zap.S().Infow("password reset requested for unknown email", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	token, err := randomHex(32)
	if err != nil {
		return err
	}
	user.SetResetToken(hashToken(token), u.now().Add(u.opts.ResetTokenTTL))
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := u.opts.BaseURL + "/reset/" + token
	u.mail.SendAsync(user.Email, "Password Reset", fmt.Sprintf(
		`<p>You requested a password reset</p><p>Click this <a href="%s">link</a> to set a new password.</p>`, link))
	return nil
}

// VerifyResetToken returns the user a pending, unexpired token belongs to.
func (u *AuthUsecase) VerifyResetToken(ctx context.Context, token string) (*entity.User, error) {
	hash := hashToken(token)
	user, err := u.users.FindByResetTokenHash(ctx, hash)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidResetToken
	}
	if err != nil {
		return nil, err
	}
	if !user.HasValidResetToken(hash, u.now()) {
		return nil, ErrInvalidResetToken
	}
	return user, nil
}

// ResetPassword sets a new password for userID when token is its pending reset token.
// The token is consumed and every open session of the user is revoked.
func (u *AuthUsecase) ResetPassword(ctx context.Context, userID uint, token, password string) error {
	user, err := u.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user.ID != userID {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.opts.HashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.ConsumeResetToken(ctx, user.ID, hashToken(token), string(hashed), u.now()); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return err
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := u.sessions.RevokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
