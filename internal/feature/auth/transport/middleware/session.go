// Package middleware attaches the logged-in user to requests and gates routes on it.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/usecase"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/web"
)

// Authenticator resolves a session ID to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*entity.User, error)
}

// LoadUser sets the web viewer when the request carries a live session.
// Must run after jwtmw.SessionCookie. A dead session's cookie is cleared.
func LoadUser(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := jwtmw.SessionID(c)
		if !ok {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), sid)
		switch {
		case err == nil:
			web.SetViewer(c, web.Viewer{ID: user.ID, Name: user.Name, Email: user.Email})
		case errors.Is(err, usecase.ErrSessionNotFound),
			errors.Is(err, usecase.ErrSessionRevoked),
			errors.Is(err, usecase.ErrSessionExpired),
			errors.Is(err, usecase.ErrUserNotFound):
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
		default:
			zap.S().Errorw("failed to load session user", "error", err, "remote_addr", c.ClientIP())
		}
		c.Next()
	}
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := web.CurrentViewer(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GuestOnly sends logged-in users away from the login, signup and reset pages.
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := web.CurrentViewer(c); ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
