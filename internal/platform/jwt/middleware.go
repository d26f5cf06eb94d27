package jwtmw

import (
	"github.com/gin-gonic/gin"
)

const (
	// ContextSessionID holds the session ID of a verified cookie.
	ContextSessionID = "sessionID"
	// ContextUserID holds the user ID claimed by a verified cookie.
	ContextUserID = "userID"
)

// SessionCookie verifies the named cookie and exposes its claims on the context.
// Requests without a valid cookie pass through untouched; a bad cookie is cleared.
func SessionCookie(codec *Codec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := codec.ParseToken(raw)
		if err != nil {
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
			c.Next()
			return
		}

		c.Set(ContextSessionID, claims.SessionID)
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// SessionID returns the session ID set by SessionCookie.
func SessionID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextSessionID)
	return id, id != ""
}
