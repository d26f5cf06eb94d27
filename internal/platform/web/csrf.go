package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	csrfSessionKey = "csrf"
	// CSRFField is the hidden form field carrying the token.
	CSRFField = "_csrf"
)

// csrfHeaders are accepted for requests sent from scripts.
var csrfHeaders = []string{"X-CSRF-Token", "csrf-token"}

// CSRF keeps a per-browser token in the session and rejects unsafe requests that do not echo it.
// Must run after Sessions.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session(c)
		if sess == nil {
			_ = c.Error(errMissingSession)
			c.Abort()
			return
		}

		token, _ := sess.Values[csrfSessionKey].(string)
		if token == "" {
			token = newCSRFToken()
			sess.Values[csrfSessionKey] = token
			saveSession(c, sess)
		}
		c.Set(csrfSessionKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			c.Next()
			return
		}

		sent := c.PostForm(CSRFField)
		for _, h := range csrfHeaders {
			if sent != "" {
				break
			}
			sent = c.GetHeader(h)
		}
		if subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			zap.S().Warnw("csrf token mismatch", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
			RenderError(c, http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFToken returns the token for the current request.
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfSessionKey)
}

func newCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
