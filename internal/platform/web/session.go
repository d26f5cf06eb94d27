package web

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const sessionContextKey = "web.session"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// NewCookieStore returns the signed cookie store carrying flash messages and the CSRF token.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.MaxAge = 0
	return store
}

// Sessions loads the named gorilla session onto the gin context.
// A cookie that fails to decode is replaced by a fresh session.
func Sessions(store sessions.Store, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, name)
		if err != nil {
			zap.S().Debugw("discarding undecodable session cookie", "error", err)
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func session(c *gin.Context) *sessions.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*sessions.Session)
	return sess
}

func saveSession(c *gin.Context, sess *sessions.Session) {
	if err := sess.Save(c.Request, c.Writer); err != nil {
		zap.S().Warnw("failed to save session cookie", "error", err)
	}
}

// AddFlash queues a message of kind for the next rendered page.
func AddFlash(c *gin.Context, kind, msg string) {
	sess := session(c)
	if sess == nil {
		return
	}
	sess.AddFlash(msg, kind)
	saveSession(c, sess)
}

// Flash pops the first queued message of kind, or "" when none.
func Flash(c *gin.Context, kind string) string {
	msgs := popFlashes(c, kind)
	return msgs[kind]
}

// popFlashes pops the first message of each kind and saves the session once.
func popFlashes(c *gin.Context, kinds ...string) map[string]string {
	out := make(map[string]string, len(kinds))
	sess := session(c)
	if sess == nil {
		return out
	}
	popped := false
	for _, kind := range kinds {
		flashes := sess.Flashes(kind)
		if len(flashes) == 0 {
			continue
		}
		popped = true
		if msg, ok := flashes[0].(string); ok {
			out[kind] = msg
		}
	}
	if popped {
		saveSession(c, sess)
	}
	return out
}
