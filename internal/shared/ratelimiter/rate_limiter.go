// Package ratelimiter throttles repeated attempts per client in fixed time windows.
package ratelimiter

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/platform/web"
)

// RateLimiter counts attempts per key and refuses them past limit within one interval.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	interval time.Duration
	windows  map[string]*window
	now      func() time.Time
}

type window struct {
	count     int
	lastReset time.Time
}

// NewRateLimiter allows limit attempts per key every interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		windows:  map[string]*window{},
		now:      time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		if !ok && len(rl.windows) >= 1024 {
			rl.prune(now)
		}
		w = &window{lastReset: now}
		rl.windows[key] = w
	}
	w.count++
	return w.count <= rl.limit
}

// prune drops windows that have already expired. Callers hold mu.
func (rl *RateLimiter) prune(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}

// Middleware limits requests per client IP and route. Refused requests are sent back
// to the page they came from with an error flash. Without a same-site Referer they go to
// fallback, or to the request path when fallback is empty.
func (rl *RateLimiter) Middleware(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Allow(c.ClientIP() + " " + c.FullPath()) {
			c.Next()
			return
		}
		zap.S().Warnw("rate limit hit", "path", c.Request.URL.Path, "remote_addr", c.ClientIP(), "limit", rl.limit)
		web.AddFlash(c, web.FlashError, "Too many attempts, please try again later.")
		c.Redirect(http.StatusSeeOther, backTo(c, fallback))
		c.Abort()
	}
}

// backTo returns the local path of the Referer when it points at this host.
func backTo(c *gin.Context, fallback string) string {
	if ref, err := url.Parse(c.GetHeader("Referer")); err == nil && ref.Path != "" &&
		(ref.Host == "" || ref.Host == c.Request.Host) && ref.Path[0] == '/' && !hasSchemeRelative(ref.Path) {
		if ref.RawQuery != "" {
			return ref.Path + "?" + ref.RawQuery
		}
		return ref.Path
	}
	if fallback != "" {
		return fallback
	}
	return c.Request.URL.Path
}

func hasSchemeRelative(path string) bool {
	return len(path) > 1 && (path[1] == '/' || path[1] == '\\')
}
