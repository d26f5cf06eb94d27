package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const viewerContextKey = "web.viewer"

var errMissingSession = errors.New("web: Sessions middleware not installed")

// Viewer is the logged-in user as seen by templates.
type Viewer struct {
	ID    uint
	Name  string
	Email string
}

// SetViewer records the authenticated user for the rest of the request.
func SetViewer(c *gin.Context, v Viewer) {
	c.Set(viewerContextKey, v)
}

// CurrentViewer returns the authenticated user, if any.
func CurrentViewer(c *gin.Context) (Viewer, bool) {
	v, ok := c.Get(viewerContextKey)
	if !ok {
		return Viewer{}, false
	}
	viewer, ok := v.(Viewer)
	return viewer, ok
}

// Render writes the named page with the data every page expects merged in:
// isAuthenticated, currentUser, csrfToken, path and pending flash messages.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	viewer, loggedIn := CurrentViewer(c)
	data["isAuthenticated"] = loggedIn
	if loggedIn {
		data["currentUser"] = viewer
	}
	data["csrfToken"] = CSRFToken(c)
	if _, ok := data["path"]; !ok {
		data["path"] = c.Request.URL.Path
	}
	flashes := popFlashes(c, FlashError, FlashSuccess)
	if _, ok := data["errorMessage"]; !ok && flashes[FlashError] != "" {
		data["errorMessage"] = flashes[FlashError]
	}
	if msg := flashes[FlashSuccess]; msg != "" {
		data["successMessage"] = msg
	}
	c.HTML(status, name, data)
}

// RenderError writes the generic error page with status.
func RenderError(c *gin.Context, status int) {
	name, title := "500.html", "Error!"
	if status == http.StatusNotFound {
		name, title = "404.html", "Page Not Found"
	}
	Render(c, status, name, gin.H{"pageTitle": title, "status": status})
}

// Fail records err for ErrorHandler and stops the chain without writing a response.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the 500 page for requests that ended with Fail.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		zap.S().Errorw("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", c.Errors.Last().Err,
		)
		RenderError(c, http.StatusInternalServerError)
	}
}

// Recovery turns a panic into the 500 page.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		zap.S().Errorw("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		if !c.Writer.Written() {
			RenderError(c, http.StatusInternalServerError)
		}
		c.Abort()
	})
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound)
}

// ServerError renders the 500 page directly.
func ServerError(c *gin.Context) {
	RenderError(c, http.StatusInternalServerError)
}
