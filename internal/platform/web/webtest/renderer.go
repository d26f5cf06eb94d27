// Package webtest provides a template-free renderer for handler tests.
package webtest

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// Renderer records the last page rendered and writes its name as the body.
type Renderer struct {
	mu   sync.Mutex
	Name string
	Data gin.H
}

var _ render.HTMLRender = (*Renderer)(nil)

func (r *Renderer) Instance(name string, data any) render.Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Name = name
	r.Data, _ = data.(gin.H)
	return page{name: name}
}

// Last returns the most recent page name and data.
func (r *Renderer) Last() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Name, r.Data
}

type page struct{ name string }

func (p page) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	_, err := fmt.Fprintf(w, "page:%s", p.name)
	return err
}

func (page) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}
