// Package web holds the server-rendered page plumbing shared by every feature:
// templates, flash messages, CSRF protection, the current viewer and error pages.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const layoutFile = "layout.html"

// Renderer is a gin HTMLRender that pairs every page template with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// Funcs are the helpers available in every template.
var Funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"mul": func(d decimal.Decimal, q int) decimal.Decimal {
		return d.Mul(decimal.NewFromInt(int64(q)))
	},
	"dict": dict,
}

// dict builds a map from alternating keys and values, for passing several values to a partial.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// NewRenderer parses layout.html, partials/*.html and every other .html file in fsys.
// Pages are addressed by their slash path relative to fsys, e.g. "shop/index.html".
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	partials, err := fs.Glob(fsys, "partials/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" || p == layoutFile || strings.HasPrefix(p, "partials/") {
			return nil
		}
		files := append([]string{layoutFile}, partials...)
		files = append(files, p)
		t, err := template.New(layoutFile).Funcs(Funcs).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		zap.S().Errorw("unknown template", "name", name)
		return missingTemplate(name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Has reports whether a page was loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

type missingTemplate string

func (m missingTemplate) Render(w http.ResponseWriter) error {
	return fmt.Errorf("template %q not found", string(m))
}

func (missingTemplate) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}
