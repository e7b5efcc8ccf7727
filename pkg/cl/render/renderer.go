package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"

	"github.com/srdpartners/site/pkg/cl/logger"
)

const (
	baseTemplate     = "templates/base.html"
	partialsPattern  = "templates/partials/*.html"
	pageTemplateRoot = "templates/"
)

// Renderer executes a page template inside the base layout.
// Each page is parsed together with base.html and every partial.
type Renderer struct {
	fsys  fs.FS
	funcs template.FuncMap
	cache bool
	log   logger.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewRenderer creates a renderer over fsys. With cache off, templates are
// parsed on every render so edits on disk show up immediately.
func NewRenderer(fsys fs.FS, cache bool, log logger.Logger) *Renderer {
	return &Renderer{
		fsys:  fsys,
		funcs: FuncMap(),
		cache: cache,
		log:   log,
		pages: make(map[string]*template.Template),
	}
}

func (r *Renderer) template(page string) (*template.Template, error) {
	if r.cache {
		r.mu.RLock()
		tmpl, ok := r.pages[page]
		r.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	tmpl, err := template.New("").Funcs(r.funcs).ParseFS(r.fsys, baseTemplate, partialsPattern, pageTemplateRoot+page+".html")
	if err != nil {
		return nil, fmt.Errorf("cannot parse template %s: %w", page, err)
	}

	if r.cache {
		r.mu.Lock()
		r.pages[page] = tmpl
		r.mu.Unlock()
	}
	return tmpl, nil
}

// Render writes page into w. Output is buffered so a failing template
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, err := r.template(page)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return fmt.Errorf("cannot execute template %s: %w", page, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Preload parses pages up front. With caching on, the parsed templates
// are kept for later renders.
func (r *Renderer) Preload(pages ...string) error {
	for _, page := range pages {
		if _, err := r.template(page); err != nil {
			return err
		}
	}
	return nil
}

// HTML renders page as an HTML response with the given status.
func (r *Renderer) HTML(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		r.log.Errorf("Template error for %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
