package web

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/srdpartners/site/pkg/cl/logger"
)

const (
	staticAssetsPath = "static"
	staticURLPrefix  = "/static"
)

// FileServer serves the static assets (css, js, images) under /static.
type FileServer struct {
	assetsFS  fs.FS
	immutable bool
	log       logger.Logger
}

// NewFileServer serves assetsFS/static. With immutable set, responses are
// marked cacheable for a day.
func NewFileServer(assetsFS fs.FS, immutable bool, log logger.Logger) *FileServer {
	return &FileServer{
		assetsFS:  assetsFS,
		immutable: immutable,
		log:       log,
	}
}

func (s *FileServer) RegisterRoutes(r chi.Router) {
	s.log.Infof("Registering file server: %s -> %s", staticURLPrefix, staticAssetsPath)

	staticFS, err := fs.Sub(s.assetsFS, staticAssetsPath)
	if err != nil {
		s.log.Errorf("Error creating static files sub-filesystem: %v", err)
		return
	}

	handler := http.StripPrefix(staticURLPrefix+"/", s.cacheControl(noListing(http.FileServer(http.FS(staticFS)))))
	r.Handle(staticURLPrefix+"/*", handler)
}

func (s *FileServer) cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.immutable {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}

// noListing hides directory indexes.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
