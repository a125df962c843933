// Package site serves the portfolio over HTTP: the content API, the tool
// APIs and the server-rendered tool pages.
package site

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ironsheep/portfolio/internal/content"
	"github.com/ironsheep/portfolio/internal/imaging"
	"github.com/ironsheep/portfolio/internal/markdown"
	"github.com/ironsheep/portfolio/internal/store"
)

//go:embed static templates
var embedded embed.FS

// ContentSource provides the current content snapshot and the tree it was
// read from.
type ContentSource interface {
	Library() *content.Library
	FS() fs.FS
}

// DocumentStore persists the markdown tool's document.
type DocumentStore interface {
	GetOr(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) (store.Document, error)
	Delete(ctx context.Context, key string) error
}

// Options configures a Server.
type Options struct {
	Content   ContentSource
	Documents DocumentStore
	Logger    *slog.Logger

	// MaxUploadBytes caps image upload bodies. Zero means 10MB.
	MaxUploadBytes int64
}

// Server holds the state shared by every request.
type Server struct {
	content   ContentSource
	documents DocumentStore
	logger    *slog.Logger
	maxUpload int64

	renderer *markdown.Renderer
	rasters  *imaging.RasterStore
	pickers  *pickerSessions
	views    *viewSessions

	pages *template.Template
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	pages, err := template.ParseFS(embedded, "templates/*.html")
	if err != nil {
		return nil, err
	}

	rasters := imaging.NewRasterStore()
	renderer := markdown.NewRenderer()
	return &Server{
		content:   opts.Content,
		documents: opts.Documents,
		logger:    opts.Logger,
		maxUpload: opts.MaxUploadBytes,
		renderer:  renderer,
		rasters:   rasters,
		pickers:   newPickerSessions(rasters, maxPickerSessions),
		views:     newViewSessions(renderer, maxViewSessions),
		pages:     pages,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, world!"})
	})

	r.Route("/api/blog", func(r chi.Router) {
		r.Get("/", s.handleListPosts)
		r.Get("/categories", s.handlePostCategories)
		r.Get("/{id}", s.handleGetPost)
	})
	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Get("/{id}", s.handleGetProject)
	})
	r.Get("/api/timeline", s.handleTimeline)
	r.Route("/api/tools", func(r chi.Router) {
		r.Get("/", s.handleListTools)
		r.Get("/categories", s.handleToolCategories)
		r.Get("/{id}", s.handleGetTool)
	})

	r.Route("/api/color/images", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handlePickerState)
			r.Put("/", s.handleReplace)
			r.Delete("/", s.handleReset)
			r.Get("/sample", s.handleSample)
			r.Post("/select", s.handleSelect)
			r.Get("/loupe", s.handleLoupe)
			r.Get("/palette", s.handlePalette)
		})
	})
	r.Get("/api/color/convert", s.handleConvert)

	r.Route("/api/markdown", func(r chi.Router) {
		r.Get("/document", s.handleGetDocument)
		r.Put("/document", s.handlePutDocument)
		r.Post("/document/reset", s.handleResetDocument)
		r.Post("/render", s.handleRender)
		r.Post("/scroll", s.handleScroll)
	})

	r.Post("/api/json/format", s.handleFormatJSON)

	r.Get("/tools/markdown", s.handleMarkdownPage)
	r.Get("/assets/*", s.handleAsset)

	r.Get("/static/*", http.FileServerFS(embedded).ServeHTTP)
	r.NotFound(s.handleIndex)

	return r
}

// handleIndex serves the site shell for every route the API does not own.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	data, err := fs.ReadFile(embedded, "static/index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}
