package site

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ironsheep/portfolio/internal/content"
)

// postDetail is a post with its body rendered to HTML.
type postDetail struct {
	content.Post
	HTML string `json:"html"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Library().Posts(r.URL.Query().Get("category")))
}

func (s *Server) handlePostCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Library().PostCategories())
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.content.Library().Post(chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postDetail{Post: p, HTML: s.renderer.RenderDocument(p.Content)})
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Library().Projects())
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.content.Library().Project(chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Library().Timeline())
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Library().Tools(r.URL.Query().Get("category")))
}

func (s *Server) handleToolCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Library().ToolCategories())
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	t, err := s.content.Library().Tool(chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func writeContentError(w http.ResponseWriter, err error) {
	if errors.Is(err, content.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

// handleAsset serves a file from the content tree's assets directory,
// marked for inline display.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("assets/" + chi.URLParam(r, "*"))
	if !strings.HasPrefix(name, "assets/") || !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	data, err := fs.ReadFile(s.content.FS(), name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", "inline")
	w.Write(data)
}
