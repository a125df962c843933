package site

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/ironsheep/portfolio/internal/markdown"
)

const (
	maxDocumentBytes = 4 << 20
	maxViewSessions  = 256
)

// viewer is the server-side state of one open markdown viewer.
type viewer struct {
	sync     *markdown.ScrollSync
	renderer *markdown.Renderer
}

// viewSessions holds one viewer per open page, keyed by a client-chosen
// view id. The oldest view is dropped once the limit is reached.
type viewSessions struct {
	base  *markdown.Renderer
	limit int

	mu      sync.Mutex
	viewers map[string]*viewer
	order   []string
}

func newViewSessions(base *markdown.Renderer, limit int) *viewSessions {
	return &viewSessions{base: base, limit: limit, viewers: make(map[string]*viewer)}
}

func (s *viewSessions) get(view string) *viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.viewers[view]; ok {
		return v
	}
	v := &viewer{sync: markdown.NewScrollSync(), renderer: s.base.Fork()}
	s.viewers[view] = v
	s.order = append(s.order, view)
	for len(s.order) > s.limit {
		delete(s.viewers, s.order[0])
		s.order = s.order[1:]
	}
	return v
}

func (s *viewSessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

type documentRequest struct {
	Content *string `json:"content"`
}

type renderRequest struct {
	View    string  `json:"view"`
	Content *string `json:"content"`
}

type documentResponse struct {
	Content string         `json:"content"`
	Stats   markdown.Stats `json:"stats"`
}

func newDocumentResponse(doc string) documentResponse {
	return documentResponse{Content: doc, Stats: markdown.DocumentStats(doc)}
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.GetOr(r.Context(), markdown.StorageKey, markdown.DefaultDocument)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentResponse(doc))
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(w, r, maxDocumentBytes, &req); err != nil {
		writeError(w, bodyStatus(err), err)
		return
	}
	if req.Content == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("content is required"))
		return
	}
	if _, err := s.documents.Set(r.Context(), markdown.StorageKey, *req.Content); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentResponse(*req.Content))
}

// handleResetDocument drops the stored document so the default is served
// again.
func (s *Server) handleResetDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), markdown.StorageKey); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentResponse(markdown.DefaultDocument))
}

type renderResponse struct {
	markdown.Pass
	Stats markdown.Stats `json:"stats"`
}

// handleRender renders a document block by block. With a view id, the
// view's own renderer reuses the HTML of unchanged blocks from that view's
// previous pass; without one every block is rendered afresh.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, maxDocumentBytes, &req); err != nil {
		writeError(w, bodyStatus(err), err)
		return
	}
	if req.Content == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("content is required"))
		return
	}

	var pass markdown.Pass
	if req.View == "" {
		pass = markdown.Pass{Blocks: s.renderer.RenderBlocks(*req.Content), Changed: true}
	} else {
		pass = s.views.get(req.View).renderer.Render(*req.Content)
	}
	writeJSON(w, http.StatusOK, renderResponse{Pass: pass, Stats: markdown.DocumentStats(*req.Content)})
}

type scrollRequest struct {
	View   string        `json:"view"`
	From   string        `json:"from"` // editor or preview
	Source markdown.Pane `json:"source"`
	Target markdown.Pane `json:"target"`
}

type scrollResponse struct {
	ScrollTop float64 `json:"scrollTop"`
	Propagate bool    `json:"propagate"`
}

// handleScroll answers a scroll event from one pane with the position the
// other pane should take. With a view id, events are run through that
// view's ScrollSync so programmatic echoes are dropped; without one the
// position is computed statelessly.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := decodeJSON(w, r, 4<<10, &req); err != nil {
		writeError(w, bodyStatus(err), err)
		return
	}

	var from markdown.Side
	switch req.From {
	case "editor", "":
		from = markdown.Editor
	case "preview":
		from = markdown.Preview
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown pane %q", req.From))
		return
	}

	var top float64
	var ok bool
	if req.View == "" {
		top, ok = markdown.SyncPosition(req.Source, req.Target)
	} else {
		top, ok = s.views.get(req.View).sync.Scroll(from, req.Source, req.Target)
	}
	writeJSON(w, http.StatusOK, scrollResponse{ScrollTop: top, Propagate: ok})
}

type markdownPage struct {
	Mode       string
	Fullscreen bool
	ToggleURL  string
	ToggleText string
	Content    string
	Preview    template.HTML
	Stats      markdown.Stats
}

// handleMarkdownPage renders the viewer in the mode carried by the URL.
func (s *Server) handleMarkdownPage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.GetOr(r.Context(), markdown.StorageKey, markdown.DefaultDocument)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	mode := markdown.ModeFromURL(r.URL)
	toggleText := "Fullscreen"
	if mode == markdown.Fullscreen {
		toggleText = "Exit fullscreen"
	}

	page := markdownPage{
		Mode:       mode.String(),
		Fullscreen: mode == markdown.Fullscreen,
		ToggleURL:  markdown.ToggleURL(r.URL).RequestURI(),
		ToggleText: toggleText,
		Content:    doc,
		// Sanitized by the renderer's policy.
		Preview: template.HTML(markdown.JoinHTML(s.renderer.RenderBlocks(doc))),
		Stats:   markdown.DocumentStats(doc),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "markdown.html", page); err != nil {
		s.logger.Error("render markdown page", "error", err)
	}
}
