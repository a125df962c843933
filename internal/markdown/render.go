package markdown

import (
	"bytes"
	"html"
	"io"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// RenderedBlock is a Block together with its sanitized HTML.
type RenderedBlock struct {
	Block
	HTML   string `json:"html"`
	Cached bool   `json:"cached"` // HTML reused from the previous pass
}

type cachedBlock struct {
	raw  string
	html string
}

// Renderer converts markdown to sanitized HTML one block at a time and
// memoizes the result per block position.
//
// On each Render pass, a block whose raw text is identical to the block
// at the same position in the previous pass reuses that pass's HTML;
// every other block is converted again. A Renderer is safe for concurrent
// use, though concurrent passes over different documents evict each
// other's cache; give each document its own Renderer with Fork.
type Renderer struct {
	convert func(src []byte, w io.Writer) error
	policy  *bluemonday.Policy

	mu    sync.Mutex
	cache []cachedBlock
}

// NewRenderer returns a Renderer for CommonMark plus GitHub Flavored
// Markdown (tables, strikethrough, autolinks and task lists).
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return &Renderer{
		convert: func(src []byte, w io.Writer) error { return md.Convert(src, w) },
		policy:  newPolicy(),
	}
}

// newPolicy allows user-generated markup plus the attributes goldmark's
// GFM output relies on. External links open in a new tab.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#.-]+$`)).OnElements("code")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Pass is the result of one Render pass.
type Pass struct {
	Blocks []RenderedBlock `json:"blocks"`
	// Changed is false only when every block was reused and the block
	// count matches the previous pass, so the preview is already current.
	Changed bool `json:"changed"`
}

// Render splits doc into blocks and renders each of them, reusing the
// previous pass's HTML for unchanged blocks.
func (r *Renderer) Render(doc string) Pass {
	blocks := SplitBlocks(doc)

	r.mu.Lock()
	defer r.mu.Unlock()

	pass := Pass{
		Blocks:  make([]RenderedBlock, len(blocks)),
		Changed: r.cache == nil || len(blocks) != len(r.cache),
	}
	next := make([]cachedBlock, len(blocks))
	for i, b := range blocks {
		if i < len(r.cache) && r.cache[i].raw == b.Raw {
			pass.Blocks[i] = RenderedBlock{Block: b, HTML: r.cache[i].html, Cached: true}
			next[i] = r.cache[i]
			continue
		}
		h := r.RenderBlock(b.Raw)
		pass.Blocks[i] = RenderedBlock{Block: b, HTML: h}
		next[i] = cachedBlock{raw: b.Raw, html: h}
		pass.Changed = true
	}
	r.cache = next
	return pass
}

// RenderBlocks renders every block of doc without reading or updating the
// cache.
func (r *Renderer) RenderBlocks(doc string) []RenderedBlock {
	blocks := SplitBlocks(doc)
	out := make([]RenderedBlock, len(blocks))
	for i, b := range blocks {
		out[i] = RenderedBlock{Block: b, HTML: r.RenderBlock(b.Raw)}
	}
	return out
}

// Fork returns a Renderer with the same conversion and sanitization but
// its own empty cache.
func (r *Renderer) Fork() *Renderer {
	return &Renderer{convert: r.convert, policy: r.policy}
}

// RenderBlock converts a single block without consulting the cache.
//
// If conversion fails the block is shown as preformatted plain text.
func (r *Renderer) RenderBlock(raw string) string {
	var buf bytes.Buffer
	if err := r.convert([]byte(raw), &buf); err != nil {
		return "<pre>" + html.EscapeString(raw) + "</pre>\n"
	}
	return r.policy.Sanitize(buf.String())
}

// RenderDocument converts a whole document in one pass, so that link
// reference definitions resolve across blocks.
func (r *Renderer) RenderDocument(doc string) string {
	return r.RenderBlock(doc)
}

// Reset drops the memoized HTML.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

// JoinHTML concatenates rendered blocks in order.
func JoinHTML(blocks []RenderedBlock) string {
	var buf bytes.Buffer
	for _, b := range blocks {
		buf.WriteString(b.HTML)
	}
	return buf.String()
}
