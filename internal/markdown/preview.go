package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// TerminalPreview renders markdown for a terminal, block by block.
type TerminalPreview struct {
	renderer *glamour.TermRenderer
}

// NewTerminalPreview creates a preview that wraps at width columns. A
// width of 0 disables wrapping.
func NewTerminalPreview(width int) (*TerminalPreview, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.TokyoNightStyle),
		glamour.WithWordWrap(max(width, 0)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return &TerminalPreview{renderer: r}, nil
}

// Render renders each block of doc separately and writes them to w in
// order. A block glamour cannot render is written as raw text.
func (p *TerminalPreview) Render(w io.Writer, doc string) error {
	for _, b := range SplitBlocks(doc) {
		out, err := p.renderer.Render(b.Raw)
		if err != nil {
			out = b.Raw
		}
		if _, err := io.WriteString(w, strings.TrimRight(out, "\n")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
