// Package markdown implements the markdown viewer: block segmentation,
// per-block memoized HTML rendering, proportional scroll synchronization
// between the editor and preview panes, and the split/fullscreen display
// mode.
//
// # Blocks
//
// SplitBlocks lexes a document into top-level blocks (headings,
// paragraphs, lists, tables, fenced and indented code, blockquotes,
// thematic breaks and HTML blocks). Blank lines are kept with the block
// they follow, so concatenating the blocks reproduces the document byte
// for byte.
//
// # Rendering
//
// Renderer converts blocks with goldmark (CommonMark plus GFM) and
// sanitizes the result with bluemonday. Only blocks whose text changed
// since the previous pass are converted again.
//
// # Scroll Synchronization
//
// ScrollSync maps a scroll of one pane onto the other at the same ratio
// of its scrollable range. Panes that cannot scroll never produce NaN.
package markdown
