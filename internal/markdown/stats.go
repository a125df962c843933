package markdown

import (
	"strings"
	"unicode/utf8"
)

// StorageKey is the fixed key the editable document is persisted under.
const StorageKey = "markdown-viewer-content"

// Stats summarizes a document for the editor status bar.
type Stats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Lines      int `json:"lines"`
}

// DocumentStats counts whitespace-separated words, characters (runes)
// and newline-separated lines. An empty document has one line.
func DocumentStats(doc string) Stats {
	return Stats{
		Words:      len(strings.Fields(doc)),
		Characters: utf8.RuneCountInString(doc),
		Lines:      strings.Count(doc, "\n") + 1,
	}
}

// ReadingMinutes estimates reading time at 200 words per minute, rounded
// up. Text without words reads in 0 minutes.
func ReadingMinutes(doc string) int {
	words := len(strings.Fields(doc))
	return (words + 199) / 200
}

// DefaultDocument is shown until the user has stored a document of their
// own.
const DefaultDocument = "# Markdown Preview\n" +
	"\n" +
	"Welcome to the **Markdown Viewer**! Start typing on the left to see your content rendered on the right.\n" +
	"\n" +
	"## Features\n" +
	"\n" +
	"- **Live Preview**: See your markdown rendered in real-time\n" +
	"- **GFM Support**: GitHub Flavored Markdown supported\n" +
	"- **Tables**: Create beautiful tables\n" +
	"- **Code Blocks**: Syntax highlighting ready\n" +
	"\n" +
	"## Example Table\n" +
	"\n" +
	"| Feature | Supported |\n" +
	"|---------|-----------|\n" +
	"| Headers | ✓ |\n" +
	"| Lists | ✓ |\n" +
	"| Links | ✓ |\n" +
	"| Images | ✓ |\n" +
	"\n" +
	"## Lists\n" +
	"\n" +
	"### Unordered List\n" +
	"- First item\n" +
	"- Second item\n" +
	"- Third item\n" +
	"\n" +
	"### Ordered List\n" +
	"1. First step\n" +
	"2. Second step\n" +
	"3. Third step\n" +
	"\n" +
	"## Blockquote\n" +
	"\n" +
	"> \"The best way to predict the future is to invent it.\"\n" +
	"> — Alan Kay\n" +
	"\n" +
	"## Links\n" +
	"\n" +
	"[Visit GitHub](https://github.com)\n" +
	"\n" +
	"---\n" +
	"\n" +
	"Start editing to see your own markdown come to life!"
