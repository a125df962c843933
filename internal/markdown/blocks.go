package markdown

import (
	"regexp"
	"strings"
)

// BlockKind names the top-level syntactic unit a Block was lexed as.
type BlockKind string

const (
	KindHeading       BlockKind = "heading"
	KindParagraph     BlockKind = "paragraph"
	KindList          BlockKind = "list"
	KindTable         BlockKind = "table"
	KindCode          BlockKind = "code"
	KindBlockquote    BlockKind = "blockquote"
	KindThematicBreak BlockKind = "hr"
	KindHTML          BlockKind = "html"
)

// Block is one top-level unit of a markdown document.
type Block struct {
	Kind   BlockKind `json:"kind"`
	Raw    string    `json:"raw"`    // verbatim source, including trailing blank lines
	Offset int       `json:"offset"` // byte offset of Raw within the document
	Line   int       `json:"line"`   // 1-based line number of the first line of Raw
}

var (
	atxHeadingRe    = regexp.MustCompile(`^ {0,3}#{1,6}(?:[ \t]|$)`)
	thematicBreakRe = regexp.MustCompile(`^ {0,3}(?:(?:\*[ \t]*){3,}|(?:-[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	setextRe        = regexp.MustCompile(`^ {0,3}(?:=+|-+)[ \t]*$`)
	listItemRe      = regexp.MustCompile(`^ {0,3}([-+*]|\d{1,9}[.)])(?:[ \t]|$)`)
	blockquoteRe    = regexp.MustCompile(`^ {0,3}>`)
	htmlStartRe     = regexp.MustCompile(`^ {0,3}<[A-Za-z/!?]`)
	tableDelimRe    = regexp.MustCompile(`^ {0,3}\|?[ \t]*:?-+:?[ \t]*(?:\|[ \t]*:?-+:?[ \t]*)*\|?[ \t]*$`)
)

// SplitBlocks lexes doc into its top-level blocks.
//
// Blank lines following a block belong to that block; blank lines at the
// very start of the document are prepended to the first block. As a result
// the concatenation of every Block.Raw is exactly doc. A document made only
// of whitespace has no blocks.
//
// Any input yields some sequence of blocks; there is no error path.
func SplitBlocks(doc string) []Block {
	lines := splitLines(doc)
	n := len(lines)

	var blocks []Block
	offset, line := 0, 1
	i := 0

	// Leading blank lines.
	for i < n && isBlank(lines[i]) {
		i++
	}
	if i == n {
		return nil
	}
	start := 0

	for i < n {
		kind, end := lexBlock(lines, i)
		for end < n && isBlank(lines[end]) {
			end++
		}

		raw := strings.Join(lines[start:end], "")
		blocks = append(blocks, Block{Kind: kind, Raw: raw, Offset: offset, Line: line})

		offset += len(raw)
		line += end - start
		start, i = end, end
	}
	return blocks
}

// Raws returns the Raw text of each block.
func Raws(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Raw
	}
	return out
}

// splitLines splits doc after each newline. The final line may lack a
// terminator.
func splitLines(doc string) []string {
	lines := strings.SplitAfter(doc, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lexBlock identifies the block starting at lines[i], which is not blank,
// and returns its kind and the index just past its last line.
func lexBlock(lines []string, i int) (BlockKind, int) {
	s := content(lines[i])

	switch {
	case isFenceOpen(s):
		return KindCode, consumeFence(lines, i)
	case atxHeadingRe.MatchString(s):
		return KindHeading, i + 1
	case thematicBreakRe.MatchString(s):
		return KindThematicBreak, i + 1
	case blockquoteRe.MatchString(s):
		return KindBlockquote, consumeBlockquote(lines, i)
	case listItemRe.MatchString(s):
		return KindList, consumeList(lines, i)
	case indentOf(s) >= 4:
		return KindCode, consumeIndented(lines, i)
	case htmlStartRe.MatchString(s):
		return KindHTML, consumeUntilBlank(lines, i)
	case isTableStart(lines, i):
		return KindTable, consumeTable(lines, i)
	}
	return consumeParagraph(lines, i)
}

func consumeFence(lines []string, i int) int {
	marker, width := fenceOf(content(lines[i]))
	for j := i + 1; j < len(lines); j++ {
		if isFenceClose(content(lines[j]), marker, width) {
			return j + 1
		}
	}
	// An unclosed fence runs to the end of the document.
	return len(lines)
}

func consumeBlockquote(lines []string, i int) int {
	j := i + 1
	for ; j < len(lines); j++ {
		s := content(lines[j])
		if isBlank(s) {
			break
		}
		if blockquoteRe.MatchString(s) {
			continue
		}
		if interruptsParagraph(s) {
			break
		}
		// Lazy continuation line.
	}
	return j
}

func consumeList(lines []string, i int) int {
	marker := listMarker(content(lines[i]))
	n := len(lines)

	j := i + 1
	for j < n {
		s := content(lines[j])
		if isBlank(s) {
			k := j
			for k < n && isBlank(lines[k]) {
				k++
			}
			if k == n {
				break
			}
			next := content(lines[k])
			if indentOf(next) >= 2 || sameListItem(next, marker) {
				j = k
				continue
			}
			break
		}
		if thematicBreakRe.MatchString(s) && indentOf(s) < 2 {
			break
		}
		if sameListItem(s, marker) || indentOf(s) >= 2 {
			j++
			continue
		}
		if interruptsParagraph(s) || listItemRe.MatchString(s) {
			break
		}
		// Lazy continuation of the last item's paragraph.
		j++
	}
	return j
}

func consumeIndented(lines []string, i int) int {
	n := len(lines)
	j := i + 1
	for j < n {
		s := content(lines[j])
		if isBlank(s) {
			k := j
			for k < n && isBlank(lines[k]) {
				k++
			}
			if k < n && indentOf(content(lines[k])) >= 4 {
				j = k
				continue
			}
			break
		}
		if indentOf(s) < 4 {
			break
		}
		j++
	}
	return j
}

func consumeUntilBlank(lines []string, i int) int {
	j := i + 1
	for j < len(lines) && !isBlank(lines[j]) {
		j++
	}
	return j
}

func consumeTable(lines []string, i int) int {
	j := i + 2
	for j < len(lines) {
		s := content(lines[j])
		if isBlank(s) || interruptsParagraph(s) {
			break
		}
		j++
	}
	return j
}

// consumeParagraph reads a paragraph, which turns into a setext heading
// when it is closed by an === or --- underline.
func consumeParagraph(lines []string, i int) (BlockKind, int) {
	j := i + 1
	for j < len(lines) {
		s := content(lines[j])
		if isBlank(s) {
			break
		}
		if setextRe.MatchString(s) {
			return KindHeading, j + 1
		}
		if interruptsParagraph(s) {
			break
		}
		j++
	}
	return KindParagraph, j
}

// interruptsParagraph reports whether s starts a block that can end a
// running paragraph without an intervening blank line.
func interruptsParagraph(s string) bool {
	if isFenceOpen(s) || atxHeadingRe.MatchString(s) || thematicBreakRe.MatchString(s) ||
		blockquoteRe.MatchString(s) || htmlStartRe.MatchString(s) {
		return true
	}
	m := listItemRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	// Only non-empty items interrupt, and ordered lists only when they
	// start at 1.
	rest := strings.TrimSpace(s[len(m[0]):])
	if rest == "" {
		return false
	}
	if marker := m[1]; len(marker) > 1 {
		return strings.TrimLeft(marker[:len(marker)-1], "0") == "1"
	}
	return true
}

func isTableStart(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	header := content(lines[i])
	delim := content(lines[i+1])
	if !strings.Contains(header, "|") || !tableDelimRe.MatchString(delim) {
		return false
	}
	return cellCount(header) == cellCount(delim)
}

func cellCount(row string) int {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	return strings.Count(row, "|") + 1
}

// listMarker returns the bullet character, or the delimiter of an ordered
// marker, so that a change of marker starts a new list.
func listMarker(s string) string {
	m := listItemRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1][len(m[1])-1:]
}

func sameListItem(s, marker string) bool {
	if indentOf(s) >= 4 {
		return false
	}
	return marker != "" && listMarker(s) == marker
}

func isFenceOpen(s string) bool {
	marker, _ := fenceOf(s)
	return marker != 0
}

// fenceOf returns the fence character and run length when s opens a
// fenced code block.
func fenceOf(s string) (byte, int) {
	if indentOf(s) > 3 {
		return 0, 0
	}
	t := strings.TrimLeft(s, " ")
	if t == "" || (t[0] != '`' && t[0] != '~') {
		return 0, 0
	}
	c := t[0]
	n := 0
	for n < len(t) && t[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	if c == '`' && strings.Contains(t[n:], "`") {
		return 0, 0
	}
	return c, n
}

func isFenceClose(s string, marker byte, width int) bool {
	if indentOf(s) > 3 {
		return false
	}
	t := strings.TrimLeft(s, " ")
	n := 0
	for n < len(t) && t[n] == marker {
		n++
	}
	return n >= width && strings.TrimSpace(t[n:]) == ""
}

// content strips the line terminator.
func content(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// indentOf counts leading columns, expanding tabs to the next multiple
// of 4.
func indentOf(s string) int {
	col := 0
	for _, r := range s {
		switch r {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return col
		}
	}
	return col
}
