package markdown

import "net/url"

// FullscreenParam is the query flag that selects Fullscreen.
const FullscreenParam = "fullscreen"

// DisplayMode is the markdown viewer layout.
type DisplayMode int

const (
	// Split shows the editor and the preview side by side.
	Split DisplayMode = iota
	// Fullscreen shows the preview only.
	Fullscreen
)

func (m DisplayMode) String() string {
	if m == Fullscreen {
		return "fullscreen"
	}
	return "split"
}

// Toggle returns the other mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == Fullscreen {
		return Split
	}
	return Fullscreen
}

// ModeFromQuery reads the mode from query values. Only the exact value
// "true" selects Fullscreen.
func ModeFromQuery(q url.Values) DisplayMode {
	if q.Get(FullscreenParam) == "true" {
		return Fullscreen
	}
	return Split
}

// ModeFromURL restores the mode encoded in u. A nil URL means Split.
func ModeFromURL(u *url.URL) DisplayMode {
	if u == nil {
		return Split
	}
	return ModeFromQuery(u.Query())
}

// WithMode returns a copy of u that encodes m: the flag is set for
// Fullscreen and removed for Split. Other query parameters are kept. A nil
// URL is treated as empty.
func WithMode(u *url.URL, m DisplayMode) *url.URL {
	var out url.URL
	if u != nil {
		out = *u
	}
	q := out.Query()
	if m == Fullscreen {
		q.Set(FullscreenParam, "true")
	} else {
		q.Del(FullscreenParam)
	}
	out.RawQuery = q.Encode()
	return &out
}

// ToggleURL returns a copy of u with its mode flipped.
func ToggleURL(u *url.URL) *url.URL {
	return WithMode(u, ModeFromURL(u).Toggle())
}
