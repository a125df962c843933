package markdown

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestModeFromURL(t *testing.T) {
	tests := []struct {
		raw  string
		want DisplayMode
	}{
		{"/tools/markdown", Split},
		{"/tools/markdown?fullscreen=true", Fullscreen},
		{"/tools/markdown?fullscreen=false", Split},
		{"/tools/markdown?fullscreen=1", Split},
		{"/tools/markdown?fullscreen=TRUE", Split},
		{"/tools/markdown?theme=dark&fullscreen=true", Fullscreen},
	}

	for _, tt := range tests {
		if got := ModeFromURL(mustParse(t, tt.raw)); got != tt.want {
			t.Errorf("ModeFromURL(%s): got %s, want %s", tt.raw, got, tt.want)
		}
	}

	if ModeFromURL(nil) != Split {
		t.Error("nil URL should be Split")
	}
}

func TestToggleURL_RoundTrip(t *testing.T) {
	start := mustParse(t, "/tools/markdown?theme=dark")

	on := ToggleURL(start)
	if ModeFromURL(on) != Fullscreen {
		t.Fatalf("toggled URL %s does not restore Fullscreen", on)
	}
	if on.Query().Get("theme") != "dark" {
		t.Errorf("other parameters lost: %s", on)
	}

	// Reconstructing from the string alone restores the mode.
	if ModeFromURL(mustParse(t, on.String())) != Fullscreen {
		t.Errorf("%s does not survive a string round trip", on)
	}

	off := ToggleURL(on)
	if ModeFromURL(off) != Split {
		t.Fatalf("second toggle should return to Split, got %s", off)
	}
	if off.Query().Has(FullscreenParam) {
		t.Errorf("flag should be removed, got %s", off)
	}

	if start.RawQuery != "theme=dark" {
		t.Errorf("ToggleURL modified its input: %s", start)
	}
}

func TestWithMode_NilURL(t *testing.T) {
	on := ToggleURL(nil)
	if ModeFromURL(on) != Fullscreen {
		t.Errorf("ToggleURL(nil): got %s, want the fullscreen flag", on)
	}
	if off := WithMode(nil, Split); off.String() != "" {
		t.Errorf("WithMode(nil, Split): got %q, want empty", off.String())
	}
}

func TestDisplayMode_Toggle(t *testing.T) {
	if Split.Toggle() != Fullscreen || Fullscreen.Toggle() != Split {
		t.Error("Toggle should alternate between the two modes")
	}
	if Split.String() != "split" || Fullscreen.String() != "fullscreen" {
		t.Errorf("names: %s, %s", Split, Fullscreen)
	}
}
