package markdown

import (
	"math"
	"sync"
	"time"
)

// SyncReleaseDelay is how long the re-entrancy guard stays up after a
// programmatic scroll, roughly one rendering frame.
const SyncReleaseDelay = 10 * time.Millisecond

// echoTolerance absorbs the sub-pixel rounding a host applies when it
// stores a programmatic scroll position.
const echoTolerance = 1.0

// Pane carries the scroll metrics of one scrollable surface, in pixels.
type Pane struct {
	ScrollTop    float64 `json:"scrollTop"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
}

// Range is the maximum scroll offset. It is zero or negative when the
// content fits without scrolling.
func (p Pane) Range() float64 {
	return p.ScrollHeight - p.ClientHeight
}

// Ratio is ScrollTop as a fraction of Range, clamped to [0,1]. A pane
// that cannot scroll has ratio 0.
func (p Pane) Ratio() float64 {
	r := p.Range()
	if !(r > 0) {
		return 0
	}
	ratio := p.ScrollTop / r
	switch {
	case math.IsNaN(ratio) || ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}

// SyncPosition returns the scrollTop that puts dst at the same ratio as
// src. It reports false when src cannot scroll, in which case dst should
// be left alone.
func SyncPosition(src, dst Pane) (float64, bool) {
	if !(src.Range() > 0) {
		return 0, false
	}
	r := dst.Range()
	if !(r > 0) {
		return 0, true
	}
	return src.Ratio() * r, true
}

// Side identifies one of the two synchronized panes.
type Side int

const (
	Editor Side = iota
	Preview
)

// Other returns the opposite pane.
func (s Side) Other() Side {
	if s == Editor {
		return Preview
	}
	return Editor
}

func (s Side) String() string {
	if s == Editor {
		return "editor"
	}
	return "preview"
}

// ScrollSync keeps an editor and a preview pane at the same scroll ratio
// without feedback loops.
//
// When one pane drives the other, the guard is raised and scroll events
// from either pane are ignored until SyncReleaseDelay has elapsed. The
// position assigned to the driven pane is also remembered, and the first
// event that pane reports at that position is dropped even if the guard
// has already been released. Each sync takes a new generation number so
// that a release timer left over from an earlier sync cannot drop the
// guard of a later one.
type ScrollSync struct {
	mu      sync.Mutex
	syncing bool
	gen     uint64

	echo    [2]float64
	pending [2]bool

	delay    time.Duration
	schedule func(time.Duration, func())
}

// NewScrollSync returns a ScrollSync that releases its guard with
// time.AfterFunc.
func NewScrollSync() *ScrollSync {
	return &ScrollSync{
		delay: SyncReleaseDelay,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Scroll handles a scroll event reported by the from pane, whose metrics
// are src. It returns the scrollTop to assign to the other pane, or false
// when the event must not propagate.
func (s *ScrollSync) Scroll(from Side, src, dst Pane) (float64, bool) {
	s.mu.Lock()

	if s.pending[from] {
		s.pending[from] = false
		if math.Abs(s.echo[from]-src.ScrollTop) < echoTolerance {
			s.mu.Unlock()
			return 0, false
		}
	}
	if s.syncing {
		s.mu.Unlock()
		return 0, false
	}

	top, ok := SyncPosition(src, dst)
	if !ok {
		s.mu.Unlock()
		return 0, false
	}

	to := from.Other()
	s.echo[to] = top
	s.pending[to] = true
	s.syncing = true
	s.gen++
	gen := s.gen
	delay, schedule := s.delay, s.schedule
	s.mu.Unlock()

	schedule(delay, func() { s.release(gen) })
	return top, true
}

// Syncing reports whether the re-entrancy guard is raised.
func (s *ScrollSync) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// Release drops the guard immediately. Pending release timers become
// no-ops.
func (s *ScrollSync) Release() {
	s.mu.Lock()
	s.syncing = false
	s.gen++
	s.mu.Unlock()
}

func (s *ScrollSync) release(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.syncing = false
	}
	s.mu.Unlock()
}
