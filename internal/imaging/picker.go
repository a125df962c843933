package imaging

import (
	"fmt"
	"sync"
)

// PickerState is a snapshot of a picker's two color slots. Either slot is
// nil until the corresponding interaction has happened.
type PickerState struct {
	Hovered  *ColorRecord `json:"hovered"`
	Selected *ColorRecord `json:"selected"`
}

// Picker owns the interactive state of one color picker session: the
// raster being inspected plus the hovered and selected colors.
//
// Hover overwrites the hovered slot on every call (last call wins);
// Select copies the hovered slot into the selected slot. A Picker is safe
// for concurrent use.
type Picker struct {
	mu       sync.Mutex
	raster   *Raster
	hovered  *ColorRecord
	selected *ColorRecord
}

// NewPicker starts a session on r with both slots empty.
func NewPicker(r *Raster) *Picker {
	return &Picker{raster: r}
}

// Raster returns the raster under inspection, or nil after Reset.
func (p *Picker) Raster() *Raster {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.raster
}

// Hover samples (x, y) and records it as the hovered color.
func (p *Picker) Hover(x, y int) (ColorRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.raster == nil {
		return ColorRecord{}, fmt.Errorf("no image loaded")
	}
	rec, err := SampleColor(p.raster, x, y)
	if err != nil {
		return ColorRecord{}, err
	}
	p.hovered = rec
	return *rec, nil
}

// Select promotes the hovered color to the selected slot. It reports false
// when nothing has been hovered yet.
func (p *Picker) Select() (ColorRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hovered == nil {
		return ColorRecord{}, false
	}
	sel := *p.hovered
	p.selected = &sel
	return sel, true
}

// Load replaces the raster and clears both slots.
func (p *Picker) Load(r *Raster) {
	p.mu.Lock()
	p.raster = r
	p.hovered = nil
	p.selected = nil
	p.mu.Unlock()
}

// Reset discards the raster and both slots.
func (p *Picker) Reset() {
	p.Load(nil)
}

// State returns copies of both slots.
func (p *Picker) State() PickerState {
	p.mu.Lock()
	defer p.mu.Unlock()

	var st PickerState
	if p.hovered != nil {
		h := *p.hovered
		st.Hovered = &h
	}
	if p.selected != nil {
		s := *p.selected
		st.Selected = &s
	}
	return st
}
