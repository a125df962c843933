package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/clone"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrNotImage is returned when an upload's MIME type does not begin
	// with "image/".
	ErrNotImage = errors.New("not an image")

	// ErrRasterNotFound is returned for unknown raster ids.
	ErrRasterNotFound = errors.New("raster not found")
)

// Raster is a decoded image held as an 8-bit RGBA pixel buffer.
//
// The buffer is normalized so that Bounds().Min is (0,0). A Raster is
// never modified after construction; samplers only read from it.
type Raster struct {
	pix    *image.RGBA
	format string
}

// NewRaster copies img into a fresh RGBA buffer anchored at (0,0).
func NewRaster(img image.Image, format string) *Raster {
	pix := clone.AsRGBA(img)
	pix.Rect = pix.Rect.Sub(pix.Rect.Min)
	return &Raster{pix: pix, format: format}
}

// DecodeRaster decodes an uploaded image.
//
// Parameters:
//   - r: The encoded image bytes.
//   - mimeType: The declared content type. Anything not starting with
//     "image/" is rejected with ErrNotImage before decoding.
//
// Supported formats are PNG, JPEG, GIF, BMP and WebP.
func DecodeRaster(r io.Reader, mimeType string) (*Raster, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %q", ErrNotImage, mimeType)
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return NewRaster(img, format), nil
}

// LoadRaster reads and decodes an image file from disk.
func LoadRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return NewRaster(img, format), nil
}

// Image exposes the underlying buffer for read-only use.
func (r *Raster) Image() *image.RGBA { return r.pix }

// Format is the name reported by the decoder ("png", "jpeg", ...).
func (r *Raster) Format() string { return r.format }

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.pix.Rect.Dx() }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.pix.Rect.Dy() }

// Bounds returns the raster rectangle.
func (r *Raster) Bounds() image.Rectangle { return r.pix.Rect }

// Contains reports whether (x, y) addresses a pixel of the raster.
func (r *Raster) Contains(x, y int) bool {
	return image.Pt(x, y).In(r.pix.Rect)
}

// Sample reads the pixel at (x, y) straight from the buffer.
//
// Alpha is ignored. Channels are the premultiplied values held in the
// buffer, which equal the source values for opaque pixels.
func (r *Raster) Sample(x, y int) (PixelSample, error) {
	if !r.Contains(x, y) {
		return PixelSample{}, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d",
			x, y, r.Width(), r.Height())
	}
	i := r.pix.PixOffset(x, y)
	p := r.pix.Pix[i : i+3 : i+3]
	return PixelSample{R: p[0], G: p[1], B: p[2], X: x, Y: y}, nil
}

// SampleColor samples (x, y) and derives its ColorRecord.
func SampleColor(r *Raster, x, y int) (*ColorRecord, error) {
	p, err := r.Sample(x, y)
	if err != nil {
		return nil, err
	}
	rec := NewColorRecord(p)
	return &rec, nil
}

// RasterInfo contains metadata about a raster.
type RasterInfo struct {
	ID     string `json:"id,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Info summarizes the raster; id is optional.
func (r *Raster) Info(id string) RasterInfo {
	return RasterInfo{ID: id, Width: r.Width(), Height: r.Height(), Format: r.format}
}

// RasterStore holds decoded rasters in memory.
//
// Uploaded rasters are stored under generated ids; rasters read from disk
// are cached under their path so repeated tool calls avoid redundant
// decoding. RasterStore is safe for concurrent use.
type RasterStore struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewRasterStore creates an empty store.
func NewRasterStore() *RasterStore {
	return &RasterStore{rasters: make(map[string]*Raster)}
}

// Put stores r under a fresh id and returns the id.
func (s *RasterStore) Put(r *Raster) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.rasters[id] = r
	s.mu.Unlock()
	return id
}

// Get returns the raster stored under id.
func (s *RasterStore) Get(id string) (*Raster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rasters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRasterNotFound, id)
	}
	return r, nil
}

// Replace swaps the raster stored under id. The id must already exist.
func (s *RasterStore) Replace(id string, r *Raster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rasters[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRasterNotFound, id)
	}
	s.rasters[id] = r
	return nil
}

// Load returns the raster for path, decoding it on first use.
//
// The exact path string is the cache key; relative and absolute spellings
// of the same file are cached separately.
func (s *RasterStore) Load(path string) (*Raster, error) {
	s.mu.RLock()
	if r, ok := s.rasters[path]; ok {
		s.mu.RUnlock()
		return r, nil
	}
	s.mu.RUnlock()

	r, err := LoadRaster(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.rasters[path] = r
	s.mu.Unlock()
	return r, nil
}

// Delete discards the raster stored under key. Unknown keys are ignored.
func (s *RasterStore) Delete(key string) {
	s.mu.Lock()
	delete(s.rasters, key)
	s.mu.Unlock()
}

// Len reports the number of stored rasters.
func (s *RasterStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rasters)
}

// Clear removes every raster.
func (s *RasterStore) Clear() {
	s.mu.Lock()
	s.rasters = make(map[string]*Raster)
	s.mu.Unlock()
}
