package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// createTestImage writes a solid PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// encodePNG returns img as PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRaster(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(30, 20, color.RGBA{255, 128, 64, 255}))

	r, err := DecodeRaster(bytes.NewReader(data), "image/png")
	if err != nil {
		t.Fatalf("DecodeRaster failed: %v", err)
	}

	if r.Width() != 30 || r.Height() != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", r.Width(), r.Height())
	}
	if r.Format() != "png" {
		t.Errorf("format: got %s, want png", r.Format())
	}

	p, err := r.Sample(5, 5)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if p.R != 255 || p.G != 128 || p.B != 64 {
		t.Errorf("sample: got (%d,%d,%d), want (255,128,64)", p.R, p.G, p.B)
	}
}

func TestDecodeRaster_RejectsNonImageMIME(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(4, 4, color.White))

	for _, mime := range []string{"text/plain", "application/octet-stream", "", "IMAGE/png"} {
		_, err := DecodeRaster(bytes.NewReader(data), mime)
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("mime %q: got %v, want ErrNotImage", mime, err)
		}
	}
}

func TestDecodeRaster_Garbage(t *testing.T) {
	_, err := DecodeRaster(strings.NewReader("definitely not a png"), "image/png")
	if err == nil {
		t.Fatal("DecodeRaster should fail on garbage input")
	}
	if errors.Is(err, ErrNotImage) {
		t.Error("decode failure should not be reported as ErrNotImage")
	}
}

func TestNewRaster_NormalizesOrigin(t *testing.T) {
	src := createGradientImage(20, 20)
	sub := src.SubImage(image.Rect(5, 6, 15, 16))

	r := NewRaster(sub, "png")
	if r.Bounds().Min != (image.Point{}) {
		t.Fatalf("bounds min: got %v, want (0,0)", r.Bounds().Min)
	}
	if r.Width() != 10 || r.Height() != 10 {
		t.Errorf("dimensions: got %dx%d, want 10x10", r.Width(), r.Height())
	}

	p, err := r.Sample(0, 0)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if p.R != 5 || p.G != 6 {
		t.Errorf("origin sample: got (%d,%d), want (5,6)", p.R, p.G)
	}
}

func TestRasterSample_OutOfBounds(t *testing.T) {
	r := NewRaster(createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255}), "png")

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -1},
		{"x too large", 100, 50},
		{"y too large", 50, 100},
		{"both too large", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Sample(tt.x, tt.y); err == nil {
				t.Error("Sample should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestSampleColor(t *testing.T) {
	r := NewRaster(createGradientImage(50, 50), "png")

	rec, err := SampleColor(r, 12, 34)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if rec.X != 12 || rec.Y != 34 {
		t.Errorf("coordinates: got (%d,%d), want (12,34)", rec.X, rec.Y)
	}
	if rec.Hex != "#0c22c8" {
		t.Errorf("hex: got %s, want #0c22c8", rec.Hex)
	}
}

func TestRasterStore_PutGetDelete(t *testing.T) {
	s := NewRasterStore()
	r := NewRaster(createInMemoryImage(10, 10, color.White), "png")

	id := s.Put(r)
	if id == "" {
		t.Fatal("Put returned empty id")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != r {
		t.Error("Get returned a different raster")
	}

	if other := s.Put(r); other == id {
		t.Error("Put should generate a fresh id per call")
	}

	s.Delete(id)
	if _, err := s.Get(id); !errors.Is(err, ErrRasterNotFound) {
		t.Errorf("after Delete: got %v, want ErrRasterNotFound", err)
	}

	// Deleting twice is harmless.
	s.Delete(id)
}

func TestRasterStore_Replace(t *testing.T) {
	s := NewRasterStore()
	id := s.Put(NewRaster(createInMemoryImage(4, 4, color.White), "png"))

	next := NewRaster(createInMemoryImage(9, 9, color.Black), "png")
	if err := s.Replace(id, next); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	got, err := s.Get(id)
	if err != nil || got != next {
		t.Errorf("Get after Replace: got (%v, %v), want the new raster", got, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}

	if err := s.Replace("missing", next); !errors.Is(err, ErrRasterNotFound) {
		t.Errorf("unknown id: got %v, want ErrRasterNotFound", err)
	}
	if s.Len() != 1 {
		t.Error("Replace of an unknown id should not add an entry")
	}
}

func TestRasterStore_Load(t *testing.T) {
	path := createTestImage(t, 64, 32, color.RGBA{0, 0, 255, 255})
	s := NewRasterStore()

	first, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if first.Width() != 64 || first.Height() != 32 {
		t.Errorf("dimensions: got %dx%d, want 64x32", first.Width(), first.Height())
	}

	second, err := s.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first != second {
		t.Error("second Load should return the cached raster")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", s.Len())
	}
}

func TestRasterStore_LoadMissing(t *testing.T) {
	s := NewRasterStore()
	if _, err := s.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load should fail for a missing file")
	}
	if s.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestRasterStore_ConcurrentLoad(t *testing.T) {
	path := createTestImage(t, 16, 16, color.Black)
	s := NewRasterStore()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}
