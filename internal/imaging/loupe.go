package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// Loupe defaults: a 15x15 source window magnified to 120x120 (8x).
const (
	DefaultLoupeSize    = 15
	DefaultLoupeDisplay = 120
)

var (
	loupeGridColor   = color.NRGBA{0, 0, 0, 38}        // rgba(0,0,0,0.15)
	loupeOuterBorder = color.NRGBA{255, 255, 255, 230} // rgba(255,255,255,0.9)
	loupeInnerBorder = color.NRGBA{0, 0, 0, 128}       // rgba(0,0,0,0.5)
)

// LoupeWindow returns the source rectangle magnified by a loupe centered
// on (x, y).
//
// The window starts size/2 pixels up and left of the center and its start
// coordinates are floored at 0, so near the top-left edge the window slides
// inward rather than reading negative coordinates. The far edges are not
// clamped; pixels past the raster read as transparent.
func LoupeWindow(x, y, size int) image.Rectangle {
	x0 := max(0, x-size/2)
	y0 := max(0, y-size/2)
	return image.Rect(x0, y0, x0+size, y0+size)
}

// DrawLoupe renders a magnified view of src around (x, y) into the top-left
// displaySize x displaySize square of dst.
//
// Parameters:
//   - dst: The output surface. Drawing is clipped to its bounds.
//   - src: The raster to magnify.
//   - x, y: Center pixel in src coordinates.
//   - size: Source window edge in pixels (DefaultLoupeSize when <= 0).
//   - displaySize: Output edge in pixels (DefaultLoupeDisplay when <= 0).
//
// The window is scaled with nearest-neighbor sampling (no smoothing). A
// translucent black grid is drawn on the scaled pixel boundaries and the
// cell at index size/2 gets a white outer and black inner border.
//
// If dst or src is nil the call does nothing. Repeating a call with the
// same arguments produces the same pixels.
func DrawLoupe(dst *image.RGBA, src *Raster, x, y, size, displaySize int) {
	if dst == nil || src == nil || src.pix == nil {
		return
	}
	if size <= 0 {
		size = DefaultLoupeSize
	}
	if displaySize <= 0 {
		displaySize = DefaultLoupeDisplay
	}

	win := LoupeWindow(x, y, size)
	window := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(window, window.Bounds(), src.pix, win.Min, draw.Src)

	scaled := imaging.Resize(window, displaySize, displaySize, imaging.NearestNeighbor)

	origin := dst.Rect.Min
	area := image.Rect(0, 0, displaySize, displaySize).Add(origin)
	draw.Draw(dst, area, scaled, image.Point{}, draw.Src)

	pixelSize := float64(displaySize) / float64(size)

	grid := image.NewUniform(loupeGridColor)
	for i := 0; i <= size; i++ {
		pos := int(math.Round(float64(i) * pixelSize))
		if pos >= displaySize {
			pos = displaySize - 1
		}
		vertical := image.Rect(pos, 0, pos+1, displaySize).Add(origin)
		horizontal := image.Rect(0, pos, displaySize, pos+1).Add(origin)
		draw.Draw(dst, vertical, grid, image.Point{}, draw.Over)
		draw.Draw(dst, horizontal, grid, image.Point{}, draw.Over)
	}

	c := int(math.Floor(float64(size/2) * pixelSize))
	p := int(math.Round(pixelSize))
	strokeRect(dst, image.Rect(c-1, c-1, c+p+1, c+p+1).Add(origin), 2, loupeOuterBorder)
	strokeRect(dst, image.Rect(c+1, c+1, c+p-1, c+p-1).Add(origin), 1, loupeInnerBorder)
}

// NewLoupe allocates a displaySize square surface and draws the loupe into
// it. It returns nil when src is nil.
func NewLoupe(src *Raster, x, y, size, displaySize int) *image.RGBA {
	if src == nil {
		return nil
	}
	if displaySize <= 0 {
		displaySize = DefaultLoupeDisplay
	}
	dst := image.NewRGBA(image.Rect(0, 0, displaySize, displaySize))
	DrawLoupe(dst, src, x, y, size, displaySize)
	return dst
}

// LoupePlacement reports which side of the cursor a loupe should be shown
// on: "left" once the cursor is past 70% of the raster width, otherwise
// "right".
func LoupePlacement(x, width int) string {
	if width > 0 && float64(x)/float64(width)*100 > 70 {
		return "left"
	}
	return "right"
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// strokeRect draws a border of the given width just inside r.
func strokeRect(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	u := image.NewUniform(c)
	bands := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+width, r.Min.X+width, r.Max.Y-width),
		image.Rect(r.Max.X-width, r.Min.Y+width, r.Max.X, r.Max.Y-width),
	}
	for _, b := range bands {
		draw.Draw(dst, b, u, image.Point{}, draw.Over)
	}
}
