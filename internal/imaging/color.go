package imaging

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// PixelSample is a single pixel read from a raster.
//
// R, G and B are 8-bit channel values (0-255). X and Y are the 0-based
// coordinates the sample was read from.
type PixelSample struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	X int   `json:"x"`
	Y int   `json:"y"`
}

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
//
// All components are rounded to the nearest integer.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-359 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// OKLCHColor represents a color in the OKLCH cylindrical color space.
//
// L is rounded to 2 decimal places, C to 3 and H to 1, matching the
// precision CSS authors use for oklch() values.
type OKLCHColor struct {
	L float64 `json:"l"` // Perceptual lightness: 0-1
	C float64 `json:"c"` // Chroma: 0 for grays, ~0.4 for the most vivid sRGB colors
	H float64 `json:"h"` // Hue angle: [0, 360) degrees
}

// ColorRecord is the immutable set of representations derived from one
// PixelSample.
type ColorRecord struct {
	Hex   string     `json:"hex"`   // "#rrggbb", lowercase
	RGB   RGBColor   `json:"rgb"`   // RGB components
	HSL   HSLColor   `json:"hsl"`   // HSL representation
	OKLCH OKLCHColor `json:"oklch"` // OKLCH representation
	X     int        `json:"x"`     // X coordinate of the source pixel
	Y     int        `json:"y"`     // Y coordinate of the source pixel
}

// Supported format tags for FormatColorValue.
const (
	FormatHex   = "hex"
	FormatRGB   = "rgb"
	FormatHSL   = "hsl"
	FormatOKLCH = "oklch"
)

// Formats lists the format tags in display order.
var Formats = []string{FormatHex, FormatRGB, FormatHSL, FormatOKLCH}

// NewColorRecord derives every representation of a sampled pixel.
func NewColorRecord(p PixelSample) ColorRecord {
	return ColorRecord{
		Hex:   RGBToHex(p.R, p.G, p.B),
		RGB:   RGBColor{R: p.R, G: p.G, B: p.B},
		HSL:   RGBToHSL(p.R, p.G, p.B),
		OKLCH: RGBToOKLCH(p.R, p.G, p.B),
		X:     p.X,
		Y:     p.Y,
	}
}

// RGBToHex formats 8-bit channels as "#rrggbb" with lowercase digits.
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// HexToRGB parses "#rrggbb" or "#rgb" (the leading '#' is optional).
func HexToRGB(hex string) (RGBColor, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// RGBToHSL converts 8-bit RGB values to HSL color space.
//
// The conversion follows the standard min/max decomposition:
//  1. Normalize RGB to 0-1 range
//  2. Lightness is (max + min) / 2
//  3. Saturation depends on which side of 0.5 the lightness falls
//  4. Hue sector is chosen by the maximum channel
//
// Achromatic input (max == min) yields hue and saturation 0. Components
// are rounded to the nearest integer; a hue that rounds up to 360 wraps
// to 0.
func RGBToHSL(r, g, b uint8) HSLColor {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	l := (maxC + minC) / 2.0

	var h, s float64
	if maxC != minC {
		d := maxC - minC
		if l > 0.5 {
			s = d / (2.0 - maxC - minC)
		} else {
			s = d / (maxC + minC)
		}

		switch maxC {
		case rf:
			h = (gf - bf) / d
			if gf < bf {
				h += 6
			}
		case gf:
			h = (bf-rf)/d + 2
		default:
			h = (rf-gf)/d + 4
		}
		h /= 6
	}

	hue := int(math.Round(h * 360))
	if hue == 360 {
		hue = 0
	}
	return HSLColor{
		H: hue,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

// Linear sRGB to LMS cone response.
var lmsMatrix = [3][3]float64{
	{0.4122214708, 0.5363325363, 0.0514459929},
	{0.2119034982, 0.6806995451, 0.1073969566},
	{0.0883024619, 0.2817188376, 0.6299787005},
}

// Cube-rooted LMS to OKLab.
var oklabMatrix = [3][3]float64{
	{0.2104542553, 0.7936177850, -0.0040720468},
	{1.9779984951, -2.4285922050, 0.4505937099},
	{0.0259040371, 0.7827717662, -0.8086757660},
}

// RGBToOKLab converts 8-bit sRGB to unrounded OKLab (L, a, b).
//
// Channels are linearized with the sRGB transfer function (linear below
// 0.04045, 2.4 power law above), mapped to LMS, cube-rooted, then mapped
// to OKLab using the published OKLab constants.
func RGBToOKLab(r, g, b uint8) (l, a, bb float64) {
	rl, gl, bl := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.LinearRgb()

	var lms [3]float64
	for i, row := range lmsMatrix {
		lms[i] = math.Cbrt(row[0]*rl + row[1]*gl + row[2]*bl)
	}

	var lab [3]float64
	for i, row := range oklabMatrix {
		lab[i] = row[0]*lms[0] + row[1]*lms[1] + row[2]*lms[2]
	}
	return lab[0], lab[1], lab[2]
}

// RGBToOKLCH converts 8-bit sRGB to OKLCH.
//
// Chroma is the length of the (a, b) vector and hue its angle in degrees,
// normalized into [0, 360). L is rounded to 2 decimals, C to 3 and H to 1.
// When the rounded chroma is zero the hue carries no information and is
// reported as 0.
func RGBToOKLCH(r, g, b uint8) OKLCHColor {
	l, a, bb := RGBToOKLab(r, g, b)

	c := math.Sqrt(a*a + bb*bb)
	h := math.Atan2(bb, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}

	out := OKLCHColor{
		L: roundTo(l, 2),
		C: roundTo(c, 3),
		H: roundTo(h, 1),
	}
	if out.C == 0 || out.H == 360 {
		out.H = 0
	}
	return out
}

// FormatColorValue renders a color in one of the supported formats:
//
//	hex   -> "#ff8040"
//	rgb   -> "rgb(255, 128, 64)"
//	hsl   -> "hsl(20, 100%, 63%)"
//	oklch -> "oklch(0.73 0.173 45.1)"
//
// An unknown format tag returns the empty string rather than an error;
// callers only pass tags from Formats.
func FormatColorValue(format string, c ColorRecord) string {
	switch format {
	case FormatHex:
		return c.Hex
	case FormatRGB:
		return fmt.Sprintf("rgb(%d, %d, %d)", c.RGB.R, c.RGB.G, c.RGB.B)
	case FormatHSL:
		return fmt.Sprintf("hsl(%d, %d%%, %d%%)", c.HSL.H, c.HSL.S, c.HSL.L)
	case FormatOKLCH:
		return fmt.Sprintf("oklch(%s %s %s)",
			formatNumber(c.OKLCH.L), formatNumber(c.OKLCH.C), formatNumber(c.OKLCH.H))
	default:
		return ""
	}
}

// FormattedValues renders c in every supported format, keyed by tag.
func FormattedValues(c ColorRecord) map[string]string {
	out := make(map[string]string, len(Formats))
	for _, f := range Formats {
		out[f] = FormatColorValue(f, c)
	}
	return out
}

// roundTo rounds half away from zero to the given number of decimals and
// clears negative zero.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// formatNumber prints the shortest decimal form ("1", "0.63", "29.2").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
