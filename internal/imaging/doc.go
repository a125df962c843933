// Package imaging implements the color picker's color engine.
//
// It converts sampled pixels into HEX, RGB, HSL and OKLCH representations,
// renders the magnified pixel loupe, decodes uploaded images into RGBA
// rasters and extracts dominant color palettes. Coordinates are 0-based
// with (0,0) at the top-left corner, X increasing rightward and Y
// increasing downward.
//
// # Color Representation
//
// A ColorRecord carries one sampled color in every supported format:
//   - Hex: "#rrggbb", lowercase, alpha excluded
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-359), Saturation (0-100), Lightness (0-100), integers
//   - OKLCH: L (2 decimals), C (3 decimals), H (1 decimal, 0-360)
//
// The OKLCH path uses the published OKLab matrices so that the values match
// what CSS tooling produces for oklch().
//
// # Thread Safety
//
// Rasters are immutable after decoding and may be sampled concurrently.
// RasterStore and Picker guard their own state and are safe for concurrent
// use.
//
// # Error Handling
//
// The conversion functions are total over 8-bit input and never fail.
// FormatColorValue returns "" for an unknown format tag. DrawLoupe does
// nothing when either surface is nil. Errors are only returned for
// out-of-bounds sampling and for decode failures, including ErrNotImage
// for uploads whose MIME type is not image/*.
package imaging
