package imaging

import (
	"image"
	"sort"
)

// PaletteEntry is one quantized color and its share of the sampled pixels.
type PaletteEntry struct {
	Color      ColorRecord `json:"color"`      // Quantized color; X/Y are unset
	Percentage float64     `json:"percentage"` // 0-100
}

// Palette lists the most frequent colors of a raster, most common first.
type Palette struct {
	Colors []PaletteEntry `json:"colors"`
}

// DominantColors extracts the count most common colors from a raster or a
// region of it.
//
// Parameters:
//   - r: The raster to analyze.
//   - count: Maximum number of colors to return.
//   - region: Optional rectangle (intersected with the raster). Nil means
//     the whole raster.
//
// # Color Quantization
//
// Similar colors are grouped by truncating each channel to a multiple of
// 16, so #F0F0F0 and #FAFAFA land in the same bucket:
//
//	quantized = (original / 16) * 16
//
// Ties are broken by hex value so the output is deterministic.
func DominantColors(r *Raster, count int, region *image.Rectangle) *Palette {
	bounds := r.Bounds()
	if region != nil {
		bounds = region.Intersect(bounds)
	}

	counts := make(map[uint32]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := r.pix.PixOffset(x, y)
			key := uint32(r.pix.Pix[i]&0xF0)<<16 | uint32(r.pix.Pix[i+1]&0xF0)<<8 | uint32(r.pix.Pix[i+2]&0xF0)
			counts[key]++
			total++
		}
	}

	entries := make([]PaletteEntry, 0, len(counts))
	for key, n := range counts {
		rec := NewColorRecord(PixelSample{R: uint8(key >> 16), G: uint8(key >> 8), B: uint8(key)})
		entries = append(entries, PaletteEntry{
			Color:      rec,
			Percentage: float64(n) / float64(total) * 100,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].Color.Hex < entries[j].Color.Hex
	})

	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}
	return &Palette{Colors: entries}
}
