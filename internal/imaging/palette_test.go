package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestDominantColors_SolidImage(t *testing.T) {
	r := NewRaster(createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255}), "png")

	p := DominantColors(r, 5, nil)
	if len(p.Colors) != 1 {
		t.Fatalf("got %d colors, want 1", len(p.Colors))
	}
	if p.Colors[0].Percentage != 100 {
		t.Errorf("percentage: got %f, want 100", p.Colors[0].Percentage)
	}
	// 255 quantizes to 240.
	if p.Colors[0].Color.Hex != "#f00000" {
		t.Errorf("hex: got %s, want #f00000", p.Colors[0].Color.Hex)
	}
}

func TestDominantColors_Ordering(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			switch {
			case y < 6:
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			case y < 9:
				img.Set(x, y, color.RGBA{0, 255, 0, 255})
			default:
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	r := NewRaster(img, "png")

	p := DominantColors(r, 0, nil)
	if len(p.Colors) != 3 {
		t.Fatalf("got %d colors, want 3", len(p.Colors))
	}

	want := []struct {
		hex string
		pct float64
	}{
		{"#0000f0", 60},
		{"#00f000", 30},
		{"#f0f0f0", 10},
	}
	for i, w := range want {
		got := p.Colors[i]
		if got.Color.Hex != w.hex {
			t.Errorf("color %d: got %s, want %s", i, got.Color.Hex, w.hex)
		}
		if math.Abs(got.Percentage-w.pct) > 1e-9 {
			t.Errorf("color %d percentage: got %f, want %f", i, got.Percentage, w.pct)
		}
	}
}

func TestDominantColors_CountLimit(t *testing.T) {
	r := NewRaster(createGradientImage(64, 64), "png")

	p := DominantColors(r, 3, nil)
	if len(p.Colors) != 3 {
		t.Errorf("got %d colors, want 3", len(p.Colors))
	}

	all := DominantColors(r, 0, nil)
	if len(all.Colors) != 16 {
		t.Errorf("unlimited: got %d colors, want 16 quantized buckets", len(all.Colors))
	}
}

func TestDominantColors_TiesBreakByHex(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})
	img.Set(1, 0, color.RGBA{0, 0, 0, 255})

	p := DominantColors(NewRaster(img, "png"), 0, nil)
	if p.Colors[0].Color.Hex != "#000000" || p.Colors[1].Color.Hex != "#f0f0f0" {
		t.Errorf("tie order: got %s, %s", p.Colors[0].Color.Hex, p.Colors[1].Color.Hex)
	}
}

func TestDominantColors_Region(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	r := NewRaster(img, "png")

	region := image.Rect(10, 0, 40, 10)
	p := DominantColors(r, 5, &region)
	if len(p.Colors) != 1 || p.Colors[0].Color.Hex != "#f0f0f0" {
		t.Errorf("region palette: got %+v", p.Colors)
	}
}
