package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int, fill color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode normalized image: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), format
}

func TestNormalizeDownscales(t *testing.T) {
	data := encodePNG(t, 1600, 400, color.RGBA{200, 30, 30, 255})

	out, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	w, h, format := decodeSize(t, out)
	if w != 800 || h != 200 {
		t.Errorf("normalized to %dx%d, want 800x200", w, h)
	}
	if format != "jpeg" {
		t.Errorf("normalized format = %q, want jpeg", format)
	}
}

func TestNormalizeNeverUpscales(t *testing.T) {
	data := encodePNG(t, 120, 80, color.RGBA{200, 30, 30, 255})

	out, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if w, h, _ := decodeSize(t, out); w != 120 || h != 80 {
		t.Errorf("normalized to %dx%d, want original 120x80", w, h)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("definitely not an image")); err == nil {
		t.Error("expected decode error for non-image data")
	}
}

func TestDominantColorsSolid(t *testing.T) {
	tests := []struct {
		name string
		fill color.RGBA
		want string
	}{
		{"red", color.RGBA{200, 30, 30, 255}, "red"},
		{"navy", color.RGBA{20, 30, 90, 255}, "navy"},
		{"white", color.RGBA{250, 250, 250, 255}, "white"},
		{"black", color.RGBA{10, 10, 10, 255}, "black"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colors, err := DominantColors(encodePNG(t, 64, 64, tt.fill))
			if err != nil {
				t.Fatalf("DominantColors failed: %v", err)
			}
			if len(colors) != 1 || colors[0] != tt.want {
				t.Errorf("colors = %v, want [%s]", colors, tt.want)
			}
		})
	}
}

func TestDominantColorsTwoTone(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		fill := color.RGBA{200, 30, 30, 255}
		if y >= 32 {
			fill = color.RGBA{20, 40, 220, 255}
		}
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	colors, err := DominantColors(buf.Bytes())
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	got := make(map[string]bool, len(colors))
	for _, c := range colors {
		got[c] = true
	}
	if !got["red"] || !got["blue"] {
		t.Errorf("colors = %v, want red and blue present", colors)
	}
}

func TestRGBToHSL(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		h, s, l float64
	}{
		{"pure red", 255, 0, 0, 0, 100, 50},
		{"pure green", 0, 255, 0, 120, 100, 50},
		{"pure blue", 0, 0, 255, 240, 100, 50},
		{"white", 255, 255, 255, 0, 0, 100},
		{"black", 0, 0, 0, 0, 0, 0},
		{"mid grey", 128, 128, 128, 0, 0, 50.196},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, l := rgbToHSL(tt.r, tt.g, tt.b)
			if diff(h, tt.h) > 0.01 || diff(s, tt.s) > 0.01 || diff(l, tt.l) > 0.01 {
				t.Errorf("rgbToHSL = (%.2f, %.2f, %.2f), want (%.2f, %.2f, %.2f)",
					h, s, l, tt.h, tt.s, tt.l)
			}
		})
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestClassifyColor(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		want    string
	}{
		{"very dark is black", 200, 80, 5, "black"},
		{"very light is white", 200, 80, 95, "white"},
		{"low-sat dark is black", 0, 5, 30, "black"},
		{"low-sat mid is grey", 0, 5, 50, "grey"},
		{"low-sat light is white", 0, 5, 80, "white"},
		{"saturated low hue is red", 10, 80, 40, "red"},
		{"muted low hue is beige", 10, 30, 50, "beige"},
		{"orange band", 30, 70, 50, "orange"},
		{"yellow band", 50, 90, 50, "yellow"},
		{"green band", 120, 60, 40, "green"},
		{"cyan band is blue", 180, 50, 50, "blue"},
		{"muted cyan is grey", 180, 20, 50, "grey"},
		{"dark blue is navy", 220, 60, 30, "navy"},
		{"light blue is blue", 220, 60, 60, "blue"},
		{"purple band", 270, 60, 50, "purple"},
		{"pink band", 320, 60, 60, "pink"},
		{"high hue saturated dark is red", 350, 80, 40, "red"},
		{"high hue muted is pink", 350, 30, 70, "pink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyColor(tt.h, tt.s, tt.l); got != tt.want {
				t.Errorf("classifyColor(%.0f, %.0f, %.0f) = %q, want %q",
					tt.h, tt.s, tt.l, got, tt.want)
			}
		})
	}
}
