package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

const colorSampleSize = 16

// DominantColors returns up to three named colors for an encoded image,
// most frequent first. The image is downsampled to a 16x16 grid and each
// pixel is bucketed into a human color name by its HSL values, so the
// result matches the palette users filter the catalog by.
func DominantColors(data []byte) ([]string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	grid := image.NewRGBA(image.Rect(0, 0, colorSampleSize, colorSampleSize))
	draw.ApproxBiLinear.Scale(grid, grid.Bounds(), src, src.Bounds(), draw.Over, nil)

	counts := make(map[string]int)
	for y := 0; y < colorSampleSize; y++ {
		for x := 0; x < colorSampleSize; x++ {
			c := grid.RGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			h, s, l := rgbToHSL(c.R, c.G, c.B)
			counts[classifyColor(h, s, l)]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 3 {
		names = names[:3]
	}
	return names, nil
}

// rgbToHSL converts 8-bit RGB to hue [0,360), saturation and lightness
// [0,100].
func rgbToHSL(r, g, b uint8) (float64, float64, float64) {
	rn := float64(r) / 255
	gn := float64(g) / 255
	bn := float64(b) / 255
	max := math.Max(rn, math.Max(gn, bn))
	min := math.Min(rn, math.Min(gn, bn))
	l := (max + min) / 2
	var h, s float64

	if max != min {
		d := max - min
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}
		switch max {
		case rn:
			h = (gn - bn) / d
			if gn < bn {
				h += 6
			}
		case gn:
			h = (bn-rn)/d + 2
		case bn:
			h = (rn-gn)/d + 4
		}
		h /= 6
	}

	return h * 360, s * 100, l * 100
}

// classifyColor buckets an HSL triple into one of the catalog's named
// colors. The thresholds lean toward the muted tones clothing actually
// comes in, so low-saturation hues fall to beige or grey rather than
// vivid names.
func classifyColor(h, s, l float64) string {
	if l < 12 {
		return "black"
	}
	if l > 90 {
		return "white"
	}
	if s < 12 {
		if l < 40 {
			return "black"
		}
		if l > 75 {
			return "white"
		}
		return "grey"
	}
	switch {
	case h < 20:
		if s > 40 && l < 60 {
			return "red"
		}
		return "beige"
	case h < 40:
		return "orange"
	case h < 65:
		return "yellow"
	case h < 165:
		return "green"
	case h < 195:
		if s > 30 {
			return "blue"
		}
		return "grey"
	case h < 240:
		if l < 40 {
			return "navy"
		}
		return "blue"
	case h < 290:
		return "purple"
	case h < 335:
		return "pink"
	case h <= 360:
		if s > 40 && l < 60 {
			return "red"
		}
		return "pink"
	}
	return "beige"
}
