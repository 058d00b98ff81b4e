package palette

import (
	"image/color"
	"sort"

	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/raster"
	"github.com/ericpauley/go-quantize/quantize"
)

// Method selects how a global palette is chosen.
type Method int

const (
	// Auto lets the target profile decide
	Auto Method = iota
	// Fixed uses the candidate gamut as is
	Fixed
	// Frequency keeps the most common candidate colors
	Frequency
	// MedianCut builds an adaptive palette by median cut
	MedianCut
	// Quantize builds an adaptive palette with a weighted bucket quantizer
	Quantize
)

var methodNames = [...]string{
	Auto:      "auto",
	Fixed:     "fixed",
	Frequency: "frequency",
	MedianCut: "median-cut",
	Quantize:  "quantize",
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return "unknown"
	}
	return methodNames[m]
}

// ParseMethod returns the Method with the given name.
func ParseMethod(s string) (Method, bool) {
	for i, n := range methodNames {
		if n == s {
			return Method(i), true
		}
	}
	return Auto, false
}

// Select builds a palette of exactly n colors for img. Candidates is the
// hardware gamut the colors must come from, nil when any color is allowed.
func Select(m Method, img *raster.Image, candidates Palette, n int) Palette {
	switch m {
	case Fixed:
		if candidates != nil {
			return append(Palette(nil), candidates...)
		}
		fallthrough
	case MedianCut:
		return Snap(MedianCutPalette(img, n), candidates)
	case Quantize:
		return Snap(QuantizePalette(img, n), candidates)
	default:
		if candidates == nil {
			return MedianCutPalette(img, n)
		}
		return Frequent(img, candidates, n)
	}
}

// darkest returns the candidate nearest black, which pads palettes drawn
// from a gamut with no exact black
func darkest(candidates Palette) Color {
	if len(candidates) == 0 {
		return Black
	}
	return candidates[candidates.Nearest(0, 0, 0, metric.Euclidean.Func())]
}

func (p Palette) padWith(n int, c Color) Palette {
	for len(p) < n {
		p = append(p, c)
	}
	return p
}

// Snap moves every color of p to its nearest candidate. Duplicates are
// removed and the result padded back to len(p) with the darkest candidate.
func Snap(p, candidates Palette) Palette {
	if candidates == nil {
		return p
	}

	m := NewMatcher(candidates, metric.Euclidean)
	out := make(Palette, 0, len(p))
	seen := make(map[Color]struct{}, len(p))
	for _, c := range p {
		s := candidates[m.Nearest(c.components())]
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out.padWith(len(p), darkest(candidates))
}

// Frequent maps every pixel of img to its nearest candidate color and
// returns the n most common, padded with the darkest candidate. Equal counts
// keep candidate order.
func Frequent(img *raster.Image, candidates Palette, n int) Palette {
	counts := make([]int, len(candidates))

	m := NewMatcher(candidates, metric.Euclidean)
	cache := make(map[Color]int)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.RGB(x, y)
			c := Color{raster.Byte(r), raster.Byte(g), raster.Byte(b)}
			i, ok := cache[c]
			if !ok {
				i = m.Nearest(c.components())
				cache[c] = i
			}
			counts[i]++
		}
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	p := make(Palette, 0, n)
	for _, i := range order {
		if len(p) == n || counts[i] == 0 {
			break
		}
		p = append(p, candidates[i])
	}

	return p.padWith(n, darkest(candidates))
}

// QuantizePalette returns an adaptive palette of n colors produced by the
// go-quantize median cut quantizer, which weights buckets by pixel count.
func QuantizePalette(img *raster.Image, n int) Palette {
	q := quantize.MedianCutQuantizer{}

	cp := q.Quantize(make(color.Palette, 0, n), img)

	p := make(Palette, 0, n)
	for _, c := range cp {
		if len(p) == n {
			break
		}
		p = append(p, FromColor(c))
	}

	return p.Pad(n)
}
