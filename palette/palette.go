/*
Package palette implements colors, palettes, the fixed hardware color gamuts
and the strategies used to choose a global palette for an image.

A palette is ordered; the index of a color is the hardware color register it
will be loaded into.
*/
package palette

import (
	"fmt"
	"image/color"

	"github.com/bodgit/bitpast/metric"
)

// Color is an 8-bit RGB color. It implements color.Color.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) components() (float64, float64, float64) {
	return float64(c.R), float64(c.G), float64(c.B)
}

// Black is the padding color.
var Black = Color{}

// FromColor converts any color.Color, compositing alpha against black.
func FromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// Palette is an ordered list of colors.
type Palette []Color

// Color returns p as a color.Palette suitable for image.Paletted.
func (p Palette) Color() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = color.RGBA{c.R, c.G, c.B, 0xff}
	}
	return cp
}

// Pad returns p extended with black up to n entries. It never truncates.
func (p Palette) Pad(n int) Palette {
	for len(p) < n {
		p = append(p, Black)
	}
	return p
}

// Nearest returns the index of the color in p closest to (r, g, b) under f.
// The lowest index wins any tie.
func (p Palette) Nearest(r, g, b float64, f metric.Func) int {
	best, bestDist := 0, 0.0
	for i, c := range p {
		cr, cg, cb := c.components()
		d := f(r, g, b, cr, cg, cb)
		if i == 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Index returns the index of the first occurrence of c, or -1.
func (p Palette) Index(c Color) int {
	for i, pc := range p {
		if pc == c {
			return i
		}
	}
	return -1
}

// Matcher finds the nearest palette entry for a color.
type Matcher interface {
	Nearest(r, g, b float64) int
}

// Linear scans every palette entry.
type Linear struct {
	palette Palette
	f       metric.Func
}

// NewLinear returns a Matcher that scans p using the distance function f.
func NewLinear(p Palette, f metric.Func) *Linear {
	return &Linear{
		palette: p,
		f:       f,
	}
}

// Nearest implements Matcher.
func (l *Linear) Nearest(r, g, b float64) int {
	return l.palette.Nearest(r, g, b, l.f)
}

// treeThreshold is the palette size at which lookups switch to a k-d tree.
const treeThreshold = 64

// NewMatcher returns the fastest exact Matcher for p under the metric k. A
// k-d tree is used for large palettes when k is a weighted sum of squares,
// or is bounded below by one, otherwise every entry is scanned.
func NewMatcher(p Palette, k metric.Kind) Matcher {
	if len(p) >= treeThreshold {
		if w, ok := k.Weights(); ok {
			return NewTree(p, w)
		}
		if w, ok := k.Bounds(); ok {
			return NewBoundedTree(p, w, k.Func())
		}
	}
	return NewLinear(p, k.Func())
}
