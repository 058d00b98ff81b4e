/*
Package block implements the quantizer that assigns every pixel a color from
a global palette while honouring a per-block color budget.

The image is split into non-overlapping blocks of a fixed geometry. Each block
picks up to K colors from the global palette by frequency, optionally with one
or more colors shared by every block pinned to the first slots, and every
pixel in the block is then matched to the nearest of those local colors. A 1x1
geometry has no local constraint and matches against the global palette.
*/
package block

import (
	"errors"
	"image"

	"github.com/bodgit/bitpast/dither"
	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/palette"
)

const maxColors = 256

var (
	errPalette  = errors.New("block: palette must have between 1 and 256 colors")
	errGeometry = errors.New("block: invalid geometry")
	errShared   = errors.New("block: shared color is not in the palette")
)

// Geometry is the size of a block and the number of colors it may use.
type Geometry struct {
	Width  int
	Height int
	Colors int
}

// Flat reports whether g places no local constraint on the image.
func (g Geometry) Flat() bool {
	return g.Width == 1 && g.Height == 1
}

// Scope controls how far error diffusion may travel.
type Scope int

const (
	// ImageScope lets error flow across block boundaries into any pixel that
	// has not yet been quantized
	ImageScope Scope = iota
	// BlockScope keeps error inside the block that produced it, which also
	// makes blocks independent of each other
	BlockScope
)

func (s Scope) String() string {
	switch s {
	case ImageScope:
		return "image"
	case BlockScope:
		return "block"
	default:
		return "unknown"
	}
}

// Options configures Quantize.
type Options struct {
	Geometry Geometry
	Metric   metric.Kind
	// Dither is only consulted for error diffusion algorithms, ordered
	// dithering is expected to have been applied already
	Dither dither.Algorithm
	Amount float64
	Scope  Scope
	// Shared lists global palette indices pinned to the first local slots
	// of every block
	Shared []int
}

// Assignment is the outcome for one block.
type Assignment struct {
	// Bounds is the area of the image covered by the block
	Bounds image.Rectangle
	// Palette holds the global palette index of each local color
	Palette []int
	// Pixels holds the local color index of each pixel, row by row
	Pixels []uint8
}

// At returns the local index of the image pixel (x, y).
func (a *Assignment) At(x, y int) uint8 {
	return a.Pixels[(y-a.Bounds.Min.Y)*a.Bounds.Dx()+x-a.Bounds.Min.X]
}

// Distinct returns the number of different global colors used by the block.
func (a *Assignment) Distinct() int {
	seen := make(map[int]struct{}, len(a.Palette))
	for _, p := range a.Pixels {
		seen[a.Palette[p]] = struct{}{}
	}
	return len(seen)
}

// Result is the quantized image.
type Result struct {
	Width    int
	Height   int
	Geometry Geometry
	Palette  palette.Palette
	// Blocks is in block raster order and is empty for a flat geometry
	Blocks []Assignment
	// BlocksX is the number of blocks per row
	BlocksX int
	// Indices holds the global palette index of every pixel, row by row
	Indices []uint8
}

// Index returns the global palette index of pixel (x, y).
func (r *Result) Index(x, y int) uint8 {
	return r.Indices[y*r.Width+x]
}

// Block returns the assignment covering pixel (x, y), or nil for a flat
// geometry.
func (r *Result) Block(x, y int) *Assignment {
	if len(r.Blocks) == 0 {
		return nil
	}
	return &r.Blocks[(y/r.Geometry.Height)*r.BlocksX+x/r.Geometry.Width]
}

// Image returns the result as a paletted image.
func (r *Result) Image() *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, r.Width, r.Height), r.Palette.Color())
	copy(m.Pix, r.Indices)
	return m
}
