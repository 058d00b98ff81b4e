/*
Package pack implements the serialization of quantized images into the memory
layouts used by the target machines.

Every layout turns a Frame into a Payload of one or more named byte streams
and back again. Planar layouts scatter the bits of each index across
bitplanes, packed layouts store several indices per byte, attribute layouts
store a bitmap of local indices alongside per-cell color attributes and tiled
layouts store 4-bit tiles that each select one of a small number of palette
banks.
*/
package pack

import (
	"errors"

	"github.com/bodgit/bitpast/block"
	"github.com/bodgit/bitpast/palette"
)

var (
	errIndex    = errors.New("pack: index does not fit in the available bits")
	errGeometry = errors.New("pack: frame geometry does not match layout")
	errStream   = errors.New("pack: missing or truncated stream")

	// ErrBanks is returned when the cell palettes cannot be packed into the
	// available palette banks
	ErrBanks = errors.New("pack: palette does not fit in banks")
)

// Frame is the input to, and output from, a Layout.
type Frame struct {
	Width  int
	Height int
	// CellWidth and CellHeight are zero when the frame has no cells
	CellWidth  int
	CellHeight int
	// Indices holds one index per pixel, row by row. It is a global palette
	// index when the frame has no cells, otherwise an index into the cell
	// palette.
	Indices []uint8
	// Cells holds the global palette indices available to each cell, in
	// cell raster order
	Cells   [][]int
	Palette palette.Palette
}

// NewFrame returns the Frame for a quantized image.
func NewFrame(r *block.Result) *Frame {
	f := &Frame{
		Width:   r.Width,
		Height:  r.Height,
		Palette: r.Palette,
	}

	if len(r.Blocks) == 0 {
		f.Indices = append([]uint8(nil), r.Indices...)
		return f
	}

	f.CellWidth, f.CellHeight = r.Geometry.Width, r.Geometry.Height
	f.Indices = make([]uint8, r.Width*r.Height)
	f.Cells = make([][]int, len(r.Blocks))
	for i := range r.Blocks {
		a := &r.Blocks[i]
		f.Cells[i] = append([]int(nil), a.Palette...)
		for y := a.Bounds.Min.Y; y < a.Bounds.Max.Y; y++ {
			for x := a.Bounds.Min.X; x < a.Bounds.Max.X; x++ {
				f.Indices[y*r.Width+x] = a.At(x, y)
			}
		}
	}

	return f
}

func (f *Frame) cellsX() int {
	return (f.Width + f.CellWidth - 1) / f.CellWidth
}

func (f *Frame) cellsY() int {
	return (f.Height + f.CellHeight - 1) / f.CellHeight
}

// Cell returns the number of the cell containing pixel (x, y).
func (f *Frame) Cell(x, y int) int {
	return (y/f.CellHeight)*f.cellsX() + x/f.CellWidth
}

// Global returns the global palette index of pixel (x, y).
func (f *Frame) Global(x, y int) int {
	i := int(f.Indices[y*f.Width+x])
	if f.Cells == nil {
		return i
	}
	return f.Cells[f.Cell(x, y)][i]
}

// At returns the color of pixel (x, y).
func (f *Frame) At(x, y int) palette.Color {
	return f.Palette[f.Global(x, y)]
}

// Layout converts between a Frame and its serialized form.
type Layout interface {
	Pack(*Frame) (*Payload, error)
	Unpack(p *Payload, width, height int) (*Frame, error)
}

func checkIndices(f *Frame, bits int) error {
	if len(f.Indices) != f.Width*f.Height {
		return errGeometry
	}
	for _, i := range f.Indices {
		if int(i)>>bits != 0 {
			return errIndex
		}
	}
	return nil
}

func checkCells(f *Frame) error {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if int(f.Indices[y*f.Width+x]) >= len(f.Cells[f.Cell(x, y)]) {
				return errIndex
			}
		}
	}
	return nil
}
