/*
Package raster implements the floating point RGB working buffer used by every
stage of a conversion.

Components are stored unclamped so that error diffusion can carry values
outside of the displayable range between pixels, however every stage that
produces new values is expected to call Clamp before handing the buffer on.
*/
package raster

import (
	"errors"
	"image"
	"image/color"
)

// ErrEmpty is returned when the source image has no pixels.
var ErrEmpty = errors.New("raster: empty image")

const channels = 3

// Image is a dense RGB buffer with float64 components. It implements
// image.Image so it can be handed directly to filters and quantizers.
type Image struct {
	Width  int
	Height int
	// Pix holds the components in R, G, B order, row by row
	Pix []float64
}

// New returns a black image of the given dimensions.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*channels),
	}
}

// FromImage copies m into a new working buffer. Any alpha is composited
// against black.
func FromImage(m image.Image) (*Image, error) {
	if m == nil {
		return nil, ErrEmpty
	}

	b := m.Bounds()
	if b.Empty() {
		return nil, ErrEmpty
	}

	img := New(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := m.At(x, y).RGBA()
			img.Set(x-b.Min.X, y-b.Min.Y, float64(r>>8), float64(g>>8), float64(bl>>8))
		}
	}

	return img, nil
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	dup := &Image{
		Width:  m.Width,
		Height: m.Height,
		Pix:    make([]float64, len(m.Pix)),
	}
	copy(dup.Pix, m.Pix)
	return dup
}

func (m *Image) offset(x, y int) int {
	return (y*m.Width + x) * channels
}

// In reports whether (x, y) lies within the image.
func (m *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// RGB returns the components at (x, y).
func (m *Image) RGB(x, y int) (float64, float64, float64) {
	i := m.offset(x, y)
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set replaces the components at (x, y).
func (m *Image) Set(x, y int, r, g, b float64) {
	i := m.offset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Add accumulates the given deltas into the components at (x, y).
func (m *Image) Add(x, y int, dr, dg, db float64) {
	i := m.offset(x, y)
	m.Pix[i] += dr
	m.Pix[i+1] += dg
	m.Pix[i+2] += db
}

// Luminance returns the Rec. 601 luma of the pixel at (x, y).
func (m *Image) Luminance(x, y int) float64 {
	return Luma(m.RGB(x, y))
}

// Mean returns the average color of the whole image.
func (m *Image) Mean() (float64, float64, float64) {
	var r, g, b float64
	for i := 0; i < len(m.Pix); i += channels {
		r += m.Pix[i]
		g += m.Pix[i+1]
		b += m.Pix[i+2]
	}
	n := float64(m.Width * m.Height)
	if n == 0 {
		return 0, 0, 0
	}
	return r / n, g / n, b / n
}

// Clamp limits every component to [0, 255].
func (m *Image) Clamp() {
	for i, v := range m.Pix {
		m.Pix[i] = Clamp(v)
	}
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	if !m.In(x, y) {
		return color.NRGBA{}
	}
	r, g, b := m.RGB(x, y)
	return color.NRGBA{Byte(r), Byte(g), Byte(b), 0xff}
}

// NRGBA returns a clamped 8-bit copy of the image.
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(m.Bounds())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.RGB(x, y)
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = Byte(r)
			dst.Pix[i+1] = Byte(g)
			dst.Pix[i+2] = Byte(b)
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

// Clamp limits v to [0, 255].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return v
	}
}

// Byte clamps and rounds v to a byte.
func Byte(v float64) uint8 {
	return uint8(Clamp(v) + 0.5)
}

// Luma returns the Rec. 601 luma of the given components.
func Luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}
