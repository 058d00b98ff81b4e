package bitpast

import (
	"errors"
	"image"
	"image/color"

	"github.com/bodgit/bitpast/pack"
	"github.com/bodgit/bitpast/palette"
	"github.com/bodgit/bitpast/profile"
	"golang.org/x/image/draw"
)

var errCorrupt = errors.New("bitpast: payload does not match profile")

// Result is a finished conversion.
type Result struct {
	Profile profile.Profile
	Config  Config
	// Palette is the global palette
	Palette palette.Palette
	Frame   *pack.Frame
	Payload *pack.Payload
}

// Restore rebuilds the result of converting with cfg from its payload.
func Restore(cfg Config, p *pack.Payload) (*Result, error) {
	prof := cfg.Profile
	w, h := prof.Size()

	f, err := prof.Layout.Unpack(p, w, h)
	if err != nil {
		return nil, err
	}
	if f.Palette == nil {
		f.Palette = prof.Word.Read(p.Stream(paletteStream))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if f.Global(x, y) >= len(f.Palette) {
				return nil, errCorrupt
			}
		}
	}

	return &Result{
		Profile: prof,
		Config:  cfg,
		Palette: f.Palette,
		Frame:   f,
		Payload: p,
	}, nil
}

// Image returns the quantized image at its native resolution.
func (r *Result) Image() *image.Paletted {
	f := r.Frame
	m := image.NewPaletted(image.Rect(0, 0, f.Width, f.Height), f.Palette.Color())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			m.SetColorIndex(x, y, uint8(f.Global(x, y)))
		}
	}
	return m
}

// Preview returns the quantized image with every pixel scaled to the aspect
// of the target machine.
func (r *Result) Preview() *image.RGBA {
	f := r.Frame
	src := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y)
			src.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 0xff})
		}
	}

	a := r.Profile.Aspect
	if a.X < 1 || a.Y < 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, f.Width*a.X, f.Height*a.Y))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// PaletteWords returns the global palette encoded as hardware color
// registers.
func (r *Result) PaletteWords() []byte {
	return r.Profile.Word.Table(r.Palette)
}
