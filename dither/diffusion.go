package dither

import (
	"image"

	"github.com/bodgit/bitpast/raster"
	edm "github.com/makeworld-the-better-one/dither/v2"
)

// Tap is one neighbor receiving a share of the quantization error.
type Tap struct {
	DX, DY int
	Weight float64
}

// Kernel is an error diffusion kernel expressed as offsets from the current
// pixel. Every tap lies ahead of the current pixel in raster order.
type Kernel struct {
	Taps []Tap
}

// Sum returns the fraction of the error the kernel distributes.
func (k *Kernel) Sum() float64 {
	var s float64
	for _, t := range k.Taps {
		s += t.Weight
	}
	return s
}

// newKernel converts a matrix in which the current pixel sits immediately
// left of the first non-zero entry of the top row.
func newKernel(m edm.ErrorDiffusionMatrix) *Kernel {
	cx := 0
	for x, w := range m[0] {
		if w != 0 {
			cx = x - 1
			break
		}
	}

	k := new(Kernel)
	for y, row := range m {
		for x, w := range row {
			if w == 0 {
				continue
			}
			k.Taps = append(k.Taps, Tap{
				DX:     x - cx,
				DY:     y,
				Weight: float64(w),
			})
		}
	}
	return k
}

var kernels = map[Algorithm]*Kernel{
	FloydSteinberg: newKernel(edm.FloydSteinberg),
	Atkinson:       newKernel(edm.Atkinson),
}

// Kernel returns the diffusion kernel for a, or nil.
func (a Algorithm) Kernel() *Kernel {
	return kernels[a]
}

// Diffuser distributes quantization error through a working buffer. Error is
// only ever written to pixels inside the current bounds that have not yet
// been quantized.
type Diffuser struct {
	img    *raster.Image
	kernel *Kernel
	amount float64
	bounds image.Rectangle
	done   []bool
}

// NewDiffuser returns a Diffuser over the whole of img. The error is scaled by
// amount before it is distributed.
func NewDiffuser(img *raster.Image, k *Kernel, amount float64) *Diffuser {
	return &Diffuser{
		img:    img,
		kernel: k,
		amount: amount,
		bounds: img.Bounds(),
		done:   make([]bool, img.Width*img.Height),
	}
}

// Confine returns a Diffuser sharing the same buffer whose error never
// leaves r.
func (d *Diffuser) Confine(r image.Rectangle) *Diffuser {
	dup := *d
	dup.bounds = r.Intersect(d.img.Bounds())
	return &dup
}

// Done reports whether pixel (x, y) has been quantized.
func (d *Diffuser) Done(x, y int) bool {
	return d.done[y*d.img.Width+x]
}

// Spread marks pixel (x, y) as quantized and distributes its quantization
// error, the input minus the chosen color, to its neighbors. The share of
// taps that cannot receive error is divided among those that can, so the
// kernel total is kept at image and block edges.
func (d *Diffuser) Spread(x, y int, er, eg, eb float64) {
	d.done[y*d.img.Width+x] = true

	var avail float64
	for _, t := range d.kernel.Taps {
		if d.open(x+t.DX, y+t.DY) {
			avail += t.Weight
		}
	}
	if avail == 0 {
		return
	}

	scale := d.amount * d.kernel.Sum() / avail
	er *= scale
	eg *= scale
	eb *= scale

	for _, t := range d.kernel.Taps {
		nx, ny := x+t.DX, y+t.DY
		if !d.open(nx, ny) {
			continue
		}
		d.img.Add(nx, ny, er*t.Weight, eg*t.Weight, eb*t.Weight)
	}
}

// open reports whether pixel (x, y) can still receive error
func (d *Diffuser) open(x, y int) bool {
	return (image.Point{x, y}).In(d.bounds) && !d.done[y*d.img.Width+x]
}
