package preprocess

import (
	"image"

	"github.com/bodgit/bitpast/raster"
	"github.com/disintegration/gift"
)

// Filter selects a convolution filter.
type Filter int

const (
	// NoFilter leaves the image alone
	NoFilter Filter = iota
	// Lowpass is a 3x3 box blur
	Lowpass
	// Sharpen is a 3x3 sharpening kernel
	Sharpen
	// Emboss is a 3x3 emboss kernel
	Emboss
	// Edge blends a Sobel edge magnitude with the source
	Edge
)

var filterNames = [...]string{
	NoFilter: "none",
	Lowpass:  "lowpass",
	Sharpen:  "sharpen",
	Emboss:   "emboss",
	Edge:     "edge",
}

func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return "unknown"
	}
	return filterNames[f]
}

// ParseFilter returns the Filter with the given name.
func ParseFilter(s string) (Filter, bool) {
	for i, n := range filterNames {
		if n == s {
			return Filter(i), true
		}
	}
	return NoFilter, false
}

var kernels = map[Filter][]float32{
	Lowpass: {
		1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9,
	},
	Sharpen: {
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	},
	Emboss: {
		-2, -1, 0,
		-1, 1, 1,
		0, 1, 2,
	},
}

func (f Filter) gift() gift.Filter {
	if f == Edge {
		return gift.Sobel()
	}
	if k, ok := kernels[f]; ok {
		return gift.Convolution(k, false, false, false, 0)
	}
	return nil
}

// Convolve runs the filter f over img in place.
func Convolve(img *raster.Image, f Filter) {
	g := f.gift()
	if g == nil {
		return
	}

	src := img.NRGBA()
	dst := image.NewNRGBA(src.Bounds())
	g.Draw(dst, src, &gift.Options{
		Parallelization: true,
	})

	if f == Edge {
		blend(img, dst)
		return
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := dst.PixOffset(x, y)
			img.Set(x, y, float64(dst.Pix[i]), float64(dst.Pix[i+1]), float64(dst.Pix[i+2]))
		}
	}
}

// blend averages the edge magnitudes with the current contents of img
func blend(img *raster.Image, edges *image.NRGBA) {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := edges.PixOffset(x, y)
			r, g, b := img.RGB(x, y)
			img.Set(x, y,
				raster.Clamp((r+float64(edges.Pix[i]))*0.5),
				raster.Clamp((g+float64(edges.Pix[i+1]))*0.5),
				raster.Clamp((b+float64(edges.Pix[i+2]))*0.5))
		}
	}
}
