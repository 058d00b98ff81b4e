/*
Package preprocess implements the color and contrast adjustments applied to
the working buffer before dithering.

The stages run in a fixed order: saturation, gamma, contrast enhancement and
finally one convolution filter. Every stage clamps its output.
*/
package preprocess

import (
	"math"

	"github.com/bodgit/bitpast/raster"
)

// Contrast selects a contrast enhancement method.
type Contrast int

const (
	// NoContrast leaves contrast alone
	NoContrast Contrast = iota
	// HE is global histogram equalization of the luminance
	HE
	// CLAHE is tiled, contrast limited, adaptive histogram equalization
	CLAHE
	// SWAHE is sliding window adaptive histogram equalization
	SWAHE
)

var contrastNames = [...]string{
	NoContrast: "none",
	HE:         "he",
	CLAHE:      "clahe",
	SWAHE:      "swahe",
}

func (c Contrast) String() string {
	if c < 0 || int(c) >= len(contrastNames) {
		return "unknown"
	}
	return contrastNames[c]
}

// ParseContrast returns the Contrast with the given name.
func ParseContrast(s string) (Contrast, bool) {
	for i, n := range contrastNames {
		if n == s {
			return Contrast(i), true
		}
	}
	return NoContrast, false
}

const (
	claheTile  = 8
	claheClip  = 2.0
	swaheWidth = 64
)

// Options configures Apply. A Saturation or Gamma of 1 leaves the image
// unchanged, as does a Gamma that is not positive.
type Options struct {
	Saturation float64
	Gamma      float64
	Contrast   Contrast
	Filter     Filter
}

// Apply runs every configured stage over img in place.
func Apply(img *raster.Image, o Options) {
	if o.Saturation != 1 {
		Saturate(img, o.Saturation)
	}
	if o.Gamma > 0 && o.Gamma != 1 {
		Gamma(img, o.Gamma)
	}
	Enhance(img, o.Contrast)
	Convolve(img, o.Filter)
}

// Saturate moves every pixel away from, or towards, its own luminance by
// the factor s.
func Saturate(img *raster.Image, s float64) {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.RGB(x, y)
			gray := raster.Luma(r, g, b)
			img.Set(x, y,
				raster.Clamp(gray+(r-gray)*s),
				raster.Clamp(gray+(g-gray)*s),
				raster.Clamp(gray+(b-gray)*s))
		}
	}
}

// Gamma remaps every channel with v = (v/255)^(1/gamma) * 255.
func Gamma(img *raster.Image, gamma float64) {
	inv := 1 / gamma
	for i, v := range img.Pix {
		img.Pix[i] = raster.Clamp(math.Pow(raster.Clamp(v)/255, inv) * 255)
	}
}

// Enhance applies the contrast method c to img.
func Enhance(img *raster.Image, c Contrast) {
	switch c {
	case HE:
		Equalize(img)
	case CLAHE:
		EqualizeTiles(img, claheTile, claheClip)
	case SWAHE:
		EqualizeWindow(img, swaheWidth)
	}
}

type histogram [256]int

func lumaBin(img *raster.Image, x, y int) int {
	return int(raster.Clamp(img.Luminance(x, y)))
}

// lut returns the equalization table for h which holds count samples
func (h *histogram) lut(count int) [256]float64 {
	var cdf [256]int
	cdf[0] = h[0]
	for i := 1; i < len(h); i++ {
		cdf[i] = cdf[i-1] + h[i]
	}

	min := 0
	for _, c := range cdf {
		if c > 0 {
			min = c
			break
		}
	}

	var t [256]float64
	d := count - min
	if d < 1 {
		d = 1
	}
	for i, c := range cdf {
		t[i] = float64((c - min) * 255 / d)
	}
	return t
}

// rescale scales all three channels of (x, y) in src so that its luminance
// bin moves to l, writing the result to dst
func rescale(dst, src *raster.Image, x, y, bin int, l float64) {
	r, g, b := src.RGB(x, y)
	if bin > 0 {
		n := float64(bin)
		r, g, b = r*l/n, g*l/n, b*l/n
	}
	dst.Set(x, y, raster.Clamp(r), raster.Clamp(g), raster.Clamp(b))
}

// Equalize performs global histogram equalization on the luminance,
// scaling the chroma by the same ratio.
func Equalize(img *raster.Image) {
	var h histogram
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			h[lumaBin(img, x, y)]++
		}
	}

	t := h.lut(img.Width * img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			bin := lumaBin(img, x, y)
			rescale(img, img, x, y, bin, t[bin])
		}
	}
}

// EqualizeTiles performs contrast limited equalization independently on each
// tile by tile square. Histogram bins above clip times the mean bin height
// are cut and the excess spread evenly over every bin.
func EqualizeTiles(img *raster.Image, tile int, clip float64) {
	tilesX := (img.Width + tile - 1) / tile
	tilesY := (img.Height + tile - 1) / tile

	luts := make([][256]float64, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var h histogram
			count := 0
			for y := ty * tile; y < (ty+1)*tile && y < img.Height; y++ {
				for x := tx * tile; x < (tx+1)*tile && x < img.Width; x++ {
					h[lumaBin(img, x, y)]++
					count++
				}
			}

			limit := int(clip * float64(count) / 256)
			if limit < 1 {
				limit = 1
			}
			excess := 0
			for i, v := range h {
				if v > limit {
					excess += v - limit
					h[i] = limit
				}
			}
			for i := range h {
				h[i] += excess / len(h)
			}
			// Spread what is left over evenly across the range
			if rem := excess % len(h); rem > 0 {
				for i := 0; i < rem; i++ {
					h[i*len(h)/rem]++
				}
			}

			luts[ty*tilesX+tx] = h.lut(count)
		}
	}

	src := img.Clone()
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			bin := lumaBin(src, x, y)
			rescale(img, src, x, y, bin, luts[(y/tile)*tilesX+x/tile][bin])
		}
	}
}

// EqualizeWindow performs adaptive equalization using the histogram of a
// window by window square centred on each pixel. The histogram is built once
// per row and then updated a column at a time as the window slides.
func EqualizeWindow(img *raster.Image, window int) {
	half := window / 2
	src := img.Clone()

	column := func(h *histogram, x, y0, y1, delta int) int {
		n := 0
		for y := y0; y < y1; y++ {
			h[lumaBin(src, x, y)] += delta
			n++
		}
		return n * delta
	}

	for y := 0; y < img.Height; y++ {
		y0, y1 := y-half, y+half
		if y0 < 0 {
			y0 = 0
		}
		if y1 > img.Height {
			y1 = img.Height
		}

		var h histogram
		count := 0
		for x := 0; x < half && x < img.Width; x++ {
			count += column(&h, x, y0, y1, 1)
		}

		for x := 0; x < img.Width; x++ {
			if x+half < img.Width {
				count += column(&h, x+half, y0, y1, 1)
			}
			if x-half-1 >= 0 {
				count += column(&h, x-half-1, y0, y1, -1)
			}

			bin := lumaBin(src, x, y)
			cdf := 0
			for i := 0; i <= bin; i++ {
				cdf += h[i]
			}
			d := count
			if d < 1 {
				d = 1
			}
			rescale(img, src, x, y, bin, float64(cdf*255/d))
		}
	}
}
