package pack

import "github.com/bodgit/bitpast/raster"

// Merge selects how two horizontally adjacent pixels become one.
type Merge int

const (
	// Average takes the mean of the pair
	Average Merge = iota
	// Brightest weights each pixel of the pair by its luminance
	Brightest
)

var mergeNames = [...]string{
	Average:   "average",
	Brightest: "brightest",
}

func (m Merge) String() string {
	if m < 0 || int(m) >= len(mergeNames) {
		return "unknown"
	}
	return mergeNames[m]
}

// ParseMerge returns the Merge with the given name.
func ParseMerge(s string) (Merge, bool) {
	for i, n := range mergeNames {
		if n == s {
			return Merge(i), true
		}
	}
	return Average, false
}

// Halve returns img at half the width by merging each pair of pixels. An odd
// final column is dropped.
func Halve(img *raster.Image, m Merge) *raster.Image {
	dst := raster.New(img.Width/2, img.Height)
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			r1, g1, b1 := img.RGB(x*2, y)
			r2, g2, b2 := img.RGB(x*2+1, y)

			w1, w2 := 0.5, 0.5
			if m == Brightest {
				l1, l2 := raster.Luma(r1, g1, b1), raster.Luma(r2, g2, b2)
				if sum := l1 + l2; sum > 0 {
					w1, w2 = l1/sum, l2/sum
				}
			}

			dst.Set(x, y, r1*w1+r2*w2, g1*w1+g2*w2, b1*w1+b2*w2)
		}
	}
	return dst
}
