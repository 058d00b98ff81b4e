package palette

import (
	"sort"

	"github.com/bodgit/bitpast/raster"
)

type point [3]uint8

// box is a contiguous range of the shared point slice
type box struct {
	lo, hi     int
	axis, span int
}

func newBox(points []point, lo, hi int) box {
	axis, span := widest(points[lo:hi])
	return box{lo, hi, axis, span}
}

func (b box) len() int {
	return b.hi - b.lo
}

// widest returns the channel with the largest range and that range
func widest(points []point) (int, int) {
	lo := [3]uint8{255, 255, 255}
	var hi [3]uint8
	for _, p := range points {
		for c := 0; c < 3; c++ {
			if p[c] < lo[c] {
				lo[c] = p[c]
			}
			if p[c] > hi[c] {
				hi[c] = p[c]
			}
		}
	}

	axis, span := 0, -1
	for c := 0; c < 3; c++ {
		if r := int(hi[c]) - int(lo[c]); r > span {
			axis, span = c, r
		}
	}
	return axis, span
}

// cut returns the split position closest to the middle of points, which must
// be sorted on axis, that does not separate equal values on that axis
func cut(points []point, axis int) int {
	mid := len(points) / 2
	for d := 0; d < len(points); d++ {
		for _, i := range []int{mid - d, mid + d} {
			if i > 0 && i < len(points) && points[i-1][axis] != points[i][axis] {
				return i
			}
		}
	}
	return mid
}

// MedianCutPalette returns an adaptive palette of n colors. The box with the
// largest single channel range is repeatedly split on that channel at the
// median until there are n boxes or no box can be split; each box then
// contributes its average color and the palette is padded with black.
func MedianCutPalette(img *raster.Image, n int) Palette {
	if n <= 0 {
		return Palette{}
	}

	points := make([]point, 0, img.Width*img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.RGB(x, y)
			points = append(points, point{raster.Byte(r), raster.Byte(g), raster.Byte(b)})
		}
	}

	boxes := []box{newBox(points, 0, len(points))}
	for len(boxes) < n {
		split, span := -1, 0
		for i, b := range boxes {
			if b.len() >= 2 && b.span > span {
				split, span = i, b.span
			}
		}
		if split < 0 {
			break
		}

		b := boxes[split]
		s := points[b.lo:b.hi]
		sort.SliceStable(s, func(i, j int) bool {
			return s[i][b.axis] < s[j][b.axis]
		})

		m := b.lo + cut(s, b.axis)
		boxes[split] = newBox(points, b.lo, m)
		boxes = append(boxes, newBox(points, m, b.hi))
	}

	p := make(Palette, 0, n)
	for _, b := range boxes {
		if b.len() == 0 {
			continue
		}
		var sum [3]int
		for _, pt := range points[b.lo:b.hi] {
			for c := 0; c < 3; c++ {
				sum[c] += int(pt[c])
			}
		}
		l := b.len()
		p = append(p, Color{
			uint8((sum[0] + l/2) / l),
			uint8((sum[1] + l/2) / l),
			uint8((sum[2] + l/2) / l),
		})
	}

	return p.Pad(n)
}
