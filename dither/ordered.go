package dither

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/bodgit/bitpast/raster"
	"golang.org/x/sync/errgroup"
)

const goldenRatio = 0.618033988749895

// Strength is the spread, on the 0 to 255 channel scale, of the offsets an
// ordered or noise algorithm adds at full amount.
type Strength struct {
	Ordered float64
	Noise   float64
}

// DefaultStrength is used unless a profile sets its own.
var DefaultStrength = Strength{Ordered: 64, Noise: 32}

// Matrix is a square threshold matrix tiled across the image.
type Matrix struct {
	Size   int
	Values []float64
}

// At returns the threshold for pixel (x, y).
func (m *Matrix) At(x, y int) float64 {
	return m.Values[(y%m.Size)*m.Size+x%m.Size]
}

// Max returns the value thresholds are normalised against.
func (m *Matrix) Max() float64 {
	return float64(m.Size * m.Size)
}

// Offset returns the amount added to each channel of pixel (x, y) when the
// offsets spread across strength.
func (m *Matrix) Offset(x, y int, strength float64) float64 {
	return (m.At(x, y)/m.Max() - 0.5) * strength
}

// bayer builds the matrix of the given power of two size by recursive
// doubling of the 2x2 base.
func bayer(size int) *Matrix {
	m := &Matrix{Size: 1, Values: []float64{0}}
	for m.Size < size {
		n := m.Size * 2
		v := make([]float64, n*n)
		for y := 0; y < m.Size; y++ {
			for x := 0; x < m.Size; x++ {
				b := 4 * m.Values[y*m.Size+x]
				v[y*n+x] = b
				v[y*n+x+m.Size] = b + 2
				v[(y+m.Size)*n+x] = b + 3
				v[(y+m.Size)*n+x+m.Size] = b + 1
			}
		}
		m = &Matrix{Size: n, Values: v}
	}
	return m
}

func bayer16() *Matrix {
	base := bayer(4)
	m := &Matrix{Size: 16, Values: make([]float64, 256)}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			m.Values[y*16+x] = base.At(x%4, y%4)*16 + base.At(x/4, y/4)
		}
	}
	return m
}

func blueNoise(size int) *Matrix {
	m := &Matrix{Size: size, Values: make([]float64, size*size)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			hash := float64((x*12345+y*67890)&0xffff) / 65536
			_, frac := math.Modf(hash + goldenRatio)
			m.Values[y*size+x] = frac * float64(size*size)
		}
	}
	return m
}

type lazyMatrix struct {
	once   sync.Once
	build  func() *Matrix
	matrix *Matrix
}

var matrices = map[Algorithm]*lazyMatrix{
	Bayer2:      {build: func() *Matrix { return bayer(2) }},
	Bayer4:      {build: func() *Matrix { return bayer(4) }},
	Bayer8:      {build: func() *Matrix { return bayer(8) }},
	Bayer16:     {build: bayer16},
	BlueNoise8:  {build: func() *Matrix { return blueNoise(8) }},
	BlueNoise16: {build: func() *Matrix { return blueNoise(16) }},
}

// Matrix returns the threshold matrix for an ordered algorithm, or nil. The
// matrix is built on first use and shared.
func (a Algorithm) Matrix() *Matrix {
	l, ok := matrices[a]
	if !ok {
		return nil
	}
	l.once.Do(func() {
		l.matrix = l.build()
	})
	return l.matrix
}

// Apply runs an ordered or noise algorithm over img in place with the
// default strength.
func Apply(img *raster.Image, a Algorithm, amount float64) error {
	return DefaultStrength.Apply(img, a, amount)
}

// Apply runs an ordered or noise algorithm over img in place, clamping the
// result. Any other algorithm leaves img untouched.
func (s Strength) Apply(img *raster.Image, a Algorithm, amount float64) error {
	switch {
	case a == Noise:
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				n := (rand.Float64() - 0.5) * s.Noise * amount
				img.Add(x, y, n, n, n)
			}
		}
		img.Clamp()
		return nil
	case a.Ordered():
		m := a.Matrix()
		strength := s.Ordered * amount

		g := new(errgroup.Group)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for y := 0; y < img.Height; y++ {
			y := y
			g.Go(func() error {
				for x := 0; x < img.Width; x++ {
					o := m.Offset(x, y, strength)
					r, gr, b := img.RGB(x, y)
					img.Set(x, y, raster.Clamp(r+o), raster.Clamp(gr+o), raster.Clamp(b+o))
				}
				return nil
			})
		}
		return g.Wait()
	default:
		return nil
	}
}
