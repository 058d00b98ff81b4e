package palette

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(w, h int, f func(x, y int) Color) *raster.Image {
	m := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := f(x, y)
			m.Set(x, y, float64(c.R), float64(c.G), float64(c.B))
		}
	}
	return m
}

func TestNearestTieLowestIndex(t *testing.T) {
	p := Palette{{0, 0, 0}, {100, 0, 0}, {100, 0, 0}, {200, 0, 0}}
	f := metric.Euclidean.Func()

	assert.Equal(t, 0, p.Nearest(50, 0, 0, f))
	assert.Equal(t, 1, p.Nearest(100, 0, 0, f))
	assert.Equal(t, 1, p.Nearest(150, 0, 0, f))
	assert.Equal(t, 3, p.Nearest(255, 0, 0, f))
}

func TestTreeMatchesLinear(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, size := range []int{1, 2, 16, 64, 256} {
		p := make(Palette, size)
		for i := range p {
			// Coarse values make ties and duplicates likely
			p[i] = Color{uint8(r.Intn(4) * 85), uint8(r.Intn(4) * 85), uint8(r.Intn(4) * 85)}
		}

		for _, k := range []metric.Kind{metric.Euclidean, metric.Mahalanobis} {
			w, ok := k.Weights()
			require.True(t, ok)

			tree := NewTree(p, w)
			assert.Equal(t, size, tree.Len())

			f := k.Func()
			for i := 0; i < 500; i++ {
				q := [3]float64{float64(r.Intn(256)), float64(r.Intn(256)), float64(r.Intn(256))}
				assert.Equal(t, p.Nearest(q[0], q[1], q[2], f), tree.Nearest(q[0], q[1], q[2]), "size %d kind %s query %v", size, k, q)
			}
		}
	}
}

func TestNewMatcher(t *testing.T) {
	small := AtariST.Colors()[:16]
	big := AtariST.Colors()

	assert.IsType(t, &Linear{}, NewMatcher(small, metric.Euclidean))
	assert.IsType(t, &Tree{}, NewMatcher(big, metric.Euclidean))
	assert.IsType(t, &Tree{}, NewMatcher(big, metric.Mahalanobis))
	assert.IsType(t, &Tree{}, NewMatcher(big, metric.Perceptive))
	assert.IsType(t, &Linear{}, NewMatcher(small, metric.Perceptive))
	assert.IsType(t, &Linear{}, NewMatcher(big, metric.Hue))
}

func TestBoundedTreeMatchesLinear(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	p := make(Palette, 256)
	for i := range p {
		p[i] = Color{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256))}
	}
	// Duplicates must still resolve to the lowest index
	p[200] = p[10]

	m := NewMatcher(p, metric.Perceptive)
	require.IsType(t, &Tree{}, m)

	f := metric.Perceptive.Func()
	for i := 0; i < 2000; i++ {
		q := [3]float64{float64(r.Intn(256)), float64(r.Intn(256)), float64(r.Intn(256))}
		assert.Equal(t, p.Nearest(q[0], q[1], q[2], f), m.Nearest(q[0], q[1], q[2]), "query %v", q)
	}

	c := p[10]
	assert.Equal(t, 10, m.Nearest(float64(c.R), float64(c.G), float64(c.B)))
}

func TestGamuts(t *testing.T) {
	tables := []struct {
		gamut Gamut
		size  int
		index int
		color Color
	}{
		{Mono, 2, 1, Color{255, 255, 255}},
		{AtariST, 512, 511, Color{255, 255, 255}},
		{AtariST, 512, 1, Color{0, 0, 36}},
		{AmigaOCS, 4096, 0x0f0, Color{0, 255, 0}},
		{MegaDrive, 512, 7, Color{0, 0, 224}},
		{EGA, 64, 0x3f, Color{255, 255, 255}},
		{EGA, 64, 0x04, Color{0xaa, 0, 0}},
		{EGA, 64, 0x20, Color{0x55, 0, 0}},
		{CGA, 16, 6, Color{0xaa, 0x55, 0x00}},
		{CGAMode4, 4, 2, Color{0xff, 0x55, 0xff}},
		{ZXSpectrum, 16, 4, Color{0xd7, 0, 0}},
		{ZXSpectrum, 16, 13, Color{0xff, 0xff, 0}},
		{C64, 16, 2, Color{0x68, 0x37, 0x2b}},
		{Plus4, 128, 0x12, Color{0x59, 0x14, 0x17}},
		{Plus4, 128, 0x71, Color{0xff, 0xff, 0xff}},
		{Atari800, 128, 3, Color{109, 109, 109}},
		{Atari800, 128, 8, Color{73, 0, 0}},
		{CoCo4, 4, 2, Color{0xff, 0xff, 0x00}},
		{CoCo2, 2, 1, Color{0x00, 0xff, 0x00}},
		{TMS9918, 16, 4, Color{0x54, 0x55, 0xed}},
		{V9938, 512, 511, Color{255, 255, 255}},
		{RGB332, 256, 0xe0, Color{0, 252, 0}},
		{RGB332, 256, 0x03, Color{0, 0, 255}},
		{CPC, 27, 1, Color{0x00, 0x02, 0x6b}},
		{CPC, 27, 26, Color{0xff, 0xf3, 0xf9}},
	}

	for _, table := range tables {
		t.Run(table.gamut.String(), func(t *testing.T) {
			p := table.gamut.Colors()
			assert.Len(t, p, table.size)
			assert.Equal(t, table.color, p[table.index])
		})
	}

	assert.Nil(t, Adaptive.Colors())
}

func TestFrequent(t *testing.T) {
	candidates := Palette{{0, 0, 0}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255}}

	// Three green, two blue, two red, one near-black pixel
	row := []Color{{0, 250, 0}, {0, 255, 0}, {10, 240, 5}, {0, 0, 255}, {0, 0, 200}, {255, 0, 0}, {200, 0, 0}, {5, 5, 5}}
	img := fill(len(row), 1, func(x, _ int) Color { return row[x] })

	assert.Equal(t, Palette{{0, 255, 0}, {255, 0, 0}, {0, 0, 255}}, Frequent(img, candidates, 3))
	assert.Equal(t, Palette{{0, 255, 0}, {255, 0, 0}, {0, 0, 255}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, Frequent(img, candidates, 6))

	// Padding stays inside a gamut without black
	cpc := CPC.Colors()
	p := Frequent(fill(4, 1, func(int, int) Color { return Color{0xff, 0xf3, 0xf9} }), cpc, 3)
	assert.Equal(t, Palette{cpc[26], cpc[0], cpc[0]}, p)
	assert.Equal(t, Palette{cpc[26], cpc[0]}, Snap(Palette{{255, 255, 255}, {250, 250, 250}}, cpc))
}

func TestFrequentDeterministic(t *testing.T) {
	img := fill(16, 16, func(x, y int) Color { return Color{uint8(x * 16), uint8(y * 16), uint8(x ^ y)} })
	assert.Equal(t, Frequent(img, AtariST.Colors(), 16), Frequent(img, AtariST.Colors(), 16))
}

func TestMedianCutThreeColors(t *testing.T) {
	colors := []Color{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	img := fill(10, 10, func(x, y int) Color {
		// Deliberately uneven counts
		switch {
		case y < 8:
			return colors[0]
		case x < 9:
			return colors[1]
		default:
			return colors[2]
		}
	})

	p := MedianCutPalette(img, 8)
	require.Len(t, p, 8)

	distinct := make(map[Color]struct{})
	for _, c := range p[:3] {
		assert.NotEqual(t, -1, Palette(colors).Index(c))
		distinct[c] = struct{}{}
	}
	assert.Len(t, distinct, 3)
	for _, c := range p[3:] {
		assert.Equal(t, Black, c)
	}
}

func TestMedianCutAverages(t *testing.T) {
	img := fill(4, 1, func(x, _ int) Color { return Color{uint8(x * 10), 0, 0} })

	assert.Equal(t, Palette{{5, 0, 0}, {25, 0, 0}}, MedianCutPalette(img, 2))
	assert.Equal(t, Palette{{0, 0, 0}, {20, 0, 0}, {10, 0, 0}, {30, 0, 0}}, MedianCutPalette(img, 4))
	assert.Equal(t, Palette{}, MedianCutPalette(img, 0))
}

func TestQuantizePalette(t *testing.T) {
	img := fill(8, 8, func(x, y int) Color { return Color{uint8(x * 32), uint8(y * 32), 0} })

	assert.Len(t, QuantizePalette(img, 16), 16)
	assert.Len(t, QuantizePalette(img, 4), 4)
}

func TestSnap(t *testing.T) {
	p := Palette{{250, 250, 250}, {255, 255, 255}, {10, 0, 0}}
	assert.Equal(t, Palette{{255, 255, 255}, {0, 0, 0}, {0, 0, 0}}, Snap(p, Mono.Colors()))
	assert.Equal(t, p, Snap(p, nil))
}

func TestSelect(t *testing.T) {
	img := fill(4, 4, func(x, y int) Color { return Color{uint8(x * 80), uint8(y * 80), 0} })

	assert.Equal(t, C64.Colors(), Select(Fixed, img, C64.Colors(), 16))
	assert.Len(t, Select(Auto, img, AtariST.Colors(), 16), 16)
	assert.Len(t, Select(Auto, img, nil, 256), 256)
	assert.Len(t, Select(Quantize, img, EGA.Colors(), 16), 16)
	assert.Len(t, Select(Fixed, img, nil, 8), 8)

	for _, c := range Select(MedianCut, img, EGA.Colors(), 16) {
		assert.NotEqual(t, -1, EGA.Colors().Index(c))
	}
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("median-cut")
	assert.True(t, ok)
	assert.Equal(t, MedianCut, m)

	m, ok = ParseMethod("octree")
	assert.False(t, ok)
	assert.Equal(t, Auto, m)
}

func TestColor(t *testing.T) {
	c := Color{0x12, 0x34, 0x56}
	assert.Equal(t, "#123456", c.String())
	assert.Equal(t, c, FromColor(c))
	assert.Equal(t, color.RGBA{0x12, 0x34, 0x56, 0xff}, Palette{c}.Color()[0])
}
