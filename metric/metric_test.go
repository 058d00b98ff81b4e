package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var samples = [][3]float64{
	{0, 0, 0},
	{255, 255, 255},
	{255, 0, 0},
	{0, 0, 255},
	{104, 55, 43},
	{112, 164, 178},
	{128, 128, 128},
	{3, 200, 17},
}

func TestParse(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := Parse(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	got, ok := Parse("cielab")
	assert.False(t, ok)
	assert.Equal(t, Default, got)
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestDistanceProperties(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			f := k.Func()
			for _, a := range samples {
				assert.Equal(t, 0.0, f(a[0], a[1], a[2], a[0], a[1], a[2]))
				for _, b := range samples {
					d := f(a[0], a[1], a[2], b[0], b[1], b[2])
					assert.GreaterOrEqual(t, d, 0.0)
					assert.InDelta(t, d, f(b[0], b[1], b[2], a[0], a[1], a[2]), 1e-9)
					if a != b {
						assert.Greater(t, d, 0.0)
					}
				}
			}
		})
	}
}

func TestWeights(t *testing.T) {
	for _, k := range Kinds() {
		w, ok := k.Weights()
		if !ok {
			continue
		}
		f := k.Func()
		for _, a := range samples {
			for _, b := range samples {
				dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
				assert.InDelta(t, w[0]*dr*dr+w[1]*dg*dg+w[2]*db*db, f(a[0], a[1], a[2], b[0], b[1], b[2]), 1e-9)
			}
		}
	}

	_, ok := Perceptive.Weights()
	assert.False(t, ok)
}

func TestBounds(t *testing.T) {
	for _, k := range Kinds() {
		w, ok := k.Bounds()
		if !ok {
			continue
		}
		f := k.Func()
		for _, a := range samples {
			for _, b := range samples {
				dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
				assert.LessOrEqual(t, w[0]*dr*dr+w[1]*dg*dg+w[2]*db*db, f(a[0], a[1], a[2], b[0], b[1], b[2])+1e-9, "%s %v %v", k, a, b)
			}
		}
	}

	_, ok := Perceptive.Bounds()
	assert.True(t, ok)
	_, ok = Hue.Bounds()
	assert.False(t, ok)
}

func TestKnownValues(t *testing.T) {
	assert.Equal(t, 3*255.0*255.0, Euclidean.Func()(0, 0, 0, 255, 255, 255))
	assert.Equal(t, 2.5*100, Mahalanobis.Func()(10, 0, 0, 0, 0, 0))

	// Pure luminance step between greys
	assert.InDelta(t, 30+0.1*17.320508, Luma.Func()(0, 0, 0, 10, 10, 10), 1e-5)

	// Same chroma, different brightness
	assert.InDelta(t, 0.2*100, Chroma.Func()(50, 50, 50, 150, 150, 150), 1e-9)

	// Opposite hues at full saturation and equal lightness
	assert.InDelta(t, 255*4, Hue.Func()(255, 0, 0, 0, 255, 255), 1e-6)
}
