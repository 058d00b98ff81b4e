/*
Package metric implements the color distance functions used to match a pixel
against a palette.

Every distance is non-negative and zero only for identical colors. None of the
functions allocate as they are called for every pixel against every candidate
color.
*/
package metric

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind selects a distance function.
type Kind int

const (
	// Euclidean is the sum of squared component differences
	Euclidean Kind = iota
	// Perceptive weights the squared differences by the mean red level
	Perceptive
	// Luma is dominated by the luminance difference
	Luma
	// Chroma compares luminance-normalised chrominance
	Chroma
	// Hue compares hue, saturation and lightness
	Hue
	// Mahalanobis uses fixed per-channel weights
	Mahalanobis
)

// Default is used when a metric name is not recognised.
const Default = Perceptive

var names = [...]string{
	Euclidean:   "euclidean",
	Perceptive:  "perceptive",
	Luma:        "luma",
	Chroma:      "chroma",
	Hue:         "hue",
	Mahalanobis: "mahalanobis",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// Parse returns the Kind with the given name.
func Parse(s string) (Kind, bool) {
	for i, n := range names {
		if n == s {
			return Kind(i), true
		}
	}
	return Default, false
}

// Kinds returns every supported metric.
func Kinds() []Kind {
	k := make([]Kind, len(names))
	for i := range k {
		k[i] = Kind(i)
	}
	return k
}

// Func returns the distance between two colors given as components in the
// range [0, 255].
type Func func(r1, g1, b1, r2, g2, b2 float64) float64

// Func returns the distance function for k. Unknown kinds use Default.
func (k Kind) Func() Func {
	switch k {
	case Euclidean:
		return euclidean
	case Perceptive:
		return perceptive
	case Luma:
		return luma
	case Chroma:
		return chroma
	case Hue:
		return hue
	case Mahalanobis:
		return mahalanobis
	default:
		return Default.Func()
	}
}

// Weights returns the per-axis weights when k is a weighted sum of squared
// component differences, which is what a k-d tree search needs to prune
// exactly.
func (k Kind) Weights() ([3]float64, bool) {
	switch k {
	case Euclidean:
		return [3]float64{1, 1, 1}, true
	case Mahalanobis:
		return mahalanobisWeights, true
	default:
		return [3]float64{}, false
	}
}

// Bounds returns per-axis weights whose weighted sum of squares never exceeds
// the distance for k. Kinds with exact Weights return those.
func (k Kind) Bounds() ([3]float64, bool) {
	if w, ok := k.Weights(); ok {
		return w, true
	}
	if k == Perceptive {
		return perceptiveBounds, true
	}
	return [3]float64{}, false
}

var (
	mahalanobisWeights = [3]float64{2.5, 1, 3}

	// the red and blue weights of perceptive vary between 2 and 3
	perceptiveBounds = [3]float64{2, 4, 2}
)

func euclidean(r1, g1, b1, r2, g2, b2 float64) float64 {
	dr, dg, db := r1-r2, g1-g2, b1-b2
	return dr*dr + dg*dg + db*db
}

func perceptive(r1, g1, b1, r2, g2, b2 float64) float64 {
	rmean := (r1 + r2) / 2
	dr, dg, db := r1-r2, g1-g2, b1-b2
	return (2+rmean/256)*dr*dr + 4*dg*dg + (2+(255-rmean)/256)*db*db
}

func luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func luma(r1, g1, b1, r2, g2, b2 float64) float64 {
	dy := math.Abs(luminance(r1, g1, b1) - luminance(r2, g2, b2))
	return dy*3 + math.Sqrt(euclidean(r1, g1, b1, r2, g2, b2))*0.1
}

func ratios(r, g, b, y float64) (float64, float64, float64) {
	if y <= 1 {
		return 0, 0, 0
	}
	return r / y, g / y, b / y
}

func chroma(r1, g1, b1, r2, g2, b2 float64) float64 {
	y1, y2 := luminance(r1, g1, b1), luminance(r2, g2, b2)
	cr1, cg1, cb1 := ratios(r1, g1, b1, y1)
	cr2, cg2, cb2 := ratios(r2, g2, b2, y2)
	return math.Sqrt(euclidean(cr1, cg1, cb1, cr2, cg2, cb2))*255 + math.Abs(y1-y2)*0.2
}

func hue(r1, g1, b1, r2, g2, b2 float64) float64 {
	h1, s1, l1 := colorful.Color{R: r1 / 255, G: g1 / 255, B: b1 / 255}.Hsl()
	h2, s2, l2 := colorful.Color{R: r2 / 255, G: g2 / 255, B: b2 / 255}.Hsl()

	hd := math.Abs(h1 - h2)
	if hd > 180 {
		hd = 360 - hd
	}
	weight := 4 * math.Min(s1, s2)

	return hd/180*255*weight + math.Abs(s1-s2)*255 + math.Abs(l1-l2)*255*0.5
}

func mahalanobis(r1, g1, b1, r2, g2, b2 float64) float64 {
	dr, dg, db := r1-r2, g1-g2, b1-b2
	w := mahalanobisWeights
	return w[0]*dr*dr + w[1]*dg*dg + w[2]*db*db
}
