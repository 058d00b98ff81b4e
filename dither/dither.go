/*
Package dither implements ordered, noise and error diffusion dithering.

Ordered and noise dithering run as a separate pass over the whole working
buffer before any palette is chosen. Error diffusion is driven by the block
quantizer through a Diffuser as each pixel is assigned a color.
*/
package dither

// Algorithm selects a dithering method.
type Algorithm int

const (
	// None disables dithering
	None Algorithm = iota
	// FloydSteinberg diffuses all of the error to four neighbors
	FloydSteinberg
	// Atkinson diffuses three quarters of the error to six neighbors
	Atkinson
	// Noise adds unseeded random jitter
	Noise
	// Bayer2 is a 2x2 ordered matrix
	Bayer2
	// Bayer4 is a 4x4 ordered matrix
	Bayer4
	// Bayer8 is an 8x8 ordered matrix
	Bayer8
	// Bayer16 is a 16x16 ordered matrix
	Bayer16
	// BlueNoise8 is an 8x8 hashed threshold matrix
	BlueNoise8
	// BlueNoise16 is a 16x16 hashed threshold matrix
	BlueNoise16
)

// Default is used when a dither name is not recognised.
const Default = Bayer4

var names = [...]string{
	None:           "none",
	FloydSteinberg: "floyd-steinberg",
	Atkinson:       "atkinson",
	Noise:          "noise",
	Bayer2:         "bayer-2",
	Bayer4:         "bayer-4",
	Bayer8:         "bayer-8",
	Bayer16:        "bayer-16",
	BlueNoise8:     "blue-noise-8",
	BlueNoise16:    "blue-noise-16",
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(names) {
		return "unknown"
	}
	return names[a]
}

// Parse returns the Algorithm with the given name.
func Parse(s string) (Algorithm, bool) {
	for i, n := range names {
		if n == s {
			return Algorithm(i), true
		}
	}
	return Default, false
}

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	a := make([]Algorithm, len(names))
	for i := range a {
		a[i] = Algorithm(i)
	}
	return a
}

// Ordered reports whether a uses a threshold matrix.
func (a Algorithm) Ordered() bool {
	return a >= Bayer2 && a <= BlueNoise16
}

// Diffusion reports whether a propagates quantization error.
func (a Algorithm) Diffusion() bool {
	return a == FloydSteinberg || a == Atkinson
}

// Deterministic reports whether a always produces the same output for the
// same input. Only Noise does not.
func (a Algorithm) Deterministic() bool {
	return a != Noise
}
