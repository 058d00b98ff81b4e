/*
Package bitpast is a library for converting modern images into the constrained
palettes and memory layouts of retro computers.

A conversion runs in a fixed order: the image is preprocessed, ordered
dithering is applied, the global palette is chosen, every pixel is quantized
against the palette within the color budget of its block and finally the
result is packed into the memory layout of the target machine.
*/
package bitpast

import (
	"errors"
	"log"
)

// ErrSize is returned when an image does not match the dimensions of the
// target profile.
var ErrSize = errors.New("bitpast: image is wrong size")

// Converter runs conversions.
type Converter struct {
	store  *Store
	logger *log.Logger
}

// New returns a Converter that logs to logger.
func New(logger *log.Logger) *Converter {
	return &Converter{
		logger: logger,
	}
}

// SetStore sets the store used to remember conversions. A nil store disables
// remembering.
func (c *Converter) SetStore(s *Store) {
	c.store = s
}
