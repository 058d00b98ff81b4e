package pack

import (
	"encoding/binary"
	"math"

	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/palette"
)

// Word selects the format of a hardware color register.
type Word int

const (
	// RGB stores each color as three bytes, as a VGA DAC or IFF CMAP does
	RGB Word = iota
	// AtariST is the big-endian 0000 0RRR 0GGG 0BBB word
	AtariST
	// Amiga is the big-endian 0000 RRRR GGGG BBBB word
	Amiga
	// MegaDrive is the big-endian 0000 BBB0 GGG0 RRR0 word
	MegaDrive
	// MSX2 is the V9938 0RRR 0BBB 0000 0GGG pair of bytes
	MSX2
	// Atari800 is the HHHH LLL0 GTIA color register byte
	Atari800
	// CPCWord is the gate array hardware color number byte
	CPCWord
)

var wordNames = [...]string{
	RGB:       "rgb",
	AtariST:   "atari-st",
	Amiga:     "amiga",
	MegaDrive: "mega-drive",
	MSX2:      "msx2",
	Atari800:  "atari-800",
	CPCWord:   "cpc",
}

// cpcHardware maps firmware color numbers to hardware color numbers
var cpcHardware = [27]uint8{
	0x54, 0x44, 0x55, 0x5c, 0x58, 0x5d, 0x4c, 0x45, 0x4d,
	0x56, 0x46, 0x57, 0x5e, 0x40, 0x5f, 0x4e, 0x47, 0x4f,
	0x52, 0x42, 0x53, 0x5a, 0x59, 0x5b, 0x4a, 0x43, 0x4b,
}

func (w Word) String() string {
	if w < 0 || int(w) >= len(wordNames) {
		return "unknown"
	}
	return wordNames[w]
}

// Size returns the number of bytes used to store one color.
func (w Word) Size() int {
	switch w {
	case RGB:
		return 3
	case Atari800, CPCWord:
		return 1
	}
	return 2
}

// gamut returns the table byte sized words index into
func (w Word) gamut() palette.Palette {
	if w == Atari800 {
		return palette.Atari800.Colors()
	}
	return palette.CPC.Colors()
}

// number returns the position of c in the gamut of w
func (w Word) number(c palette.Color) int {
	g := w.gamut()
	if i := g.Index(c); i >= 0 {
		return i
	}
	return g.Nearest(float64(c.R), float64(c.G), float64(c.B), metric.Euclidean.Func())
}

func (w Word) byteEncode(c palette.Color) uint8 {
	i := w.number(c)
	if w == Atari800 {
		return uint8(i>>3)<<4 | uint8(i&0x07)<<1
	}
	return cpcHardware[i]
}

func (w Word) byteDecode(v uint8) palette.Color {
	g := w.gamut()
	if w == Atari800 {
		return g[int(v>>4)<<3|int(v>>1&0x07)]
	}
	for i, h := range cpcHardware {
		if h == v|0x40 {
			return g[i]
		}
	}
	return palette.Black
}

func (w Word) encode(c palette.Color) uint16 {
	switch w {
	case AtariST:
		return uint16(c.R/32)<<8 | uint16(c.G/32)<<4 | uint16(c.B/32)
	case Amiga:
		return uint16(c.R>>4)<<8 | uint16(c.G>>4)<<4 | uint16(c.B>>4)
	case MegaDrive:
		return uint16(c.B>>5)<<9 | uint16(c.G>>5)<<5 | uint16(c.R>>5)<<1
	case MSX2:
		return uint16(c.R/32)<<12 | uint16(c.B/32)<<8 | uint16(c.G/32)
	}
	return 0
}

func st(v uint16) uint8 {
	return uint8(math.Round(float64(v&0x07) * 255 / 7))
}

func (w Word) decode(v uint16) palette.Color {
	switch w {
	case AtariST:
		return palette.Color{R: st(v >> 8), G: st(v >> 4), B: st(v)}
	case Amiga:
		return palette.Color{R: uint8(v>>8&0x0f) * 17, G: uint8(v>>4&0x0f) * 17, B: uint8(v&0x0f) * 17}
	case MegaDrive:
		return palette.Color{R: uint8(v>>1&0x07) << 5, G: uint8(v>>5&0x07) << 5, B: uint8(v>>9&0x07) << 5}
	case MSX2:
		return palette.Color{R: st(v >> 12), G: st(v), B: st(v >> 8)}
	}
	return palette.Black
}

// Append appends the encoded form of c to b.
func (w Word) Append(b []byte, c palette.Color) []byte {
	switch w {
	case RGB:
		return append(b, c.R, c.G, c.B)
	case Atari800, CPCWord:
		return append(b, w.byteEncode(c))
	}
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], w.encode(c))
	return append(b, tmp[:]...)
}

// Table encodes every color in p.
func (w Word) Table(p palette.Palette) []byte {
	b := make([]byte, 0, len(p)*w.Size())
	for _, c := range p {
		b = w.Append(b, c)
	}
	return b
}

// Read decodes a table of colors.
func (w Word) Read(b []byte) palette.Palette {
	p := make(palette.Palette, len(b)/w.Size())
	for i := range p {
		switch w {
		case RGB:
			p[i] = palette.Color{R: b[i*3], G: b[i*3+1], B: b[i*3+2]}
		case Atari800, CPCWord:
			p[i] = w.byteDecode(b[i])
		default:
			p[i] = w.decode(binary.BigEndian.Uint16(b[i*2:]))
		}
	}
	return p
}
