package pack

import "encoding/binary"

// Interleave controls how bitplanes are ordered in memory.
type Interleave int

const (
	// WordInterleave stores the words of every plane for each 16 pixel
	// group together, as the Atari ST does
	WordInterleave Interleave = iota
	// LineInterleave stores every plane of a scanline before moving to the next
	// scanline, as an Amiga ILBM body does
	LineInterleave
	// PlaneInterleave stores each plane in full before the next, as EGA memory does
	PlaneInterleave
)

func (i Interleave) String() string {
	switch i {
	case WordInterleave:
		return "word"
	case LineInterleave:
		return "line"
	case PlaneInterleave:
		return "plane"
	default:
		return "unknown"
	}
}

const bitmapStream = "bitmap"

// Planar is a bitplane layout. Bit n of each palette index is stored in
// plane n and the leftmost pixel of every 16 pixel group is bit 15 of its
// big-endian word. Scanlines are padded to a whole number of words.
type Planar struct {
	Planes     int
	Interleave Interleave
}

func (l Planar) words(width int) int {
	return (width + 15) / 16
}

// word returns the position of the word holding plane p of the 16 pixel
// group wx on scanline y
func (l Planar) word(p, y, wx, wpl, height int) int {
	switch l.Interleave {
	case LineInterleave:
		return (y*l.Planes+p)*wpl + wx
	case PlaneInterleave:
		return (p*height+y)*wpl + wx
	default:
		return (y*wpl+wx)*l.Planes + p
	}
}

// Pack implements Layout.
func (l Planar) Pack(f *Frame) (*Payload, error) {
	if f.Cells != nil || l.Planes < 1 || l.Planes > 8 {
		return nil, errGeometry
	}
	if err := checkIndices(f, l.Planes); err != nil {
		return nil, err
	}

	wpl := l.words(f.Width)
	words := make([]uint16, l.Planes*wpl*f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := f.Indices[y*f.Width+x]
			shift := 15 - uint(x%16)
			for p := 0; p < l.Planes; p++ {
				words[l.word(p, y, x/16, wpl, f.Height)] |= uint16(i>>uint(p)&1) << shift
			}
		}
	}

	b := make([]byte, len(words)*2)
	for i, w := range words {
		binary.BigEndian.PutUint16(b[i*2:], w)
	}

	p := new(Payload)
	p.add(bitmapStream, b)

	return p, nil
}

// Unpack implements Layout.
func (l Planar) Unpack(p *Payload, width, height int) (*Frame, error) {
	if l.Planes < 1 || l.Planes > 8 {
		return nil, errGeometry
	}

	wpl := l.words(width)
	b, err := p.need(bitmapStream, l.Planes*wpl*height*2)
	if err != nil {
		return nil, err
	}

	f := &Frame{
		Width:   width,
		Height:  height,
		Indices: make([]uint8, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			shift := 15 - uint(x%16)
			var i uint8
			for p := 0; p < l.Planes; p++ {
				w := binary.BigEndian.Uint16(b[l.word(p, y, x/16, wpl, height)*2:])
				i |= uint8(w>>shift&1) << uint(p)
			}
			f.Indices[y*width+x] = i
		}
	}

	return f, nil
}
