package pack

const (
	cpcScreen = 16384
	cpcBank   = 2048
	cpcRow    = 80
)

// cpcOffsets holds, for each bit of an index, how far below the top bit of
// the first pixel of a byte it is stored
var cpcOffsets = map[int][]int{
	1: {0},
	2: {0, 4},
	4: {0, 4, 2, 6},
}

// CPC stores indices in Amstrad CPC screen memory. The bits of the pixels
// sharing a byte are interleaved and the eight scanlines of each character
// row are 2048 bytes apart.
type CPC struct {
	Bits int
}

// CPCAddress returns the screen memory offset of byte c of scanline y.
func CPCAddress(y, c int) int {
	return (y>>3)*cpcRow + (y&0x07)*cpcBank + c
}

func (l CPC) check(width, height int) error {
	if _, ok := cpcOffsets[l.Bits]; !ok {
		return errGeometry
	}
	if width < 1 || rowBytes(width, l.Bits) != cpcRow || height < 1 || height%charHeight != 0 || (height/charHeight)*cpcRow > cpcBank {
		return errGeometry
	}
	return nil
}

// mask returns the bit holding bit k of the pixel at position p in its byte
func (l CPC) mask(p, k int) byte {
	return 0x80 >> uint(p+cpcOffsets[l.Bits][k])
}

// Pack implements Layout.
func (l CPC) Pack(f *Frame) (*Payload, error) {
	if f.Cells != nil {
		return nil, errGeometry
	}
	if err := l.check(f.Width, f.Height); err != nil {
		return nil, err
	}
	if err := checkIndices(f, l.Bits); err != nil {
		return nil, err
	}

	perByte := 8 / l.Bits
	b := make([]byte, cpcScreen)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.Indices[y*f.Width+x]
			a := CPCAddress(y, x/perByte)
			for k := 0; k < l.Bits; k++ {
				if v>>uint(k)&1 != 0 {
					b[a] |= l.mask(x%perByte, k)
				}
			}
		}
	}

	p := new(Payload)
	p.add(bitmapStream, b)

	return p, nil
}

// Unpack implements Layout.
func (l CPC) Unpack(p *Payload, width, height int) (*Frame, error) {
	if err := l.check(width, height); err != nil {
		return nil, err
	}

	b, err := p.need(bitmapStream, cpcScreen)
	if err != nil {
		return nil, err
	}

	perByte := 8 / l.Bits
	indices := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := CPCAddress(y, x/perByte)
			var v uint8
			for k := 0; k < l.Bits; k++ {
				if b[a]&l.mask(x%perByte, k) != 0 {
					v |= 1 << uint(k)
				}
			}
			indices[y*width+x] = v
		}
	}

	return &Frame{
		Width:   width,
		Height:  height,
		Indices: indices,
	}, nil
}
