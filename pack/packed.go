package pack

// Packed stores several indices per byte, most significant bits first. Each
// scanline starts on a new byte.
type Packed struct {
	Bits int
}

func (l Packed) valid() bool {
	switch l.Bits {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

func rowBytes(width, bits int) int {
	return (width*bits + 7) / 8
}

// packRows packs indices at bits per pixel into rows of rowBytes
func packRows(indices []uint8, width, height, bits int) []byte {
	n := rowBytes(width, bits)
	b := make([]byte, n*height)
	perByte := 8 / bits
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			shift := uint(8 - bits*(x%perByte+1))
			b[y*n+x/perByte] |= indices[y*width+x] << shift
		}
	}
	return b
}

func unpackRows(b []byte, width, height, bits int) []uint8 {
	n := rowBytes(width, bits)
	indices := make([]uint8, width*height)
	perByte := 8 / bits
	mask := uint8(1<<uint(bits) - 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			shift := uint(8 - bits*(x%perByte+1))
			indices[y*width+x] = b[y*n+x/perByte] >> shift & mask
		}
	}
	return indices
}

// Pack implements Layout.
func (l Packed) Pack(f *Frame) (*Payload, error) {
	if f.Cells != nil || !l.valid() {
		return nil, errGeometry
	}
	if err := checkIndices(f, l.Bits); err != nil {
		return nil, err
	}

	p := new(Payload)
	p.add(bitmapStream, packRows(f.Indices, f.Width, f.Height, l.Bits))

	return p, nil
}

// Unpack implements Layout.
func (l Packed) Unpack(p *Payload, width, height int) (*Frame, error) {
	if !l.valid() {
		return nil, errGeometry
	}

	b, err := p.need(bitmapStream, rowBytes(width, l.Bits)*height)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Width:   width,
		Height:  height,
		Indices: unpackRows(b, width, height, l.Bits),
	}, nil
}
