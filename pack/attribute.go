package pack

import (
	"errors"
	"fmt"
)

var errBackground = errors.New("pack: cells do not share a background color")

// Codec selects how the colors of each cell are encoded.
type Codec int

const (
	// ZXAttributes stores one byte per cell holding paper, ink and a
	// bright flag. The bitmap selects ink with a set bit.
	ZXAttributes Codec = iota
	// C64Hires stores one screen byte per cell with the color of set bits
	// in the high nibble and clear bits in the low nibble
	C64Hires
	// C64Multicolor stores two colors per cell in screen memory, a third in
	// color memory and a background color shared by every cell
	C64Multicolor
	// Plus4Hires stores the hues of both colors of a cell in screen memory
	// and their luminances in a second byte
	Plus4Hires
	// Plus4Multicolor stores two colors per cell split across screen and
	// luminance bytes plus two background colors shared by every cell
	Plus4Multicolor
	// MSX stores the two colors of each 8x1 cell in a color table laid out
	// like the pattern table
	MSX
)

func (c Codec) String() string {
	switch c {
	case ZXAttributes:
		return "zx"
	case C64Hires:
		return "c64-hires"
	case C64Multicolor:
		return "c64-multicolor"
	case Plus4Hires:
		return "plus4-hires"
	case Plus4Multicolor:
		return "plus4-multicolor"
	case MSX:
		return "msx"
	default:
		return "unknown"
	}
}

func (c Codec) cell() (width, height, bits int) {
	switch c {
	case C64Multicolor, Plus4Multicolor:
		return 4, 8, 2
	case MSX:
		return 8, 1, 1
	}
	return 8, 8, 1
}

// colors returns the number of hardware colors a cell may use
func (c Codec) colors() int {
	if c == Plus4Hires || c == Plus4Multicolor {
		return 128
	}
	return 16
}

// plus4Patterns maps local colors, with the two backgrounds first, to the
// multicolor bit pairs that select them
var plus4Patterns = [4]uint8{0, 3, 1, 2}

// patterns returns the bit pattern for each local color, or nil when a
// local color is stored as is
func (c Codec) patterns() []uint8 {
	if c == Plus4Multicolor {
		return plus4Patterns[:]
	}
	return nil
}

// Order selects how bitmap bytes are arranged in memory.
type Order int

const (
	// Linear stores the bitmap a scanline at a time
	Linear Order = iota
	// Spectrum uses the ZX Spectrum display file order, where the screen is
	// split into thirds and the scanlines of each character row are 256
	// bytes apart
	Spectrum
	// CellOrder stores the eight bytes of each character together,
	// characters in raster order, as the C64 bitmap and the MSX pattern
	// table do
	CellOrder
)

func (o Order) String() string {
	switch o {
	case Linear:
		return "linear"
	case Spectrum:
		return "spectrum"
	case CellOrder:
		return "cell"
	default:
		return "unknown"
	}
}

// SpectrumAddress returns the display file offset of the byte holding
// column c of scanline y.
func SpectrumAddress(y, c int) int {
	return (y&0xc0)<<5 | (y&0x07)<<8 | (y&0x38)<<2 | c
}

const (
	attributeStream  = "attributes"
	screenStream     = "screen"
	colorStream      = "color"
	backgroundStream = "background"
	luminanceStream  = "luminance"

	charHeight = 8
)

// Attribute is a bitmap of cell local indices plus per-cell color data.
type Attribute struct {
	Codec Codec
	Order Order
}

func (l Attribute) check(width, height int) error {
	cw, ch, bits := l.Codec.cell()
	if width < 1 || height < 1 || width%cw != 0 || height%ch != 0 {
		return errGeometry
	}
	switch l.Order {
	case Spectrum:
		if rowBytes(width, bits) != 32 || height%64 != 0 {
			return errGeometry
		}
	case CellOrder:
		if cw*bits != 8 || height%charHeight != 0 {
			return errGeometry
		}
	}
	return nil
}

func (l Attribute) address(y, c, width int) int {
	_, _, bits := l.Codec.cell()
	switch l.Order {
	case Spectrum:
		return SpectrumAddress(y, c)
	case CellOrder:
		return ((y/charHeight)*rowBytes(width, bits)+c)*charHeight + y%charHeight
	default:
		return y*rowBytes(width, bits) + c
	}
}

// slot returns local color i of a cell, falling back to the first
func slot(cell []int, i int) int {
	if i < len(cell) {
		return cell[i]
	}
	return cell[0]
}

func (l Attribute) encode(cells [][]int, width int, p *Payload) error {
	for _, cell := range cells {
		if len(cell) == 0 {
			return errGeometry
		}
		for _, c := range cell {
			if c < 0 || c >= l.Codec.colors() {
				return errIndex
			}
		}
	}

	switch l.Codec {
	case ZXAttributes:
		b := make([]byte, len(cells))
		for i, cell := range cells {
			paper, ink := slot(cell, 0), slot(cell, 1)
			bright := (ink&1 | paper&1) << 6
			b[i] = byte(bright | (paper>>1&0x07)<<3 | ink>>1&0x07)
		}
		p.add(attributeStream, b)
	case C64Hires:
		b := make([]byte, len(cells))
		for i, cell := range cells {
			b[i] = byte(slot(cell, 1)<<4 | slot(cell, 0))
		}
		p.add(screenStream, b)
	case C64Multicolor:
		screen := make([]byte, len(cells))
		color := make([]byte, len(cells))
		background := cells[0][0]
		for i, cell := range cells {
			if cell[0] != background {
				return errBackground
			}
			screen[i] = byte(slot(cell, 1)<<4 | slot(cell, 2))
			color[i] = byte(slot(cell, 3))
		}
		p.add(screenStream, screen)
		p.add(colorStream, color)
		p.add(backgroundStream, []byte{byte(background)})
	case Plus4Hires:
		screen := make([]byte, len(cells))
		luminance := make([]byte, len(cells))
		for i, cell := range cells {
			bg, fg := slot(cell, 0), slot(cell, 1)
			screen[i] = byte((fg&0x0f)<<4 | bg&0x0f)
			luminance[i] = byte((bg>>4)<<4 | fg>>4)
		}
		p.add(luminanceStream, luminance)
		p.add(screenStream, screen)
	case Plus4Multicolor:
		screen := make([]byte, len(cells))
		luminance := make([]byte, len(cells))
		bg1, bg2 := slot(cells[0], 0), slot(cells[0], 1)
		for i, cell := range cells {
			if slot(cell, 0) != bg1 || slot(cell, 1) != bg2 {
				return errBackground
			}
			c1, c2 := slot(cell, 2), slot(cell, 3)
			screen[i] = byte((c1&0x0f)<<4 | c2&0x0f)
			luminance[i] = byte((c2>>4)<<4 | c1>>4)
		}
		p.add(backgroundStream, []byte{byte(bg1), byte(bg2)})
		p.add(luminanceStream, luminance)
		p.add(screenStream, screen)
	case MSX:
		color := make([]byte, len(cells))
		cols := width / 8
		for i, cell := range cells {
			bg, fg := slot(cell, 0), slot(cell, 1)
			color[l.address(i/cols, i%cols, width)] = byte(opaque(fg)<<4 | opaque(bg))
		}
		p.add(colorStream, color)
	default:
		return fmt.Errorf("pack: unknown codec %d", l.Codec)
	}

	return nil
}

// opaque replaces the transparent MSX color with black
func opaque(c int) int {
	if c == 0 {
		return 1
	}
	return c
}

func plus4Color(hue, luma byte) int {
	return int(luma&0x07)<<4 | int(hue&0x0f)
}

func (l Attribute) decode(p *Payload, n, width int) ([][]int, error) {
	cells := make([][]int, n)

	switch l.Codec {
	case ZXAttributes:
		b, err := p.need(attributeStream, n)
		if err != nil {
			return nil, err
		}
		for i := range cells {
			bright := int(b[i] >> 6 & 1)
			cells[i] = []int{
				int(b[i]>>3&0x07)<<1 | bright,
				int(b[i]&0x07)<<1 | bright,
			}
		}
	case C64Hires:
		b, err := p.need(screenStream, n)
		if err != nil {
			return nil, err
		}
		for i := range cells {
			cells[i] = []int{int(b[i] & 0x0f), int(b[i] >> 4)}
		}
	case C64Multicolor:
		screen, err := p.need(screenStream, n)
		if err != nil {
			return nil, err
		}
		color, err := p.need(colorStream, n)
		if err != nil {
			return nil, err
		}
		background, err := p.need(backgroundStream, 1)
		if err != nil {
			return nil, err
		}
		for i := range cells {
			cells[i] = []int{
				int(background[0] & 0x0f),
				int(screen[i] >> 4),
				int(screen[i] & 0x0f),
				int(color[i] & 0x0f),
			}
		}
	case Plus4Hires:
		luminance, err := p.need(luminanceStream, n)
		if err != nil {
			return nil, err
		}
		screen, err := p.need(screenStream, n)
		if err != nil {
			return nil, err
		}
		for i := range cells {
			cells[i] = []int{
				plus4Color(screen[i], luminance[i]>>4),
				plus4Color(screen[i]>>4, luminance[i]),
			}
		}
	case Plus4Multicolor:
		background, err := p.need(backgroundStream, 2)
		if err != nil {
			return nil, err
		}
		luminance, err := p.need(luminanceStream, n)
		if err != nil {
			return nil, err
		}
		screen, err := p.need(screenStream, n)
		if err != nil {
			return nil, err
		}
		for i := range cells {
			cells[i] = []int{
				int(background[0] & 0x7f),
				int(background[1] & 0x7f),
				plus4Color(screen[i]>>4, luminance[i]),
				plus4Color(screen[i], luminance[i]>>4),
			}
		}
	case MSX:
		color, err := p.need(colorStream, n)
		if err != nil {
			return nil, err
		}
		cols := width / 8
		for i := range cells {
			b := color[l.address(i/cols, i%cols, width)]
			cells[i] = []int{int(b & 0x0f), int(b >> 4)}
		}
	default:
		return nil, fmt.Errorf("pack: unknown codec %d", l.Codec)
	}

	return cells, nil
}

// Pack implements Layout.
func (l Attribute) Pack(f *Frame) (*Payload, error) {
	cw, ch, bits := l.Codec.cell()
	if f.Cells == nil || f.CellWidth != cw || f.CellHeight != ch {
		return nil, errGeometry
	}
	if err := l.check(f.Width, f.Height); err != nil {
		return nil, err
	}
	if err := checkIndices(f, bits); err != nil {
		return nil, err
	}
	if len(f.Cells) != f.cellsX()*f.cellsY() {
		return nil, errGeometry
	}

	indices := f.Indices
	if pat := l.Codec.patterns(); pat != nil {
		indices = make([]uint8, len(f.Indices))
		for i, v := range f.Indices {
			indices[i] = pat[v]
		}
	}

	rows := packRows(indices, f.Width, f.Height, bits)
	n := rowBytes(f.Width, bits)
	bitmap := make([]byte, len(rows))
	for y := 0; y < f.Height; y++ {
		for c := 0; c < n; c++ {
			bitmap[l.address(y, c, f.Width)] = rows[y*n+c]
		}
	}

	p := new(Payload)
	p.add(bitmapStream, bitmap)
	if err := l.encode(f.Cells, f.Width, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Unpack implements Layout. The returned frame has no palette.
func (l Attribute) Unpack(p *Payload, width, height int) (*Frame, error) {
	if err := l.check(width, height); err != nil {
		return nil, err
	}

	cw, ch, bits := l.Codec.cell()
	n := rowBytes(width, bits)
	bitmap, err := p.need(bitmapStream, n*height)
	if err != nil {
		return nil, err
	}

	rows := make([]byte, n*height)
	for y := 0; y < height; y++ {
		for c := 0; c < n; c++ {
			rows[y*n+c] = bitmap[l.address(y, c, width)]
		}
	}

	f := &Frame{
		Width:      width,
		Height:     height,
		CellWidth:  cw,
		CellHeight: ch,
		Indices:    unpackRows(rows, width, height, bits),
	}
	if pat := l.Codec.patterns(); pat != nil {
		local := make([]uint8, len(pat))
		for i, v := range pat {
			local[v] = uint8(i)
		}
		for i, v := range f.Indices {
			f.Indices[i] = local[v]
		}
	}
	if f.Cells, err = l.decode(p, f.cellsX()*f.cellsY(), width); err != nil {
		return nil, err
	}

	return f, nil
}
