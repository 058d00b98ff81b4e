package palette

import (
	"math"
	"sync"
)

// Gamut identifies a fixed table of hardware colors.
type Gamut int

const (
	// Mono is black and white
	Mono Gamut = iota
	// AtariST is the 512 color, 3 bits per channel, Atari ST gamut
	AtariST
	// AmigaOCS is the 4096 color, 4 bits per channel, Amiga gamut
	AmigaOCS
	// MegaDrive is the 512 color Sega Mega Drive gamut
	MegaDrive
	// EGA is the 64 color EGA gamut
	EGA
	// CGA is the 16 color CGA text palette
	CGA
	// CGAMode4 is CGA palette 1, high intensity
	CGAMode4
	// ZXSpectrum is the 16 entry Spectrum palette, indexed as color<<1|bright
	ZXSpectrum
	// C64 is the 16 color Commodore 64 palette
	C64
	// Adaptive has no fixed table; colors are generated from the image
	Adaptive
	// Plus4 is the 128 color TED palette, indexed as luminance<<4|hue
	Plus4
	// Atari800 is the 128 color GTIA palette, indexed as hue<<3|luminance
	Atari800
	// CoCo4 is PMODE 3 color set 0
	CoCo4
	// CoCo2 is PMODE 4 color set 0
	CoCo2
	// TMS9918 is the 16 color MSX1 palette, where color 0 is transparent
	TMS9918
	// V9938 is the 512 color MSX2 gamut
	V9938
	// RGB332 is the fixed 256 color MSX2 screen 8 palette
	RGB332
	// CPC is the 27 color Amstrad CPC gamut in firmware color order
	CPC
)

var gamutNames = [...]string{
	Mono:       "mono",
	AtariST:    "atari-st",
	AmigaOCS:   "amiga-ocs",
	MegaDrive:  "mega-drive",
	EGA:        "ega",
	CGA:        "cga",
	CGAMode4:   "cga-mode4",
	ZXSpectrum: "zx-spectrum",
	C64:        "c64",
	Adaptive:   "adaptive",
	Plus4:      "plus4",
	Atari800:   "atari-800",
	CoCo4:      "coco4",
	CoCo2:      "coco2",
	TMS9918:    "tms9918",
	V9938:      "v9938",
	RGB332:     "rgb332",
	CPC:        "cpc",
}

func (g Gamut) String() string {
	if g < 0 || int(g) >= len(gamutNames) {
		return "unknown"
	}
	return gamutNames[g]
}

type table struct {
	once    sync.Once
	build   func() Palette
	palette Palette
}

func (t *table) get() Palette {
	t.once.Do(func() {
		t.palette = t.build()
	})
	return t.palette
}

var tables = [...]*table{
	Mono:       {build: mono},
	AtariST:    {build: atariST},
	AmigaOCS:   {build: amigaOCS},
	MegaDrive:  {build: megaDrive},
	EGA:        {build: ega},
	CGA:        {build: cga},
	CGAMode4:   {build: cgaMode4},
	ZXSpectrum: {build: zxSpectrum},
	C64:        {build: c64},
	Plus4:      {build: plus4},
	Atari800:   {build: atari800},
	CoCo4:      {build: coco4},
	CoCo2:      {build: coco2},
	TMS9918:    {build: tms9918},
	V9938:      {build: atariST},
	RGB332:     {build: rgb332},
	CPC:        {build: cpc},
}

// Colors returns the table of colors for g, built on first use. The result is
// shared and must not be modified. Adaptive returns nil.
func (g Gamut) Colors() Palette {
	if g < 0 || int(g) >= len(tables) || tables[g] == nil {
		return nil
	}
	return tables[g].get()
}

func mono() Palette {
	return Palette{{0x00, 0x00, 0x00}, {0xff, 0xff, 0xff}}
}

func levels(n int, f func(int) uint8) Palette {
	p := make(Palette, 0, n*n*n)
	for r := 0; r < n; r++ {
		for g := 0; g < n; g++ {
			for b := 0; b < n; b++ {
				p = append(p, Color{f(r), f(g), f(b)})
			}
		}
	}
	return p
}

func atariST() Palette {
	return levels(8, func(i int) uint8 {
		return uint8(math.Round(float64(i) * 255 / 7))
	})
}

func amigaOCS() Palette {
	return levels(16, func(i int) uint8 {
		return uint8(i * 17)
	})
}

// Mega Drive colors are stored as the top three bits of each channel
func megaDrive() Palette {
	return levels(8, func(i int) uint8 {
		return uint8(i << 5)
	})
}

// EGA colors are rgbRGB, lowercase bits adding 0x55 and uppercase 0xAA
func ega() Palette {
	p := make(Palette, 64)
	for i := range p {
		bit := func(n uint, v uint8) uint8 {
			return uint8(i>>n&1) * v
		}
		p[i] = Color{
			bit(2, 0xaa) + bit(5, 0x55),
			bit(1, 0xaa) + bit(4, 0x55),
			bit(0, 0xaa) + bit(3, 0x55),
		}
	}
	return p
}

func cga() Palette {
	return Palette{
		{0x00, 0x00, 0x00},
		{0x00, 0x00, 0xaa},
		{0x00, 0xaa, 0x00},
		{0x00, 0xaa, 0xaa},
		{0xaa, 0x00, 0x00},
		{0xaa, 0x00, 0xaa},
		{0xaa, 0x55, 0x00},
		{0xaa, 0xaa, 0xaa},
		{0x55, 0x55, 0x55},
		{0x55, 0x55, 0xff},
		{0x55, 0xff, 0x55},
		{0x55, 0xff, 0xff},
		{0xff, 0x55, 0x55},
		{0xff, 0x55, 0xff},
		{0xff, 0xff, 0x55},
		{0xff, 0xff, 0xff},
	}
}

func cgaMode4() Palette {
	return Palette{
		{0x00, 0x00, 0x00},
		{0x55, 0xff, 0xff},
		{0xff, 0x55, 0xff},
		{0xff, 0xff, 0xff},
	}
}

func zxSpectrum() Palette {
	p := make(Palette, 0, 16)
	for i := 0; i < 8; i++ {
		for _, v := range []uint8{0xd7, 0xff} {
			// Spectrum color numbers are GRB
			p = append(p, Color{
				uint8(i>>1&1) * v,
				uint8(i>>2&1) * v,
				uint8(i&1) * v,
			})
		}
	}
	return p
}

func c64() Palette {
	return Palette{
		{0x00, 0x00, 0x00},
		{0xff, 0xff, 0xff},
		{0x68, 0x37, 0x2b},
		{0x70, 0xa4, 0xb2},
		{0x6f, 0x3d, 0x86},
		{0x58, 0x8d, 0x43},
		{0x35, 0x28, 0x79},
		{0xb8, 0xc7, 0x6f},
		{0x6f, 0x4f, 0x25},
		{0x43, 0x39, 0x00},
		{0x9a, 0x67, 0x59},
		{0x44, 0x44, 0x44},
		{0x6c, 0x6c, 0x6c},
		{0x9a, 0xd2, 0x84},
		{0x6c, 0x5e, 0xb5},
		{0x95, 0x95, 0x95},
	}
}

func plus4() Palette {
	return Palette{
		// luminance 0
		{0x00, 0x00, 0x00}, {0x17, 0x17, 0x17}, {0x46, 0x07, 0x0a}, {0x00, 0x2a, 0x26},
		{0x3e, 0x02, 0x46}, {0x00, 0x33, 0x00}, {0x0f, 0x0d, 0x70}, {0x1f, 0x21, 0x00},
		{0x3e, 0x0e, 0x00}, {0x30, 0x17, 0x00}, {0x0f, 0x2b, 0x00}, {0x46, 0x03, 0x26},
		{0x00, 0x31, 0x0a}, {0x03, 0x17, 0x61}, {0x1f, 0x07, 0x70}, {0x03, 0x31, 0x00},
		// luminance 1
		{0x00, 0x00, 0x00}, {0x26, 0x26, 0x26}, {0x59, 0x14, 0x17}, {0x01, 0x3b, 0x37},
		{0x51, 0x0c, 0x59}, {0x05, 0x45, 0x01}, {0x1e, 0x1c, 0x85}, {0x30, 0x32, 0x00},
		{0x51, 0x1c, 0x01}, {0x42, 0x27, 0x00}, {0x1e, 0x3c, 0x00}, {0x59, 0x0e, 0x37},
		{0x01, 0x42, 0x17}, {0x0f, 0x26, 0x75}, {0x30, 0x13, 0x85}, {0x0f, 0x43, 0x00},
		// luminance 2
		{0x00, 0x00, 0x00}, {0x37, 0x37, 0x37}, {0x6d, 0x23, 0x27}, {0x0c, 0x4e, 0x49},
		{0x64, 0x1b, 0x6d}, {0x12, 0x58, 0x0c}, {0x2e, 0x2c, 0x9b}, {0x41, 0x44, 0x00},
		{0x64, 0x2c, 0x0c}, {0x55, 0x38, 0x00}, {0x2e, 0x4e, 0x00}, {0x6d, 0x1d, 0x49},
		{0x0c, 0x55, 0x27}, {0x1d, 0x37, 0x8a}, {0x41, 0x22, 0x9b}, {0x1d, 0x56, 0x00},
		// luminance 3
		{0x00, 0x00, 0x00}, {0x4a, 0x4a, 0x4a}, {0x81, 0x33, 0x38}, {0x1a, 0x61, 0x5d},
		{0x79, 0x2a, 0x82}, {0x20, 0x6c, 0x1a}, {0x3f, 0x3d, 0xb1}, {0x54, 0x57, 0x00},
		{0x79, 0x3d, 0x1a}, {0x68, 0x4a, 0x07}, {0x3f, 0x62, 0x00}, {0x81, 0x2d, 0x5d},
		{0x1a, 0x69, 0x38}, {0x2d, 0x49, 0xa0}, {0x54, 0x33, 0xb1}, {0x2d, 0x69, 0x07},
		// luminance 4
		{0x00, 0x00, 0x00}, {0x7b, 0x7b, 0x7b}, {0xb8, 0x62, 0x67}, {0x44, 0x96, 0x90},
		{0xaf, 0x58, 0xb9}, {0x4c, 0xa1, 0x44}, {0x70, 0x6d, 0xeb}, {0x87, 0x8a, 0x1f},
		{0xaf, 0x6e, 0x44}, {0x9d, 0x7c, 0x2b}, {0x70, 0x96, 0x1f}, {0xb8, 0x5a, 0x90},
		{0x44, 0x9e, 0x67}, {0x5b, 0x7b, 0xd9}, {0x87, 0x62, 0xeb}, {0x5b, 0x9e, 0x2b},
		// luminance 5
		{0x00, 0x00, 0x00}, {0x9b, 0x9b, 0x9b}, {0xdb, 0x81, 0x86}, {0x61, 0xb7, 0xb1},
		{0xd1, 0x76, 0xdc}, {0x69, 0xc3, 0x60}, {0x8f, 0x8c, 0xff}, {0xa8, 0xab, 0x38},
		{0xd1, 0x8d, 0x60}, {0xbf, 0x9c, 0x45}, {0x8f, 0xb7, 0x38}, {0xdb, 0x79, 0xb1},
		{0x61, 0xc0, 0x86}, {0x79, 0x9b, 0xfd}, {0xa8, 0x80, 0xff}, {0x79, 0xc0, 0x45},
		// luminance 6
		{0x00, 0x00, 0x00}, {0xe0, 0xe0, 0xe0}, {0xff, 0xc3, 0xc9}, {0xa0, 0xfe, 0xf8},
		{0xff, 0xb7, 0xff}, {0xa9, 0xff, 0x9f}, {0xd3, 0xd0, 0xff}, {0xed, 0xf1, 0x71},
		{0xff, 0xd1, 0x9f}, {0xff, 0xe0, 0x81}, {0xd3, 0xfe, 0x71}, {0xff, 0xba, 0xf8},
		{0xa0, 0xff, 0xc9}, {0xbb, 0xe0, 0xff}, {0xed, 0xc3, 0xff}, {0xbb, 0xff, 0x81},
		// luminance 7
		{0x00, 0x00, 0x00}, {0xff, 0xff, 0xff}, {0xff, 0xff, 0xff}, {0xfd, 0xff, 0xff},
		{0xff, 0xff, 0xff}, {0xff, 0xff, 0xfd}, {0xff, 0xff, 0xff}, {0xff, 0xff, 0xc9},
		{0xff, 0xff, 0xfd}, {0xff, 0xff, 0xdb}, {0xff, 0xff, 0xc9}, {0xff, 0xff, 0xff},
		{0xfd, 0xff, 0xff}, {0xff, 0xff, 0xff}, {0xff, 0xff, 0xff}, {0xff, 0xff, 0xdb},
	}
}

// Atari 800 colors are approximated from YIQ, hue 0 being the grays
func atari800() Palette {
	p := make(Palette, 0, 128)
	for hue := 0; hue < 16; hue++ {
		for lum := 0; lum < 8; lum++ {
			y := float64(lum) / 7
			if hue == 0 {
				v := uint8(y * 255)
				p = append(p, Color{v, v, v})
				continue
			}

			angle := float64(hue-1) * 22.5 * math.Pi / 180
			sat := 0.5 + float64(lum)*0.05
			i := sat * math.Cos(angle) * 0.6
			q := sat * math.Sin(angle) * 0.5

			channel := func(v float64) uint8 {
				return uint8(math.Max(0, math.Min(1, v)) * 255)
			}
			p = append(p, Color{
				channel(y + 0.956*i + 0.621*q),
				channel(y - 0.272*i - 0.647*q),
				channel(y - 1.106*i + 1.703*q),
			})
		}
	}
	return p
}

func coco4() Palette {
	return Palette{
		{0x00, 0x00, 0x00},
		{0x00, 0xff, 0x00},
		{0xff, 0xff, 0x00},
		{0x00, 0x00, 0xff},
	}
}

func coco2() Palette {
	return coco4()[:2]
}

func tms9918() Palette {
	return Palette{
		{0x00, 0x00, 0x00},
		{0x00, 0x00, 0x00},
		{0x21, 0xc8, 0x42},
		{0x5e, 0xdc, 0x78},
		{0x54, 0x55, 0xed},
		{0x7d, 0x76, 0xfc},
		{0xd4, 0x52, 0x4d},
		{0x42, 0xeb, 0xf5},
		{0xfc, 0x55, 0x54},
		{0xff, 0x79, 0x78},
		{0xd4, 0xc1, 0x54},
		{0xe6, 0xce, 0x80},
		{0x21, 0xb0, 0x3b},
		{0xc9, 0x5b, 0xba},
		{0xcc, 0xcc, 0xcc},
		{0xff, 0xff, 0xff},
	}
}

// Screen 8 colors are GGGRRRBB
func rgb332() Palette {
	p := make(Palette, 256)
	for i := range p {
		p[i] = Color{uint8(i>>2&0x07) * 36, uint8(i>>5&0x07) * 36, uint8(i&0x03) * 85}
	}
	return p
}

func cpc() Palette {
	return Palette{
		{0x00, 0x02, 0x01}, {0x00, 0x02, 0x6b}, {0x0c, 0x02, 0xf4},
		{0x6c, 0x02, 0x01}, {0x69, 0x02, 0x68}, {0x6c, 0x02, 0xf2},
		{0xf3, 0x05, 0x06}, {0xf0, 0x02, 0x68}, {0xf3, 0x02, 0xf4},
		{0x02, 0x78, 0x01}, {0x00, 0x78, 0x68}, {0x0c, 0x7b, 0xf4},
		{0x6e, 0x7b, 0x01}, {0x6e, 0x7d, 0x6b}, {0x6e, 0x7b, 0xf6},
		{0xf3, 0x7d, 0x0d}, {0xf3, 0x7d, 0x6b}, {0xfa, 0x80, 0xf9},
		{0x02, 0xf0, 0x01}, {0x00, 0xf3, 0x6b}, {0x0f, 0xf3, 0xf2},
		{0x71, 0xf5, 0x04}, {0x71, 0xf3, 0x6b}, {0x71, 0xf3, 0xf4},
		{0xf3, 0xf3, 0x0d}, {0xf3, 0xf3, 0x6d}, {0xff, 0xf3, 0xf9},
	}
}
