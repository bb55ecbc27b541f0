package dxf

import "fmt"

type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black = RGB{}
	White = RGB{R: 255, G: 255, B: 255}
)

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// TrueColor decodes the 0x00RRGGBB value of group 420.
func TrueColor(v int) RGB {
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

const (
	ColorByBlock = 0
	ColorByLayer = 256
	// ColorForeground is ACI 7: white on dark screens, black on paper.
	ColorForeground = 7
)

var aciPalette = buildPalette()

// ACI returns the RGB value of an AutoCAD Color Index. Out of range indices
// map to the foreground color.
func ACI(index int) RGB {
	if index < 1 || index > 255 {
		return aciPalette[ColorForeground]
	}
	return aciPalette[index]
}

func buildPalette() [256]RGB {
	var p [256]RGB
	p[1] = RGB{R: 255}
	p[2] = RGB{R: 255, G: 255}
	p[3] = RGB{G: 255}
	p[4] = RGB{G: 255, B: 255}
	p[5] = RGB{B: 255}
	p[6] = RGB{R: 255, B: 255}
	p[7] = White
	p[8] = RGB{R: 128, G: 128, B: 128}
	p[9] = RGB{R: 192, G: 192, B: 192}

	// 10..249: 24 hues in 15° steps, ten shades each. Even shades are fully
	// saturated, odd ones half saturated, brightness falls every two shades.
	values := [5]float64{255, 204, 153, 127, 76}
	for i := 10; i <= 249; i++ {
		hue := float64((i/10)-1) * 15
		shade := i % 10
		v := values[shade/2]
		lo := 0.0
		if shade%2 == 1 {
			lo = v / 2
		}
		p[i] = hueColor(hue, v, lo)
	}

	grays := [6]uint8{51, 80, 105, 130, 190, 255}
	for i, g := range grays {
		p[250+i] = RGB{R: g, G: g, B: g}
	}
	return p
}

// hueColor builds a color of the given hue whose strongest channel is hi and
// weakest channel lo.
func hueColor(hue, hi, lo float64) RGB {
	sector := int(hue / 60)
	f := (hue - float64(sector)*60) / 60
	rise := lo + (hi-lo)*f
	fall := hi - (hi-lo)*f
	var r, g, b float64
	switch sector {
	case 0:
		r, g, b = hi, rise, lo
	case 1:
		r, g, b = fall, hi, lo
	case 2:
		r, g, b = lo, hi, rise
	case 3:
		r, g, b = lo, fall, hi
	case 4:
		r, g, b = rise, lo, hi
	default:
		r, g, b = hi, lo, fall
	}
	return RGB{R: channel(r), G: channel(g), B: channel(b)}
}

// channel truncates like AutoCAD's palette does: half of 255 is 127.
func channel(v float64) uint8 {
	return uint8(v + 1e-9)
}
