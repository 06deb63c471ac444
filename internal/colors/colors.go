package colors

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"karolbroda.com/coverglow/internal/sampler"
)

const (
	// DefaultBackground is shown until a cover has been sampled.
	DefaultBackground = "#1a1a1a"
	Black             = "#000000"
)

var (
	lightText = sampler.Color{R: 0xFF, G: 0xFF, B: 0xFF}
	darkText  = sampler.Color{R: 0x11, G: 0x11, B: 0x11}
)

func Hex(c sampler.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// CSS formats c the way a stylesheet expects it.
func CSS(c sampler.Color) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func Parse(hex string) (sampler.Color, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	cf, err := colorful.Hex(hex)
	if err != nil {
		return sampler.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return fromColorful(cf), nil
}

// MustParse is for compile-time constants only.
func MustParse(hex string) sampler.Color {
	c, err := Parse(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Gradient blends from start to end in L*a*b* space. The first and last
// entries are exactly start and end.
func Gradient(start, end sampler.Color, steps int) []sampler.Color {
	if steps < 2 {
		steps = 2
	}

	from := toColorful(start)
	to := toColorful(end)

	out := make([]sampler.Color, steps)
	for i := range out {
		t := float64(i) / float64(steps-1)
		out[i] = fromColorful(from.BlendLab(to, t).Clamped())
	}
	out[0] = start
	out[steps-1] = end

	return out
}

// Lightness is the L* component scaled to 0-100.
func Lightness(c sampler.Color) float64 {
	l, _, _ := toColorful(c).Lab()
	return l * 100
}

// Foreground picks light or dark text for a background.
func Foreground(bg sampler.Color) sampler.Color {
	if Lightness(bg) > 65 {
		return darkText
	}
	return lightText
}

// Dim scales a color toward black by factor (0 keeps it, 1 is black).
func Dim(c sampler.Color, factor float64) sampler.Color {
	if factor <= 0 {
		return c
	}
	if factor >= 1 {
		return sampler.Color{}
	}
	return fromColorful(toColorful(c).BlendLab(colorful.Color{}, factor).Clamped())
}

// Lift brightens dark colors so accents stay visible on the gradient.
func Lift(c sampler.Color, minLightness float64) sampler.Color {
	h, cr, l := toColorful(c).Hcl()
	if l*100 >= minLightness {
		return c
	}
	return fromColorful(colorful.Hcl(h, cr, minLightness/100).Clamped())
}

func toColorful(c sampler.Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColorful(c colorful.Color) sampler.Color {
	r, g, b := c.RGB255()
	return sampler.Color{R: r, G: g, B: b}
}

func FormatTime(seconds int64) string {
	if seconds < 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
