package sampler

import (
	"fmt"
	"image"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
)

type Mode int

const (
	ModeAverage Mode = iota
	ModeProminent
)

func (m Mode) String() string {
	switch m {
	case ModeProminent:
		return "prominent"
	default:
		return "average"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "average", "avg":
		return ModeAverage, nil
	case "prominent", "kmeans":
		return ModeProminent, nil
	}
	return ModeAverage, fmt.Errorf("unknown sampling mode %q", s)
}

// SampleImage runs one sampling pass over img.
func SampleImage(img image.Image, mode Mode, stride int) (Color, error) {
	if mode == ModeProminent {
		return Prominent(img)
	}

	pixels, err := FromImage(img)
	if err != nil {
		return Color{}, err
	}
	return AverageStride(pixels, stride)
}

// Prominent clusters the image and returns the center of the largest cluster.
func Prominent(img image.Image) (Color, error) {
	if img == nil {
		return Color{}, ErrPixelAccess
	}
	if img.Bounds().Empty() {
		return Color{}, ErrNoSamples
	}

	items, err := prominentcolor.KmeansWithAll(3, img, prominentcolor.ArgumentNoCropping, prominentcolor.DefaultSize, nil)
	if err != nil {
		return Color{}, fmt.Errorf("kmeans clustering failed: %w", err)
	}
	if len(items) == 0 {
		return Color{}, ErrNoSamples
	}

	best := items[0]
	for _, item := range items[1:] {
		if item.Cnt > best.Cnt {
			best = item
		}
	}

	return Color{
		R: uint8(best.Color.R),
		G: uint8(best.Color.G),
		B: uint8(best.Color.B),
	}, nil
}
