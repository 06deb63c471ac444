// Package sampler derives a single representative color from cover art.
//
// The average mode walks a row-major RGBA buffer, taking every DefaultStride-th
// pixel, and floor-divides the channel sums by the number of samples. Alpha is
// read past but never averaged.
package sampler

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// DefaultStride is the pixel-skip interval between two samples.
const DefaultStride = 50

const bytesPerPixel = 4

var (
	ErrNoSamples     = errors.New("no pixels sampled")
	ErrBufferSize    = errors.New("pixel buffer does not match dimensions")
	ErrInvalidStride = errors.New("sample stride must be positive")
	ErrPixelAccess   = errors.New("pixel data not readable")
)

type Color struct {
	R uint8
	G uint8
	B uint8
}

// Pixels is a decoded bitmap: Width*Height pixels, four bytes each (r, g, b, a),
// row-major with no padding between rows.
type Pixels struct {
	Width  int
	Height int
	Pix    []byte
}

func (p Pixels) validate() error {
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrBufferSize, p.Width, p.Height)
	}
	if want := p.Width * p.Height * bytesPerPixel; len(p.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrBufferSize, p.Width, p.Height, want, len(p.Pix))
	}
	return nil
}

func Average(p Pixels) (Color, error) {
	return AverageStride(p, DefaultStride)
}

// AverageStride samples every stride-th pixel starting with the first one.
// A buffer holding no complete pixel yields ErrNoSamples and no color.
func AverageStride(p Pixels, stride int) (Color, error) {
	if stride < 1 {
		return Color{}, ErrInvalidStride
	}
	if err := p.validate(); err != nil {
		return Color{}, err
	}

	var r, g, b, count uint64
	step := bytesPerPixel * stride
	for i := 0; i+bytesPerPixel <= len(p.Pix); i += step {
		r += uint64(p.Pix[i])
		g += uint64(p.Pix[i+1])
		b += uint64(p.Pix[i+2])
		count++
	}

	if count == 0 {
		return Color{}, ErrNoSamples
	}

	return Color{
		R: uint8(r / count),
		G: uint8(g / count),
		B: uint8(b / count),
	}, nil
}

// FromImage copies img into a tight, origin-based NRGBA buffer. Channels are
// not premultiplied, matching what a canvas readback hands out.
func FromImage(img image.Image) (Pixels, error) {
	if img == nil {
		return Pixels{}, ErrPixelAccess
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	return Pixels{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    dst.Pix,
	}, nil
}
