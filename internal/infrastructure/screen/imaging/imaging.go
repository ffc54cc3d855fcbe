// Package imaging prepares screen captures for OCR.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// Prepare converts img to grayscale, stretches its contrast and upscales it by
// factor. Tesseract reads small UI fonts far better at 3x.
func Prepare(img image.Image, factor int) *image.Gray {
	factor = max(factor, 1)

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	stretch(gray)

	if factor == 1 {
		return gray
	}

	scaled := image.NewGray(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)
	return scaled
}

// stretch maps the darkest pixel to black and the brightest to white.
func stretch(img *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, p := range img.Pix {
		lo, hi = min(lo, p), max(hi, p)
	}
	if hi <= lo {
		return
	}

	span := int(hi) - int(lo)
	for i, p := range img.Pix {
		img.Pix[i] = uint8((int(p) - int(lo)) * 255 / span)
	}
}

// Invert turns light-on-dark text into dark-on-light when most pixels are
// dark.
func Invert(img *image.Gray) {
	var sum int
	for _, p := range img.Pix {
		sum += int(p)
	}
	if len(img.Pix) == 0 || sum/len(img.Pix) >= 128 {
		return
	}
	for i, p := range img.Pix {
		img.Pix[i] = 255 - p
	}
}

// EncodePNG serializes img for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Uniform builds a w*h image of one color.
func Uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, xdraw.Src)
	return img
}
