package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/infrastructure/screen/imaging"
)

func TestPrepare(t *testing.T) {
	rq := require.New(t)

	src := imaging.Uniform(10, 4, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	src.Set(0, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	stretched := imaging.Prepare(src, 1)
	rq.Equal(uint8(255), stretched.GrayAt(0, 0).Y)
	rq.Equal(uint8(0), stretched.GrayAt(9, 3).Y)

	scaled := imaging.Prepare(src, 3)
	rq.Equal(image.Rect(0, 0, 30, 12), scaled.Bounds())
	rq.Equal(uint8(0), scaled.GrayAt(29, 11).Y)
	rq.Greater(scaled.GrayAt(1, 1).Y, uint8(128))
}

func TestPrepare_FlatImageIsUntouched(t *testing.T) {
	rq := require.New(t)

	out := imaging.Prepare(imaging.Uniform(4, 4, color.Gray{Y: 90}), 1)
	rq.Equal(image.Rect(0, 0, 4, 4), out.Bounds())
	for _, p := range out.Pix {
		rq.Equal(uint8(90), p)
	}
}

func TestInvert(t *testing.T) {
	rq := require.New(t)

	dark := imaging.Prepare(imaging.Uniform(2, 2, color.Gray{Y: 10}), 1)
	imaging.Invert(dark)
	rq.Equal(uint8(245), dark.Pix[0])

	light := imaging.Prepare(imaging.Uniform(2, 2, color.Gray{Y: 200}), 1)
	imaging.Invert(light)
	rq.Equal(uint8(200), light.Pix[0])
}

func TestEncodePNG(t *testing.T) {
	rq := require.New(t)

	data, err := imaging.EncodePNG(imaging.Uniform(3, 2, color.White))
	rq.NoError(err)

	img, err := png.Decode(bytes.NewReader(data))
	rq.NoError(err)
	rq.Equal(image.Rect(0, 0, 3, 2), img.Bounds())
}
