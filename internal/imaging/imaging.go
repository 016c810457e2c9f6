package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	// decoders for the formats we accept as image payloads
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads an image in any of the registered formats.
// Returns the image and the format name.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// Fit creates a copy of the given image, scaled down so that it is no wider
// than maxWidth pixels. The aspect ratio is kept.
// Images that are small enough are returned unchanged.
func Fit(i image.Image, maxWidth int) image.Image {
	b := i.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return i
	}

	scale := float64(maxWidth) / float64(b.Dx())
	height := int(math.Max(1, math.Round(float64(b.Dy())*scale)))
	size := image.Rect(0, 0, maxWidth, height)

	dst := image.NewRGBA(size)
	// bilinear is good enough for photos and screenshots
	s := draw.BiLinear
	s.Scale(dst, size, i, b, draw.Over, nil)
	return dst
}

// ToGray creates a grayscale version of the given image.
func ToGray(i image.Image) image.Image {
	b := i.Bounds()
	g := image.NewGray(b)
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			g.Set(x, y, color.GrayModel.Convert(i.At(x, y)))
		}
	}
	return g
}

// EncodePNG encodes the image as PNG.
func EncodePNG(i image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, i)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
