// Package testimage builds small synthetic images for tests.
package testimage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

// SubFrame describes one GIF sub-frame: a rectangle filled with a colour.
type SubFrame struct {
	Rect  image.Rectangle
	Fill  color.Color
	Delay int
}

// GIF encodes an animated GIF with the given logical screen and sub-frames.
// A nil Fill produces a fully transparent sub-frame.
func GIF(t testing.TB, width, height int, frames []SubFrame) []byte {
	t.Helper()
	g := &gif.GIF{Config: image.Config{Width: width, Height: height}}
	for _, f := range frames {
		fill := f.Fill
		if fill == nil {
			fill = color.Transparent
		}
		pal := color.Palette{fill, color.RGBA{0, 0, 0, 255}}
		img := image.NewPaletted(f.Rect, pal)
		for y := f.Rect.Min.Y; y < f.Rect.Max.Y; y++ {
			for x := f.Rect.Min.X; x < f.Rect.Max.X; x++ {
				img.SetColorIndex(x, y, 0)
			}
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, f.Delay)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encoding test GIF: %v", err)
	}
	return buf.Bytes()
}

// AnimatedGIF encodes a full-canvas GIF with one distinct colour per delay.
func AnimatedGIF(t testing.TB, width, height int, delays ...int) []byte {
	t.Helper()
	frames := make([]SubFrame, len(delays))
	for i, d := range delays {
		frames[i] = SubFrame{
			Rect:  image.Rect(0, 0, width, height),
			Fill:  color.RGBA{uint8(40 * (i + 1)), uint8(200 - 30*i), uint8(10 * i), 255},
			Delay: d,
		}
	}
	return GIF(t, width, height, frames)
}

// EmptyGIF returns a well-formed GIF stream that contains no image blocks.
func EmptyGIF() []byte {
	return []byte{
		'G', 'I', 'F', '8', '9', 'a',
		0x01, 0x00, // width
		0x01, 0x00, // height
		0x00, // no global colour table
		0x00, // background
		0x00, // aspect
		0x3B, // trailer
	}
}

// Gradient returns an opaque image whose pixels vary with position.
func Gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// PNG encodes a gradient PNG.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Gradient(width, height)); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

// JPEG encodes a gradient JPEG.
func JPEG(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(width, height), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

// DecodePNG decodes PNG bytes, failing the test on error.
func DecodePNG(t testing.TB, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	return img
}
