package types

import (
	"image"
	"image/color"
)

// FrameImage exposes a Frame's BGR pixel buffer as a draw.Image so standard
// image code (JPEG encoding, font rendering) can operate on it directly.
// Set writes back into the frame's pixels.
type FrameImage struct {
	f *Frame
}

// Image returns a mutable image view over the frame's pixels.
func (f *Frame) Image() *FrameImage {
	return &FrameImage{f: f}
}

func (im *FrameImage) ColorModel() color.Model { return color.RGBAModel }

func (im *FrameImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.f.Width, im.f.Height)
}

func (im *FrameImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= im.f.Width || y >= im.f.Height {
		return color.RGBA{}
	}
	i := (y*im.f.Width + x) * 3
	return color.RGBA{
		B: im.f.Pixels[i],
		G: im.f.Pixels[i+1],
		R: im.f.Pixels[i+2],
		A: 0xff,
	}
}

func (im *FrameImage) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= im.f.Width || y >= im.f.Height {
		return
	}
	r, g, b, _ := c.RGBA()
	i := (y*im.f.Width + x) * 3
	im.f.Pixels[i] = byte(b >> 8)
	im.f.Pixels[i+1] = byte(g >> 8)
	im.f.Pixels[i+2] = byte(r >> 8)
}
