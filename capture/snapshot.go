// Package capture reads rendered frames back from the framebuffer and saves
// them as PNG snapshots or ffmpeg encoded video.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// PixelReader reads an RGBA rectangle of the current framebuffer, bottom row
// first.
type PixelReader interface {
	ReadPixels(x, y, width, height int) []byte
}

// Snapshot reads the width x height framebuffer into a top-down image.
func Snapshot(r PixelReader, width, height int) (*image.RGBA, error) {
	pix := r.ReadPixels(0, 0, width, height)
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("capture: read %d bytes for %dx%d", len(pix), width, height)
	}
	img := &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return vflip(img), nil
}

// vflip returns src with its rows in reverse order.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("capture: encode %s: %w", path, err)
	}
	return f.Close()
}
