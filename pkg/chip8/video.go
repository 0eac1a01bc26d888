package chip8

import (
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// GetFramebufferRGBA decodes the display into a 64x32 RGBA8888 byte slice
// (length 64*32*4) using fg for lit cells and bg for the rest.
func (d *Display) GetFramebufferRGBA(fg, bg color.RGBA) []byte {
	pixels := make([]byte, DisplayWidth*DisplayHeight*4)
	for i, lit := range d.Pixels {
		c := bg
		if lit {
			c = fg
		}
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
	return pixels
}

// GetFramebufferImage returns the display as an unscaled *image.RGBA.
func (d *Display) GetFramebufferImage(fg, bg color.RGBA) *image.RGBA {
	return &image.RGBA{
		Pix:    d.GetFramebufferRGBA(fg, bg),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// RenderImage scales the display by scale with nearest-neighbour sampling.
// With border set, the right and bottom pixel of every cell is painted bg so
// lit cells appear as separate squares.
func (d *Display) RenderImage(fg, bg color.RGBA, scale int, border bool) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := d.GetFramebufferImage(fg, bg)
	dst := image.NewRGBA(image.Rect(0, 0, DisplayWidth*scale, DisplayHeight*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	if border && scale > 1 {
		for y := 0; y < dst.Rect.Dy(); y++ {
			for x := 0; x < dst.Rect.Dx(); x++ {
				if x%scale == scale-1 || y%scale == scale-1 {
					dst.SetRGBA(x, y, bg)
				}
			}
		}
	}
	return dst
}

// SaveScreenshot encodes the display as a PNG at the given scale.
func (d *Display) SaveScreenshot(filename string, fg, bg color.RGBA, scale int) error {
	img := d.RenderImage(fg, bg, scale, false)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
