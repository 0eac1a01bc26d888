package chip8

import "gochip8/pkg/grid"

const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the 64x32 monochrome framebuffer, row-major.
type Display struct {
	Pixels [DisplayWidth * DisplayHeight]bool
	dirty  bool
}

func (d *Display) Clear() {
	d.Pixels = [DisplayWidth * DisplayHeight]bool{}
	d.dirty = true
}

// Pixel reports whether the cell at (x, y) is lit. Out of range is false.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return d.Pixels[grid.Index(x, y, DisplayWidth)]
}

// xor toggles the cell and reports whether it was lit before.
func (d *Display) xor(x, y int) bool {
	i := grid.Index(x, y, DisplayWidth)
	was := d.Pixels[i]
	d.Pixels[i] = !was
	return was
}

// Dirty reports whether a clear or draw ran since the last TakeDirty.
func (d *Display) Dirty() bool {
	return d.dirty
}

// TakeDirty returns the dirty flag and clears it.
func (d *Display) TakeDirty() bool {
	was := d.dirty
	d.dirty = false
	return was
}

// Lit counts lit cells.
func (d *Display) Lit() int {
	n := 0
	for _, p := range d.Pixels {
		if p {
			n++
		}
	}
	return n
}
