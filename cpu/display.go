package cpu

import (
	"iter"
	"strings"
)

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
	SPRITE_WIDTH   = 8
)

// Display is the monochrome framebuffer.
//
// Dirty is set whenever the framebuffer changes, and is cleared by the
// renderer (see Consume) once it has drawn the frame.
type Display struct {
	Pixel [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool
	Dirty bool
}

// Reset blanks the display without marking it dirty.
func (d *Display) Reset() {
	clear(d.Pixel[:])
	d.Dirty = false
}

// Clear blanks the display.
func (d *Display) Clear() {
	clear(d.Pixel[:])
	d.Dirty = true
}

// Get returns the pixel at (x, y). Out of range pixels are unset.
func (d *Display) Get(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}
	return d.Pixel[y][x]
}

// Draw XORs sprite onto the display, one byte per row, with the top left
// corner at (x, y). The origin wraps around the display; pixels beyond the
// right or bottom edge are clipped.
//
// Returns true if any pixel was turned off.
func (d *Display) Draw(x, y int, sprite []byte) (collision bool) {
	x %= DISPLAY_WIDTH
	y %= DISPLAY_HEIGHT

	for row, bits := range sprite {
		py := y + row
		if py >= DISPLAY_HEIGHT {
			break
		}
		for col := range SPRITE_WIDTH {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := x + col
			if px >= DISPLAY_WIDTH {
				break
			}
			if d.Pixel[py][px] {
				collision = true
			}
			d.Pixel[py][px] = !d.Pixel[py][px]
		}
	}

	d.Dirty = true

	return
}

// Consume returns the dirty flag, and clears it.
func (d *Display) Consume() (dirty bool) {
	dirty = d.Dirty
	d.Dirty = false
	return
}

// Rows iterates over the display rows, top to bottom.
func (d *Display) Rows() iter.Seq2[int, []bool] {
	return func(yield func(y int, row []bool) bool) {
		for y := range d.Pixel {
			if !yield(y, d.Pixel[y][:]) {
				return
			}
		}
	}
}

// String renders the display as text, '#' for set pixels and '.' for unset.
func (d *Display) String() string {
	var sb strings.Builder

	sb.Grow((DISPLAY_WIDTH + 1) * DISPLAY_HEIGHT)
	for _, row := range d.Rows() {
		for _, set := range row {
			if set {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
