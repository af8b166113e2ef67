package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayDraw(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	assert.False(d.Dirty)

	collision := d.Draw(0, 0, Glyph(0))
	assert.False(collision)
	assert.True(d.Dirty)

	// Glyph '0' is 0xF0, 0x90, 0x90, 0x90, 0xF0
	assert.True(d.Get(0, 0))
	assert.True(d.Get(3, 0))
	assert.False(d.Get(4, 0))
	assert.True(d.Get(0, 1))
	assert.False(d.Get(1, 1))
	assert.True(d.Get(3, 4))

	assert.True(d.Consume())
	assert.False(d.Dirty)
	assert.False(d.Consume())

	collision = d.Draw(0, 0, Glyph(0))
	assert.True(collision)
	for _, row := range d.Rows() {
		for _, set := range row {
			assert.False(set)
		}
	}
}

func TestDisplayClip(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(DISPLAY_WIDTH-2, DISPLAY_HEIGHT-1, []byte{0xff, 0xff})

	assert.True(d.Get(DISPLAY_WIDTH-2, DISPLAY_HEIGHT-1))
	assert.True(d.Get(DISPLAY_WIDTH-1, DISPLAY_HEIGHT-1))
	// Clipped, not wrapped.
	assert.False(d.Get(0, DISPLAY_HEIGHT-1))
	assert.False(d.Get(0, 0))
	assert.False(d.Get(DISPLAY_WIDTH-2, 0))

	count := strings.Count(d.String(), "#")
	assert.Equal(2, count)
}

func TestDisplayWrapOrigin(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(DISPLAY_WIDTH+3, DISPLAY_HEIGHT+2, []byte{0x80})
	assert.True(d.Get(3, 2))
	assert.Equal(1, strings.Count(d.String(), "#"))
}

func TestDisplayClearReset(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(1, 1, []byte{0x80})
	d.Consume()

	d.Clear()
	assert.True(d.Dirty)
	assert.False(d.Get(1, 1))

	d.Draw(1, 1, []byte{0x80})
	d.Reset()
	assert.False(d.Dirty)
	assert.False(d.Get(1, 1))

	assert.False(d.Get(-1, 0))
	assert.False(d.Get(DISPLAY_WIDTH, 0))
}

func TestDisplayString(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(0, 0, []byte{0xa0})

	lines := strings.Split(strings.TrimSuffix(d.String(), "\n"), "\n")
	assert.Equal(DISPLAY_HEIGHT, len(lines))
	assert.Equal("#.#."+strings.Repeat(".", DISPLAY_WIDTH-4), lines[0])
	assert.Equal(strings.Repeat(".", DISPLAY_WIDTH), lines[1])
}
