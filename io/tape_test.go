package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestTape_Render(t *testing.T) {
	assert := assert.New(t)

	display := &cpu.Display{}
	output := &bytes.Buffer{}
	tape := &Tape{Output: output}

	// Nothing to draw.
	err := tape.Render(display)
	assert.NoError(err)
	assert.Equal(0, output.Len())
	assert.Equal(0, tape.Frames)

	display.Draw(0, 0, []byte{0xc0})
	err = tape.Render(display)
	assert.NoError(err)
	assert.Equal(1, tape.Frames)
	assert.False(display.Dirty)

	lines := strings.Split(output.String(), "\n")
	assert.Len(lines, cpu.DISPLAY_HEIGHT+2)
	assert.Equal("##"+strings.Repeat(".", cpu.DISPLAY_WIDTH-2), lines[0])
	assert.Equal(strings.Repeat("-", cpu.DISPLAY_WIDTH), lines[cpu.DISPLAY_HEIGHT])
	assert.Equal("", lines[cpu.DISPLAY_HEIGHT+1])

	// Unchanged frames are skipped.
	err = tape.Render(display)
	assert.NoError(err)
	assert.Equal(1, tape.Frames)
}

func TestTape_Render_NoOutput(t *testing.T) {
	assert := assert.New(t)

	display := &cpu.Display{}
	display.Clear()

	tape := &Tape{}
	err := tape.Render(display)
	assert.NoError(err)
	assert.Equal(0, tape.Frames)
	assert.True(display.Dirty)
}

type failWriter struct{}

var errFail = errors.New("fail")

func (failWriter) Write([]byte) (int, error) {
	return 0, errFail
}

func TestTape_Render_Error(t *testing.T) {
	assert := assert.New(t)

	display := &cpu.Display{}
	display.Clear()

	tape := &Tape{Output: failWriter{}}
	err := tape.Render(display)
	assert.ErrorIs(err, errFail)
	assert.Equal(0, tape.Frames)
}

func TestTape_Poll(t *testing.T) {
	assert := assert.New(t)

	keypad := &cpu.Keypad{}
	tape := &Tape{Input: strings.NewReader("1V?.x")}

	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(0x1))

	assert.NoError(tape.Poll(keypad))
	assert.False(keypad.Pressed(0x1))
	assert.True(keypad.Pressed(0xf))

	// Unmapped bytes hold the keypad.
	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(0xf))

	assert.NoError(tape.Poll(keypad))
	_, ok := keypad.First()
	assert.False(ok)

	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(0x0))

	// Drained input holds the keypad.
	assert.NoError(tape.Poll(keypad))
	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(0x0))
}

func TestTape_Poll_NoInput(t *testing.T) {
	assert := assert.New(t)

	keypad := &cpu.Keypad{}
	keypad.Press(3)

	tape := &Tape{}
	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(3))
}

func TestTape_Poll_DataWithEOF(t *testing.T) {
	assert := assert.New(t)

	keypad := &cpu.Keypad{}
	tape := &Tape{Input: iotest.DataErrReader(strings.NewReader("x"))}

	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(0x0))

	assert.NoError(tape.Poll(keypad))
	assert.True(keypad.Pressed(0x0))
}

func TestTape_Poll_Error(t *testing.T) {
	assert := assert.New(t)

	keypad := &cpu.Keypad{}
	keypad.Press(2)
	tape := &Tape{Input: iotest.ErrReader(errFail)}

	assert.ErrorIs(tape.Poll(keypad), errFail)
	assert.True(keypad.Pressed(2))
}
