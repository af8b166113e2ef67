package io

import (
	"io"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

// Tape is a headless host for the emulator.
//
// Output receives a text rendering of every frame in which the display
// changed. Input is a script of keypad states, one byte per poll: a keyboard
// character (see cpu.KeyOf) presses that key alone, '.' releases all keys,
// and any other byte leaves the keypad unchanged.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Frames int // Frames written to Output.
}

// Render writes the display to Output if it has changed, and marks it
// consumed.
func (tc *Tape) Render(display *cpu.Display) (err error) {
	if tc.Output == nil || !display.Consume() {
		return
	}

	_, err = io.WriteString(tc.Output, display.String()+strings.Repeat("-", cpu.DISPLAY_WIDTH)+"\n")
	if err != nil {
		return
	}

	tc.Frames++

	return
}

// Poll reads the next keypad state from Input. A drained input leaves
// the keypad unchanged.
func (tc *Tape) Poll(keypad *cpu.Keypad) (err error) {
	if tc.Input == nil {
		return
	}

	var one [1]byte
	n, err := tc.Input.Read(one[:])
	if err == io.EOF {
		err = nil
	}
	if n == 0 || err != nil {
		return
	}

	if one[0] == '.' {
		keypad.Reset()
		return
	}

	key, ok := cpu.KeyOf(rune(one[0]))
	if ok {
		keypad.Reset()
		keypad.Press(key)
	}

	return
}
