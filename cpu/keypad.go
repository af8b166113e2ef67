package cpu

import (
	"unicode"
)

const (
	KEY_COUNT = 16
	KEY_MASK  = 0xf
)

// Keypad is the latch of the 16 hexadecimal keys. It is written by the
// host's input layer and only read by the Cpu.
type Keypad struct {
	Key [KEY_COUNT]bool
}

// Press latches key as pressed.
func (kp *Keypad) Press(key int) {
	kp.Key[key&KEY_MASK] = true
}

// Release latches key as released.
func (kp *Keypad) Release(key int) {
	kp.Key[key&KEY_MASK] = false
}

// Pressed returns true if key is pressed.
func (kp *Keypad) Pressed(key int) bool {
	return kp.Key[key&KEY_MASK]
}

// First returns the lowest numbered pressed key.
func (kp *Keypad) First() (key int, ok bool) {
	for key, ok = range kp.Key {
		if ok {
			return
		}
	}

	return 0, false
}

func (kp *Keypad) Reset() {
	clear(kp.Key[:])
}

// keyMap is the conventional QWERTY layout of the keypad:
//
//	1 2 3 4    1 2 3 C
//	q w e r    4 5 6 D
//	a s d f    7 8 9 E
//	z x c v    A 0 B F
var keyMap = map[rune]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyOf maps a host keyboard character to a keypad key.
func KeyOf(r rune) (key int, ok bool) {
	key, ok = keyMap[unicode.ToLower(r)]
	return
}
