package io

import (
	"io"
	"io/fs"

	"github.com/ezrec/chip8/cpu"
)

// Rom is a raw CHIP-8 program image, loaded at cpu.PROGRAM_START.
type Rom struct {
	Name string
	Data []byte
}

var _ io.ReaderFrom = (*Rom)(nil)

// ReadFrom replaces the image with the contents of r.
// Images larger than cpu.PROGRAM_LIMIT are rejected, leaving Data unchanged.
// Reading stops at the first byte past the limit.
func (rom *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	data, err := io.ReadAll(io.LimitReader(r, cpu.PROGRAM_LIMIT+1))
	n = int64(len(data))
	if err != nil {
		return
	}

	if len(data) > cpu.PROGRAM_LIMIT {
		err = cpu.ErrRomTooLarge(n)
		return
	}

	rom.Data = data
	return
}

// ReadRom reads a program image from r.
func ReadRom(r io.Reader) (rom *Rom, err error) {
	rom = &Rom{}
	_, err = rom.ReadFrom(r)
	if err != nil {
		rom = nil
	}

	return
}

// OpenRom reads the named program image from fsys.
func OpenRom(fsys fs.FS, name string) (rom *Rom, err error) {
	defer func() {
		if err != nil {
			rom = nil
			err = &ErrRom{Name: name, Err: err}
		}
	}()

	inf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	rom = &Rom{Name: name}
	_, err = rom.ReadFrom(inf)

	return
}
