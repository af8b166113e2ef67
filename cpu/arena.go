package cpu

import (
	"log"
)

const (
	MEMORY_SIZE   = 0x1000 // Total addressable memory.
	ADDRESS_MASK  = 0x0fff // Mask applied to every memory address.
	FONT_START    = 0x0000 // Built-in font glyphs.
	FONT_GLYPH    = 5      // Bytes per font glyph.
	PROGRAM_START = 0x0200 // First byte of program memory.
	PROGRAM_LIMIT = MEMORY_SIZE - PROGRAM_START
)

// Memory is the 4KiB CHIP-8 address space.
//
// All addresses are taken modulo MEMORY_SIZE. Writes into the reserved
// interpreter area below PROGRAM_START are dropped.
type Memory struct {
	Verbose bool
	Data    [MEMORY_SIZE]byte
}

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint16) byte {
	return mem.Data[addr&ADDRESS_MASK]
}

// Word returns the big-endian 16-bit word at addr.
func (mem *Memory) Word(addr uint16) uint16 {
	return uint16(mem.Read(addr))<<8 | uint16(mem.Read(addr+1))
}

// Write stores value at addr, returning false if the write was dropped.
func (mem *Memory) Write(addr uint16, value byte) (ok bool) {
	addr &= ADDRESS_MASK
	if addr < PROGRAM_START {
		if mem.Verbose {
			log.Printf("memory: write 0x%03x to reserved 0x%03x dropped", value, addr)
		}
		return false
	}

	mem.Data[addr] = value
	return true
}

// Load copies data into program memory at PROGRAM_START.
func (mem *Memory) Load(data []byte) (err error) {
	if len(data) > PROGRAM_LIMIT {
		err = ErrRomTooLarge(len(data))
		return
	}

	copy(mem.Data[PROGRAM_START:], data)
	return
}

// Reset zeros memory and installs the font.
func (mem *Memory) Reset() {
	clear(mem.Data[:])
	copy(mem.Data[FONT_START:], Font[:])
}
