package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []byte
	Data      bool // Set for .byte and .word directives.
	LinkLabel string
}

// Codes returns the instructions of the opcode; data directives have none.
func (op *Opcode) Codes() (codes []Code) {
	if op.Data {
		return
	}

	for n := 0; n+1 < len(op.Bytes); n += 2 {
		codes = append(codes, Code{Word: uint16(op.Bytes[n])<<8 | uint16(op.Bytes[n+1])})
	}

	return
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source of a memory address.
type Debug struct {
	*Opcode
	Index int // Byte offset of the address within the opcode.
}

// Debug returns the opcode that generated the byte at addr, if any.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Size returns the size in bytes of the program image.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		end := op.Addr + len(op.Bytes) - PROGRAM_START
		size = max(size, end)
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (rom []byte) {
	rom = make([]byte, prog.Size())
	for _, op := range prog.Opcodes {
		copy(rom[op.Addr-PROGRAM_START:], op.Bytes)
	}

	return
}

// Codes iterates over all of the instructions, by address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for n := range prog.Opcodes {
			op := &prog.Opcodes[n]
			for index, code := range op.Codes() {
				if !yield(uint16(op.Addr+index*2), code) {
					return
				}
			}
		}
	}
}
