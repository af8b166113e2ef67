// Package cpu implements the interpreter and assembler for the CHIP-8 system.
//
// The interpreter consists of 4KiB of memory, sixteen 8-bit registers (v0-vf),
// a 16-bit index register (I), a program counter, a 16 level return stack,
// delay and sound timers, a 64x32 monochrome display and a 16 key keypad.
// The low 512 bytes of memory are reserved for the interpreter and hold the
// built-in hexadecimal font; programs are loaded at 0x200.
//
// The Cpu executes one instruction per Step. Timers are decremented only by
// TimerTick, which the host calls at its own cadence (nominally 60Hz).
//
// The assembler provides a small assembly language for the CHIP-8 instruction
// set, supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
