// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	TIMER_HZ         = 60 // Nominal timer tick rate.
	CYCLES_PER_FRAME = 10 // Default instructions per timer tick.
)

var _emulator_defines = map[string]string{
	"TIMER_HZ":         fmt.Sprintf("%v", TIMER_HZ),
	"CYCLES_PER_FRAME": fmt.Sprintf("%v", CYCLES_PER_FRAME),
}

// Emulator state. CPU + program listing + ROM + headless host.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the assembled program listing, if any.

	Rom  io.Rom  // Program image loaded on Reset.
	Tape io.Tape // Headless display and keypad.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the emulator, and load the program image.
// An assembled Program takes precedence over the Rom.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Program != nil && len(emu.Program.Opcodes) != 0 {
		emu.Rom.Data = emu.Program.Binary()
	}

	err = emu.Cpu.Load(emu.Rom.Data)
	if err != nil {
		err = &io.ErrRom{Name: emu.Rom.Name, Err: err}
		return
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %d byte image", len(emu.Rom.Data))
	}

	return
}

// Addr returns current program counter.
func (emu *Emulator) Addr() int {
	return int(emu.Cpu.Pc)
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() cpu.Code {
	return emu.Cpu.FetchCode()
}

// LineNo returns the source line number for the instruction at the
// program counter, or 0 if unknown.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
//
// done is set when the instruction is a jump to itself, the conventional
// way for a program to halt.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	addr := emu.Addr()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Addr: addr, LineNo: lineno, Err: err}
		}
	}()

	code := emu.Code()

	err = emu.Cpu.Step()
	if err != nil {
		return
	}

	done = code.Kind() == cpu.KIND_JP && int(code.NNN()) == addr

	return
}

// Frame runs one host frame: polls the keypad from the Tape, runs up to
// cycles instructions, ticks the timers once and renders the display to
// the Tape.
func (emu *Emulator) Frame(cycles int) (done bool, err error) {
	err = emu.Tape.Poll(&emu.Cpu.Keypad)
	if err != nil {
		return
	}

	for range cycles {
		done, err = emu.Tick()
		if done || err != nil {
			break
		}
	}
	if err != nil {
		return
	}

	emu.Cpu.TimerTick()

	err = emu.Tape.Render(&emu.Cpu.Display)

	return
}
