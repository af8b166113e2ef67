// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/translate"
)

func main() {
	var compile string
	var rom string
	var output string
	var frames int
	var cycles int
	var keys string
	var script string
	var seed uint64
	var trace bool
	var defines bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".c8s file to assemble")
	flag.StringVar(&rom, "r", "", "ROM image to run")
	flag.StringVar(&output, "o", "", "Write assembled ROM image, do not execute")
	flag.IntVar(&frames, "f", emulator.TIMER_HZ, "Frames to run")
	flag.IntVar(&cycles, "n", emulator.CYCLES_PER_FRAME, "Instructions per frame")
	flag.StringVar(&keys, "k", "", "Keys held down (QWERTY layout)")
	flag.StringVar(&script, "i", "", "Keypad script, one key state per frame")
	flag.Uint64Var(&seed, "s", 0, "Random seed (0 for random)")
	flag.BoolVar(&trace, "t", false, "Print every changed frame")
	flag.BoolVar(&defines, "D", false, "List predefined equates")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v=%v\n", key, value)
		}
		return
	}

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		emu.Program = prog
	}

	if len(output) != 0 {
		if len(compile) == 0 {
			log.Fatalf("%v: -o requires -c", os.Args[0])
		}
		err := os.WriteFile(output, emu.Program.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if len(rom) != 0 {
		image, err := io.OpenRom(os.DirFS(filepath.Dir(rom)), filepath.Base(rom))
		if err != nil {
			log.Fatal(err)
		}
		emu.Rom = *image
	}

	if len(script) != 0 {
		inf, err := os.Open(script)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if trace {
		emu.Tape.Output = os.Stdout
	}

	if seed != 0 {
		emu.Cpu.SetSeed(seed, seed)
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range keys {
		key, ok := cpu.KeyOf(r)
		if !ok {
			log.Fatalf("%v: unknown key '%c'", os.Args[0], r)
		}
		emu.Cpu.Keypad.Press(key)
	}

	for range frames {
		done, err := emu.Frame(cycles)
		if err != nil {
			log.Fatal(err)
		}
		if done {
			break
		}
	}

	if !trace {
		fmt.Print(emu.Cpu.Display.String())
	}

	if verbose {
		fmt.Print(emu.Cpu.String())
		translate.Print("%v: %d instructions", os.Args[0], emu.Cpu.Ticks)
	}
}
