package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.Equal(cpu.PROGRAM_START, emu.Addr())
	assert.Equal(0, emu.LineNo())
}

func doAssemble(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if !assert.NoError(err) {
		t.FailNow()
	}
	emu.Program = prog

	err = emu.Reset()
	if !assert.NoError(err) {
		t.FailNow()
	}
}

func doRunSingle(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	doAssemble(emu, program, t)

	for addr := range emu.Program.Codes() {
		assert.Equal(int(addr), emu.Addr())
		here := program[emu.LineNo()-1]
		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v: %v", here, err)
		}
		if done {
			return
		}
	}

	t.Fatal("program did not halt")
}

func TestEmulatorArithmetic(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"  ld v0, 200",
		"  ld v1, 100",
		"  add v0, v1", // v0 = 44, vf = 1
		"  ld v2, vf",  // v2 = 1
		"  ld v3, 10",  // v3 = 10
		"  sub v3, v2", // v3 = 9, vf = 1
		"  ld i, scratch",
		"  ld b, v0",   // 0, 4, 4
		"  ld v2, [i]", // v0..v2 = 0, 4, 4
		"halt: jp halt",
		"scratch: .byte 0 0 0",
	}

	emu := NewEmulator()
	doRunSingle(emu, program, t)

	assert.Equal(uint8(0), emu.Cpu.Register[0])
	assert.Equal(uint8(4), emu.Cpu.Register[1])
	assert.Equal(uint8(4), emu.Cpu.Register[2])
	assert.Equal(uint8(9), emu.Cpu.Register[3])
	assert.Equal(uint8(1), emu.Cpu.Register[cpu.REG_FLAG])
}

func TestEmulatorSubroutine(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro double reg",
		"  add reg, reg",
		".endm",
		"  ld v1, 3",
		"  call twice",
		"  call twice",
		"halt: jp halt",
		"twice:",
		"  double v1",
		"  ret",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	var done bool
	for range 100 {
		var err error
		done, err = emu.Tick()
		assert.NoError(err)
		if done {
			break
		}
	}

	assert.True(done)
	assert.Equal(uint8(12), emu.Cpu.Register[1])
	assert.True(emu.Cpu.Stack.Empty())
	assert.Equal(7, emu.LineNo())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"  cls",
		"  ret",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	done, err = emu.Tick()
	assert.False(done)
	assert.Error(err)
	assert.True(errors.Is(err, cpu.ErrStackEmpty))
	assert.True(errors.Is(err, cpu.ErrOpcode{}))

	var err_runtime *ErrRuntime
	if assert.True(errors.As(err, &err_runtime)) {
		assert.Equal(0x202, err_runtime.Addr)
		assert.Equal(2, err_runtime.LineNo)
		assert.Contains(err_runtime.Error(), "line 2")
	}

	// The fault leaves the program counter on the faulting instruction.
	assert.Equal(0x202, emu.Addr())
}

func TestEmulatorRom(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Rom = io.Rom{Name: "test.ch8", Data: []byte{0x60, 0x05, 0x12, 0x02}}

	err := emu.Reset()
	assert.NoError(err)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint8(5), emu.Cpu.Register[0])

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)

	// No listing, no line numbers.
	assert.Equal(0, emu.LineNo())

	emu.Rom.Data = []byte{0x00, 0xee}
	assert.NoError(emu.Reset())
	_, err = emu.Tick()
	var err_runtime *ErrRuntime
	if assert.True(errors.As(err, &err_runtime)) {
		assert.Equal(0, err_runtime.LineNo)
		assert.NotContains(err_runtime.Error(), "line")
	}
}

func TestEmulatorRomTooLarge(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Rom = io.Rom{Name: "huge.ch8", Data: make([]byte, cpu.PROGRAM_LIMIT+1)}

	err := emu.Reset()
	assert.Error(err)
	assert.True(errors.Is(err, cpu.ErrRomTooLarge(0)))

	var err_rom *io.ErrRom
	if assert.True(errors.As(err, &err_rom)) {
		assert.Equal("huge.ch8", err_rom.Name)
	}
}

func TestEmulatorFrame(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"  ld v0, 0",
		"  ld v1, 0",
		"  ld v2, 2",
		"  ld dt, v2",
		"wait:",
		"  ld v3, k",
		"  ld f, v3",
		"  drw v0, v1, FONT_GLYPH",
		"halt: jp halt",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	output := &bytes.Buffer{}
	emu.Tape.Output = output
	emu.Tape.Input = strings.NewReader("..1")

	// Two frames blocked on the keypad.
	for range 2 {
		done, err := emu.Frame(CYCLES_PER_FRAME)
		assert.NoError(err)
		assert.False(done)
		assert.Equal(0x208, emu.Addr())
	}
	assert.Equal(uint8(0), emu.Cpu.Delay)
	assert.Equal(0, emu.Tape.Frames)

	// Key '1' pressed, glyph drawn, program halts.
	done, err := emu.Frame(CYCLES_PER_FRAME)
	assert.NoError(err)
	assert.True(done)
	assert.Equal(1, emu.Tape.Frames)
	assert.Equal(uint8(1), emu.Cpu.Register[3])

	text := output.String()
	assert.True(strings.HasPrefix(text, "..#."))
	assert.Equal(emu.Cpu.Display.String()+strings.Repeat("-", cpu.DISPLAY_WIDTH)+"\n", text)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("60", defines["TIMER_HZ"])
	assert.Equal("10", defines["CYCLES_PER_FRAME"])
	assert.Equal("0x200", defines["PROGRAM_START"])
}
