package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
)

const (
	REGISTER_COUNT = 16
	REG_FLAG       = 0xf // vf, the carry/borrow/collision flag.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("0x%x", MEMORY_SIZE),
	"PROGRAM_START":  fmt.Sprintf("0x%x", PROGRAM_START),
	"FONT_START":     fmt.Sprintf("0x%x", FONT_START),
	"FONT_GLYPH":     fmt.Sprintf("%d", FONT_GLYPH),
	"DISPLAY_WIDTH":  fmt.Sprintf("%d", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%d", DISPLAY_HEIGHT),
	"STACK_LIMIT":    fmt.Sprintf("%d", STACK_LIMIT),
}

// Cpu is the simulation context for the CHIP-8 interpreter.
//
// A Cpu is not safe for concurrent use; the host must confine Step,
// TimerTick, display reads and keypad writes to a single goroutine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   Memory                // Address space.
	Register [REGISTER_COUNT]uint8 // Register bank, v0-vf.
	I        uint16                // Index register.
	Pc       uint16                // Program counter.
	Stack    Stack                 // Return address stack.
	Delay    uint8                 // Delay timer.
	Sound    uint8                 // Sound timer.
	Display  Display               // Framebuffer.
	Keypad   Keypad                // Key latch.
	Opcode   uint16                // Most recently fetched instruction word.
	Random   *rand.Rand            // Source for the rnd instruction.

	Ticks int // Instructions executed since reset.

	seed   [2]uint64
	seeded bool
}

// NewCpu creates a new, reset CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// SetSeed pins the seed of the random number source, so that every Reset
// replays the same sequence. Takes effect immediately.
func (cpu *Cpu) SetSeed(seed1, seed2 uint64) {
	cpu.seed = [2]uint64{seed1, seed2}
	cpu.seeded = true
	cpu.Random = rand.New(rand.NewPCG(seed1, seed2))
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("%5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("%5s: %03X\n", "i", cpu.I)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("%5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}
	top, ok := cpu.Stack.Peek()
	if ok {
		text += fmt.Sprintf("%5s: %03X (%d)\n", "stack", top, cpu.Stack.Sp)
	} else {
		text += fmt.Sprintf("%5s: ---\n", "stack")
	}
	text += fmt.Sprintf("%5s: %02X\n", "dt", cpu.Delay)
	text += fmt.Sprintf("%5s: %02X\n", "st", cpu.Sound)

	return
}

// Reset the CPU state.
// - Zeros memory, registers, stack, keypad, display and timers.
// - Reloads the font into reserved memory.
// - Sets PC to the program start.
// - Reseeds the random number source.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.Keypad.Reset()
	cpu.Display.Reset()

	cpu.Pc = PROGRAM_START
	cpu.I = 0
	cpu.Delay = 0
	cpu.Sound = 0
	cpu.Opcode = 0
	cpu.Ticks = 0

	if !cpu.seeded {
		cpu.seed = [2]uint64{rand.Uint64(), rand.Uint64()}
	}
	cpu.Random = rand.New(rand.NewPCG(cpu.seed[0], cpu.seed[1]))
}

// Load resets the CPU, then copies rom into program memory.
// On failure the CPU is left reset.
func (cpu *Cpu) Load(rom []byte) (err error) {
	cpu.Reset()

	err = cpu.Memory.Load(rom)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(rom))
	}

	return
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code) {
	return Code{Word: cpu.Memory.Word(cpu.Pc)}
}

// Step executes a single CPU instruction cycle.
func (cpu *Cpu) Step() (err error) {
	cpu.Memory.Verbose = cpu.Verbose

	return cpu.Execute(cpu.FetchCode())
}

// TimerTick decrements the delay and sound timers towards zero.
func (cpu *Cpu) TimerTick() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
	if cpu.Sound > 0 {
		cpu.Sound--
	}
}

// setFlag sets vf to 1 or 0.
func (cpu *Cpu) setFlag(flag bool) {
	if flag {
		cpu.Register[REG_FLAG] = 1
	} else {
		cpu.Register[REG_FLAG] = 0
	}
}

// Execute executes a single instruction as if it had been fetched from the
// program counter. The program counter is advanced past the instruction
// before it takes effect, so jumps, calls, returns and skips replace or
// extend that advance.
//
// A fault leaves the CPU state, including the program counter, unchanged;
// only Opcode is updated, to record the faulting instruction.
// Unknown instructions are executed as no-ops.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	cpu.Opcode = code.Word
	next_pc := cpu.Pc + 2

	x, y := code.X(), code.Y()
	vx, vy := cpu.Register[x], cpu.Register[y]
	nn := code.NN()
	nnn := code.NNN()

	switch code.Kind() {
	case KIND_UNKNOWN, KIND_SYS:
		if cpu.Verbose {
			log.Printf("cpu: %03x: ignored 0x%04x", cpu.Pc, code.Word)
		}
	case KIND_CLS:
		cpu.Display.Clear()
	case KIND_RET:
		var ok bool
		next_pc, ok = cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
	case KIND_JP:
		next_pc = nnn
	case KIND_CALL:
		if !cpu.Stack.Push(next_pc & ADDRESS_MASK) {
			err = ErrStackFull
			return
		}
		next_pc = nnn
	case KIND_SE_IMM:
		if vx == nn {
			next_pc += 2
		}
	case KIND_SNE_IMM:
		if vx != nn {
			next_pc += 2
		}
	case KIND_SE_REG:
		if vx == vy {
			next_pc += 2
		}
	case KIND_SNE_REG:
		if vx != vy {
			next_pc += 2
		}
	case KIND_LD_IMM:
		cpu.Register[x] = nn
	case KIND_ADD_IMM:
		cpu.Register[x] = vx + nn
	case KIND_LD_REG:
		cpu.Register[x] = vy
	case KIND_OR:
		cpu.Register[x] = vx | vy
	case KIND_AND:
		cpu.Register[x] = vx & vy
	case KIND_XOR:
		cpu.Register[x] = vx ^ vy
	case KIND_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		cpu.setFlag(sum > 0xff)
		cpu.Register[x] = uint8(sum)
	case KIND_SUB:
		cpu.setFlag(vx >= vy)
		cpu.Register[x] = vx - vy
	case KIND_SHR:
		cpu.setFlag(vy&0x01 != 0)
		cpu.Register[x] = vy >> 1
	case KIND_SUBN:
		cpu.setFlag(vy >= vx)
		cpu.Register[x] = vy - vx
	case KIND_SHL:
		cpu.setFlag(vy&0x80 != 0)
		cpu.Register[x] = vy << 1
	case KIND_LD_I:
		cpu.I = nnn
	case KIND_JP_V0:
		next_pc = uint16(cpu.Register[0]) + nnn
	case KIND_RND:
		cpu.Register[x] = uint8(cpu.Random.Uint32()) & nn
	case KIND_DRW:
		var sprite [15]uint8
		rows := sprite[:code.N()]
		for n := range rows {
			rows[n] = cpu.Memory.Read(cpu.I + uint16(n))
		}
		cpu.setFlag(cpu.Display.Draw(int(vx), int(vy), rows))
	case KIND_SKP:
		if cpu.Keypad.Pressed(int(vx)) {
			next_pc += 2
		}
	case KIND_SKNP:
		if !cpu.Keypad.Pressed(int(vx)) {
			next_pc += 2
		}
	case KIND_LD_VX_DT:
		cpu.Register[x] = cpu.Delay
	case KIND_LD_VX_K:
		key, ok := cpu.Keypad.First()
		if ok {
			cpu.Register[x] = uint8(key)
		} else {
			// Don't advance to next PC.
			next_pc = cpu.Pc
		}
	case KIND_LD_DT_VX:
		cpu.Delay = vx
	case KIND_LD_ST_VX:
		cpu.Sound = vx
	case KIND_ADD_I_VX:
		sum := uint32(cpu.I) + uint32(vx)
		cpu.setFlag(sum > ADDRESS_MASK)
		cpu.I = uint16(sum)
	case KIND_LD_F_VX:
		cpu.I = FONT_START + uint16(vx)*FONT_GLYPH
	case KIND_LD_B_VX:
		cpu.Memory.Write(cpu.I, vx/100)
		cpu.Memory.Write(cpu.I+1, (vx/10)%10)
		cpu.Memory.Write(cpu.I+2, vx%10)
	case KIND_LD_MEM_VX:
		for n := range x + 1 {
			cpu.Memory.Write(cpu.I+uint16(n), cpu.Register[n])
		}
		cpu.I += uint16(x + 1)
	case KIND_LD_VX_MEM:
		for n := range x + 1 {
			cpu.Register[n] = cpu.Memory.Read(cpu.I + uint16(n))
		}
		cpu.I += uint16(x + 1)
	}

	cpu.Pc = next_pc & ADDRESS_MASK
	cpu.Ticks += 1

	return
}
