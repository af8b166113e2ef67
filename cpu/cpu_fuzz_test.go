package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for rv := range 0x10 {
		f.Add(uint16(rv<<12), uint16(0x200), uint8(0), uint8(rv), uint8(rv*16+rv))
		f.Add(uint16(rv<<12|0xfff), uint16(0xffe), uint8(16), uint8(0xff), uint8(rv))
	}
	f.Add(uint16(0x00ee), uint16(0x300), uint8(0), uint8(0), uint8(0))
	f.Add(uint16(0x2300), uint16(0x300), uint8(16), uint8(0), uint8(0))
	f.Add(uint16(0xff65), uint16(0xf00), uint8(3), uint8(0x80), uint8(0x11))

	f.Fuzz(func(t *testing.T, opcode uint16, index uint16, depth uint8, keys uint8, value uint8) {
		assert := assert.New(t)

		cpu := NewCpu()
		cpu.SetSeed(uint64(opcode), uint64(index))
		cpu.Reset()

		cpu.Pc = 0x200 + uint16(value)*2
		cpu.I = index
		for n := range cpu.Register {
			cpu.Register[n] = value + uint8(n)*0x11
		}
		for n := range int(depth) % (STACK_LIMIT + 1) {
			cpu.Stack.Push(uint16(0x200 + n*2))
		}
		if keys&0x80 != 0 {
			cpu.Keypad.Press(int(keys))
		}
		cpu.Delay = value
		cpu.Sound = ^value

		before := *cpu

		err := cpu.Execute(Code{Word: opcode})

		// Invariants that always hold.
		assert.LessOrEqual(cpu.Pc, uint16(ADDRESS_MASK))
		assert.GreaterOrEqual(cpu.Stack.Sp, 0)
		assert.LessOrEqual(cpu.Stack.Sp, STACK_LIMIT)
		assert.Equal(Font[:], cpu.Memory.Data[FONT_START:FONT_START+len(Font)])
		assert.Equal(opcode, cpu.Opcode)

		if err != nil {
			// Faults are limited to the stack, and leave the state unchanged.
			assert.True(errors.Is(err, ErrStackEmpty) || errors.Is(err, ErrStackFull), err)
			assert.True(errors.Is(err, ErrOpcode{}))
			assert.Equal(before.Pc, cpu.Pc)
			assert.Equal(before.Register, cpu.Register)
			assert.Equal(before.Stack, cpu.Stack)
			assert.Equal(before.Ticks, cpu.Ticks)
			return
		}

		assert.Equal(before.Ticks+1, cpu.Ticks)

		kind := Code{Word: opcode}.Kind()
		switch kind {
		case KIND_CLS, KIND_DRW:
			assert.True(cpu.Display.Dirty)
		default:
			assert.False(cpu.Display.Dirty)
		}

		switch kind {
		case KIND_UNKNOWN, KIND_SYS:
			assert.Equal(before.Register, cpu.Register)
			assert.Equal(before.I, cpu.I)
			assert.Equal(before.Memory, cpu.Memory)
			assert.Equal((before.Pc+2)&ADDRESS_MASK, cpu.Pc)
		case KIND_LD_VX_K:
			if keys&0x80 == 0 {
				assert.Equal(before.Pc, cpu.Pc)
			} else {
				assert.Equal(uint8(keys&0xf), cpu.Register[Code{Word: opcode}.X()])
			}
		}
	})
}
