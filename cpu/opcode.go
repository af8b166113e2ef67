package cpu

import (
	"fmt"
)

// Kind is a decoded instruction kind.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_UNKNOWN   = Kind(0)  // .word
	KIND_SYS       = Kind(1)  // sys
	KIND_CLS       = Kind(2)  // cls
	KIND_RET       = Kind(3)  // ret
	KIND_JP        = Kind(4)  // jp
	KIND_CALL      = Kind(5)  // call
	KIND_SE_IMM    = Kind(6)  // se
	KIND_SNE_IMM   = Kind(7)  // sne
	KIND_SE_REG    = Kind(8)  // se
	KIND_LD_IMM    = Kind(9)  // ld
	KIND_ADD_IMM   = Kind(10) // add
	KIND_LD_REG    = Kind(11) // ld
	KIND_OR        = Kind(12) // or
	KIND_AND       = Kind(13) // and
	KIND_XOR       = Kind(14) // xor
	KIND_ADD_REG   = Kind(15) // add
	KIND_SUB       = Kind(16) // sub
	KIND_SHR       = Kind(17) // shr
	KIND_SUBN      = Kind(18) // subn
	KIND_SHL       = Kind(19) // shl
	KIND_SNE_REG   = Kind(20) // sne
	KIND_LD_I      = Kind(21) // ld
	KIND_JP_V0     = Kind(22) // jp
	KIND_RND       = Kind(23) // rnd
	KIND_DRW       = Kind(24) // drw
	KIND_SKP       = Kind(25) // skp
	KIND_SKNP      = Kind(26) // sknp
	KIND_LD_VX_DT  = Kind(27) // ld
	KIND_LD_VX_K   = Kind(28) // ld
	KIND_LD_DT_VX  = Kind(29) // ld
	KIND_LD_ST_VX  = Kind(30) // ld
	KIND_ADD_I_VX  = Kind(31) // add
	KIND_LD_F_VX   = Kind(32) // ld
	KIND_LD_B_VX   = Kind(33) // ld
	KIND_LD_MEM_VX = Kind(34) // ld
	KIND_LD_VX_MEM = Kind(35) // ld
	KIND_COUNT     = Kind(36) // -
)

// CodeForm is the operand layout of an instruction word.
type CodeForm int

const (
	FORM_NONE = CodeForm(iota) // ____
	FORM_NNN                   // _NNN
	FORM_XNN                   // _XNN
	FORM_XY                    // _XY_
	FORM_XYN                   // _XYN
	FORM_X                     // _X__
	FORM_WORD                  // NNNN
)

// codeTable is the base word and operand form of each instruction kind.
var codeTable = [KIND_COUNT]struct {
	Base uint16
	Form CodeForm
}{
	KIND_UNKNOWN:   {0x0000, FORM_WORD},
	KIND_SYS:       {0x0000, FORM_NNN},
	KIND_CLS:       {0x00e0, FORM_NONE},
	KIND_RET:       {0x00ee, FORM_NONE},
	KIND_JP:        {0x1000, FORM_NNN},
	KIND_CALL:      {0x2000, FORM_NNN},
	KIND_SE_IMM:    {0x3000, FORM_XNN},
	KIND_SNE_IMM:   {0x4000, FORM_XNN},
	KIND_SE_REG:    {0x5000, FORM_XY},
	KIND_LD_IMM:    {0x6000, FORM_XNN},
	KIND_ADD_IMM:   {0x7000, FORM_XNN},
	KIND_LD_REG:    {0x8000, FORM_XY},
	KIND_OR:        {0x8001, FORM_XY},
	KIND_AND:       {0x8002, FORM_XY},
	KIND_XOR:       {0x8003, FORM_XY},
	KIND_ADD_REG:   {0x8004, FORM_XY},
	KIND_SUB:       {0x8005, FORM_XY},
	KIND_SHR:       {0x8006, FORM_XY},
	KIND_SUBN:      {0x8007, FORM_XY},
	KIND_SHL:       {0x800e, FORM_XY},
	KIND_SNE_REG:   {0x9000, FORM_XY},
	KIND_LD_I:      {0xa000, FORM_NNN},
	KIND_JP_V0:     {0xb000, FORM_NNN},
	KIND_RND:       {0xc000, FORM_XNN},
	KIND_DRW:       {0xd000, FORM_XYN},
	KIND_SKP:       {0xe09e, FORM_X},
	KIND_SKNP:      {0xe0a1, FORM_X},
	KIND_LD_VX_DT:  {0xf007, FORM_X},
	KIND_LD_VX_K:   {0xf00a, FORM_X},
	KIND_LD_DT_VX:  {0xf015, FORM_X},
	KIND_LD_ST_VX:  {0xf018, FORM_X},
	KIND_ADD_I_VX:  {0xf01e, FORM_X},
	KIND_LD_F_VX:   {0xf029, FORM_X},
	KIND_LD_B_VX:   {0xf033, FORM_X},
	KIND_LD_MEM_VX: {0xf055, FORM_X},
	KIND_LD_VX_MEM: {0xf065, FORM_X},
}

// Code is a single 16-bit instruction word.
type Code struct {
	Word uint16
}

// MakeCode encodes an instruction. Operands not used by the kind's form are
// ignored; used operands are truncated to their field width.
func MakeCode(kind Kind, x, y int, imm uint16) (code Code) {
	if kind < 0 || kind >= KIND_COUNT {
		kind = KIND_UNKNOWN
	}

	entry := codeTable[kind]
	word := entry.Base
	switch entry.Form {
	case FORM_NNN:
		word |= imm & 0xfff
	case FORM_XNN:
		word |= uint16(x&0xf)<<8 | imm&0xff
	case FORM_XY:
		word |= uint16(x&0xf)<<8 | uint16(y&0xf)<<4
	case FORM_XYN:
		word |= uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | imm&0xf
	case FORM_X:
		word |= uint16(x&0xf) << 8
	case FORM_WORD:
		word = imm
	}

	return Code{Word: word}
}

// Family returns the highest nibble, which selects the instruction family.
func (code Code) Family() int {
	return int(code.Word>>12) & 0xf
}

// X returns the first register operand (bits 11-8).
func (code Code) X() int {
	return int(code.Word>>8) & 0xf
}

// Y returns the second register operand (bits 7-4).
func (code Code) Y() int {
	return int(code.Word>>4) & 0xf
}

// N returns the lowest nibble.
func (code Code) N() byte {
	return byte(code.Word & 0xf)
}

// NN returns the lowest byte.
func (code Code) NN() byte {
	return byte(code.Word & 0xff)
}

// NNN returns the 12-bit address operand.
func (code Code) NNN() uint16 {
	return code.Word & 0xfff
}

// Kind decodes the instruction kind. Words that are not part of the base
// instruction set decode as KIND_UNKNOWN.
func (code Code) Kind() Kind {
	switch code.Family() {
	case 0x0:
		switch code.Word {
		case 0x00e0:
			return KIND_CLS
		case 0x00ee:
			return KIND_RET
		}
		return KIND_SYS
	case 0x1:
		return KIND_JP
	case 0x2:
		return KIND_CALL
	case 0x3:
		return KIND_SE_IMM
	case 0x4:
		return KIND_SNE_IMM
	case 0x5:
		if code.N() == 0 {
			return KIND_SE_REG
		}
	case 0x6:
		return KIND_LD_IMM
	case 0x7:
		return KIND_ADD_IMM
	case 0x8:
		switch code.N() {
		case 0x0:
			return KIND_LD_REG
		case 0x1:
			return KIND_OR
		case 0x2:
			return KIND_AND
		case 0x3:
			return KIND_XOR
		case 0x4:
			return KIND_ADD_REG
		case 0x5:
			return KIND_SUB
		case 0x6:
			return KIND_SHR
		case 0x7:
			return KIND_SUBN
		case 0xe:
			return KIND_SHL
		}
	case 0x9:
		if code.N() == 0 {
			return KIND_SNE_REG
		}
	case 0xa:
		return KIND_LD_I
	case 0xb:
		return KIND_JP_V0
	case 0xc:
		return KIND_RND
	case 0xd:
		return KIND_DRW
	case 0xe:
		switch code.NN() {
		case 0x9e:
			return KIND_SKP
		case 0xa1:
			return KIND_SKNP
		}
	case 0xf:
		switch code.NN() {
		case 0x07:
			return KIND_LD_VX_DT
		case 0x0a:
			return KIND_LD_VX_K
		case 0x15:
			return KIND_LD_DT_VX
		case 0x18:
			return KIND_LD_ST_VX
		case 0x1e:
			return KIND_ADD_I_VX
		case 0x29:
			return KIND_LD_F_VX
		case 0x33:
			return KIND_LD_B_VX
		case 0x55:
			return KIND_LD_MEM_VX
		case 0x65:
			return KIND_LD_VX_MEM
		}
	}

	return KIND_UNKNOWN
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	kind := code.Kind()
	x, y := code.X(), code.Y()

	var args string
	switch kind {
	case KIND_UNKNOWN:
		args = fmt.Sprintf("0x%04x", code.Word)
	case KIND_CLS, KIND_RET:
		// no operands
	case KIND_SYS, KIND_JP, KIND_CALL:
		args = fmt.Sprintf("0x%03x", code.NNN())
	case KIND_SE_IMM, KIND_SNE_IMM, KIND_LD_IMM, KIND_ADD_IMM, KIND_RND:
		args = fmt.Sprintf("v%x, 0x%02x", x, code.NN())
	case KIND_LD_I:
		args = fmt.Sprintf("i, 0x%03x", code.NNN())
	case KIND_JP_V0:
		args = fmt.Sprintf("v0, 0x%03x", code.NNN())
	case KIND_DRW:
		args = fmt.Sprintf("v%x, v%x, %d", x, y, code.N())
	case KIND_SKP, KIND_SKNP:
		args = fmt.Sprintf("v%x", x)
	case KIND_LD_VX_DT:
		args = fmt.Sprintf("v%x, dt", x)
	case KIND_LD_VX_K:
		args = fmt.Sprintf("v%x, k", x)
	case KIND_LD_DT_VX:
		args = fmt.Sprintf("dt, v%x", x)
	case KIND_LD_ST_VX:
		args = fmt.Sprintf("st, v%x", x)
	case KIND_ADD_I_VX:
		args = fmt.Sprintf("i, v%x", x)
	case KIND_LD_F_VX:
		args = fmt.Sprintf("f, v%x", x)
	case KIND_LD_B_VX:
		args = fmt.Sprintf("b, v%x", x)
	case KIND_LD_MEM_VX:
		args = fmt.Sprintf("[i], v%x", x)
	case KIND_LD_VX_MEM:
		args = fmt.Sprintf("v%x, [i]", x)
	default:
		args = fmt.Sprintf("v%x, v%x", x, y)
	}

	out = kind.String()
	if len(args) != 0 {
		out += " " + args
	}

	return
}
