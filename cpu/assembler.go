// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Assembler is a single pass macro assembler for the CHIP-8 system.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Macro expansions so far, for '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber("~")
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < 0 {
		value = uint32(0xffffffff + (v64 + 1))
	} else {
		value = uint32(v64)
	}

	if invert {
		value = ^value
	}

	return
}

// valueMax returns the value of a word, which must not exceed limit.
// Negative values are accepted in two's complement form of the field width.
func (asm *Assembler) valueMax(word string, limit uint32) (value uint16, err error) {
	v32, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v32 > limit {
		// Permit sign-extended negative values.
		if ^v32 > limit>>1 {
			err = ErrValueRange
			return
		}
		v32 &= limit
	}

	value = uint16(v32)
	return
}

// regOf returns the register index of a vX word.
func regOf(word string) (reg int, ok bool) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		return
	}

	v64, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return int(v64), true
}

// mustReg returns the register index of a vX word, or an error.
func mustReg(word string) (reg int, err error) {
	reg, ok := regOf(word)
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// addrOf returns the 12-bit address of a word. Labels are resolved at link time.
func (asm *Assembler) addrOf(word string) (addr uint16, label string, err error) {
	addr, err = asm.valueMax(word, ADDRESS_MASK)
	if err == nil {
		return
	}

	if reLabel.MatchString(word) {
		if _, is_reg := regOf(word); !is_reg {
			err = nil
			label = word
		}
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	// Operands may be separated by commas.
	line = strings.ReplaceAll(line, ",", " ")

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' labels are local to each expansion.
		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)
		for n, line := range macro.Lines {
			macro_lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, macro_lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: macro_lineno, Err: err}
				err = &ErrSyntax{LineNo: macro_lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: macro_lineno, Err: err}
				err = &ErrSyntax{LineNo: macro_lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next generated byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(_cpu_defines)
	asm.Equate["LINENO"] = "0"
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		all_words := strings.Fields(line)

		// .macro NAME arg...
		if len(all_words) > 0 && all_words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(all_words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[all_words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(all_words) > 2 {
				macro.Args = all_words[2:]
			}
			asm.Macro[all_words[1]] = macro
			continue
		}

		if len(all_words) > 0 && all_words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentAddr() > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	// Final linking of address labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		line = strings.Join(op.Words, " ")
		lineno = op.LineNo
		err = asm.link(op)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link patches the address of the opcode's label into its instruction.
func (asm *Assembler) link(op *Opcode) (err error) {
	addr, ok := asm.Label[op.LinkLabel]
	if !ok {
		err = ErrLabelMissing(op.LinkLabel)
		return
	}
	if addr > ADDRESS_MASK {
		err = ErrValueRange
		return
	}
	if op.Data || len(op.Bytes) != 2 {
		err = ErrInstructionInvalid
		return
	}

	op.Bytes[0] |= byte(addr >> 8)
	op.Bytes[1] |= byte(addr)

	return
}

// aluMap maps register to register instruction names.
var aluMap = map[string]Kind{
	"or":   KIND_OR,
	"and":  KIND_AND,
	"xor":  KIND_XOR,
	"sub":  KIND_SUB,
	"subn": KIND_SUBN,
	"shr":  KIND_SHR,
	"shl":  KIND_SHL,
}

// ldMap maps the special operand forms of 'ld'.
var ldMap = map[[2]string]Kind{
	{"vx", "dt"}:  KIND_LD_VX_DT,
	{"vx", "k"}:   KIND_LD_VX_K,
	{"dt", "vx"}:  KIND_LD_DT_VX,
	{"st", "vx"}:  KIND_LD_ST_VX,
	{"f", "vx"}:   KIND_LD_F_VX,
	{"b", "vx"}:   KIND_LD_B_VX,
	{"[i]", "vx"}: KIND_LD_MEM_VX,
	{"vx", "[i]"}: KIND_LD_VX_MEM,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, LinkLabel: label}
		if len(codes) != 0 {
			for _, code := range codes {
				opcode.Bytes = append(opcode.Bytes, byte(code.Word>>8), byte(code.Word))
			}
		} else if len(data) != 0 {
			opcode.Bytes = data
			opcode.Data = true
		} else {
			return
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	op := strings.ToLower(words[0])
	args := words[1:]

	// need checks the operand count.
	need := func(count int) error {
		switch {
		case len(args) < count:
			return ErrOpcodeMissing
		case len(args) > count:
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	switch op {
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.valueMax(arg, 0xff)
			if err != nil {
				return
			}
			data = append(data, byte(value))
		}
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.valueMax(arg, 0xffff)
			if err != nil {
				return
			}
			data = append(data, byte(value>>8), byte(value))
		}
	case "cls", "ret":
		if err = need(0); err != nil {
			return
		}
		kind := KIND_CLS
		if op == "ret" {
			kind = KIND_RET
		}
		codes = append(codes, MakeCode(kind, 0, 0, 0))
	case "sys", "call":
		if err = need(1); err != nil {
			return
		}
		var addr uint16
		addr, label, err = asm.addrOf(args[0])
		if err != nil {
			return
		}
		kind := KIND_SYS
		if op == "call" {
			kind = KIND_CALL
		}
		codes = append(codes, MakeCode(kind, 0, 0, addr))
	case "jp":
		kind := KIND_JP
		if len(args) == 2 {
			if reg, ok := regOf(args[0]); !ok || reg != 0 {
				err = ErrRegisterInvalid
				return
			}
			kind = KIND_JP_V0
			args = args[1:]
		}
		if err = need(1); err != nil {
			return
		}
		var addr uint16
		addr, label, err = asm.addrOf(args[0])
		if err != nil {
			return
		}
		codes = append(codes, MakeCode(kind, 0, 0, addr))
	case "se", "sne", "add", "rnd":
		if err = need(2); err != nil {
			return
		}
		if op == "add" && strings.ToLower(args[0]) == "i" {
			var x int
			x, err = mustReg(args[1])
			if err != nil {
				return
			}
			codes = append(codes, MakeCode(KIND_ADD_I_VX, x, 0, 0))
			break
		}
		var x int
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		if y, ok := regOf(args[1]); ok && op != "rnd" {
			kind := map[string]Kind{"se": KIND_SE_REG, "sne": KIND_SNE_REG, "add": KIND_ADD_REG}[op]
			codes = append(codes, MakeCode(kind, x, y, 0))
			break
		}
		var nn uint16
		nn, err = asm.valueMax(args[1], 0xff)
		if err != nil {
			return
		}
		kind := map[string]Kind{"se": KIND_SE_IMM, "sne": KIND_SNE_IMM, "add": KIND_ADD_IMM, "rnd": KIND_RND}[op]
		codes = append(codes, MakeCode(kind, x, 0, nn))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		if (op == "shr" || op == "shl") && len(args) == 1 {
			args = append(args, args[0])
		}
		if err = need(2); err != nil {
			return
		}
		var x, y int
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		y, err = mustReg(args[1])
		if err != nil {
			return
		}
		codes = append(codes, MakeCode(aluMap[op], x, y, 0))
	case "drw":
		if err = need(3); err != nil {
			return
		}
		var x, y int
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		y, err = mustReg(args[1])
		if err != nil {
			return
		}
		var n uint16
		n, err = asm.valueMax(args[2], 0xf)
		if err != nil {
			return
		}
		codes = append(codes, MakeCode(KIND_DRW, x, y, n))
	case "skp", "sknp":
		if err = need(1); err != nil {
			return
		}
		var x int
		x, err = mustReg(args[0])
		if err != nil {
			return
		}
		kind := KIND_SKP
		if op == "sknp" {
			kind = KIND_SKNP
		}
		codes = append(codes, MakeCode(kind, x, 0, 0))
	case "ld":
		if err = need(2); err != nil {
			return
		}
		var code Code
		code, label, err = asm.parseLoad(args[0], args[1])
		if err != nil {
			return
		}
		codes = append(codes, code)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}

// parseLoad decodes the many forms of the 'ld' instruction.
func (asm *Assembler) parseLoad(dst, src string) (code Code, label string, err error) {
	x, dst_reg := regOf(dst)
	y, src_reg := regOf(src)

	switch {
	case strings.ToLower(dst) == "i":
		var addr uint16
		addr, label, err = asm.addrOf(src)
		code = MakeCode(KIND_LD_I, 0, 0, addr)
		return
	case dst_reg && src_reg:
		code = MakeCode(KIND_LD_REG, x, y, 0)
		return
	}

	form := [2]string{strings.ToLower(dst), strings.ToLower(src)}
	reg := -1
	if dst_reg {
		form[0] = "vx"
		reg = x
	}
	if src_reg {
		form[1] = "vx"
		reg = y
	}

	kind, ok := ldMap[form]
	if ok {
		code = MakeCode(kind, reg, 0, 0)
		return
	}

	if !dst_reg {
		err = ErrOpcodeInvalid
		return
	}

	var nn uint16
	nn, err = asm.valueMax(src, 0xff)
	if err != nil {
		return
	}
	code = MakeCode(KIND_LD_IMM, x, 0, nn)

	return
}
