// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the first line of the macro body.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass assembler for the vm8 system.
// Forward jump targets are reserved as two zero bytes and patched when
// their label is defined.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]uint16 // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
	Macro     map[string]*Macro // Map of macros.

	linker    Linker          // Label table and pending references.
	prog      *Program        // Program being assembled; owns the output bytes.
	expanding map[string]bool // Macros currently being expanded.
	expanded  int             // Count of macro expansions, for '@' local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]Register{
	"A": REG_A,
	"B": REG_B,
	"C": REG_C,
}

// condMap is a map of jump condition names.
var condMap = map[string]CodeCond{
	"Z":  COND_Z,
	"NZ": COND_NZ,
	"C":  COND_C,
	"NC": COND_NC,
}

var labelRegexp = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// isSeparator splits operands on whitespace and commas.
func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// valueOf returns the value of a numeric literal, either decimal or
// hexadecimal with a 0x prefix.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if strings.HasPrefix(word, "0x") || strings.HasPrefix(word, "0X") {
		var u64 uint64
		u64, err = strconv.ParseUint(word[2:], 16, 16)
		value = int64(u64)
	} else {
		value, err = strconv.ParseInt(word, 10, 32)
	}

	switch {
	case errors.Is(err, strconv.ErrRange):
		err = ErrValueRange(word)
	case err != nil:
		err = ErrParseNumber(word)
	}

	return
}

// immediate returns an 8-bit immediate. Negative values down to -128 are
// stored as two's complement.
func (asm *Assembler) immediate(word string) (value byte, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 > 0xff || v64 < -0x80 {
		err = ErrValueRange(word)
		return
	}

	value = byte(v64)
	return
}

// address returns the value of a $hex address literal.
func (asm *Assembler) address(word string) (addr uint16, err error) {
	if !strings.HasPrefix(word, "$") {
		err = ErrAddressInvalid
		return
	}

	u64, err := strconv.ParseUint(word[1:], 16, 16)
	switch {
	case errors.Is(err, strconv.ErrRange):
		err = ErrValueRange(word)
		return
	case err != nil:
		err = ErrParseNumber(word)
		return
	}

	addr = uint16(u64)
	return
}

// register returns the index of a register name.
func (asm *Assembler) register(word string) (reg Register, err error) {
	reg, ok := regMap[strings.ToUpper(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// target returns the address of a jump target, either a $hex address or
// a label.
func (asm *Assembler) target(word string, ref Ref) (addr uint16, label string, err error) {
	if strings.HasPrefix(word, "$") {
		addr, err = asm.address(word)
		return
	}

	if !labelRegexp.MatchString(word) {
		err = ErrTargetInvalid
		return
	}

	label = word
	addr = asm.linker.Resolve(label, ref)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for label, addr := range asm.linker.Label {
		pred[label] = starlark.MakeInt(int(addr))
	}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
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
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var (
	charRegexp  = regexp.MustCompile(`'\\?[^']'`)
	parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine expands a single line into words, handling equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = charRegexp.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			switch str[1:] {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\000"
			default:
				return word
			}
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, isSeparator)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
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

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !labelRegexp.MatchString(label) {
			err = ErrLabelInvalid
			return
		}

		// A label is the address of the next emitted instruction.
		if len(asm.prog.Code) > 0xffff {
			err = ErrProgramTooLarge
			return
		}
		err = asm.linker.Define(label, uint16(len(asm.prog.Code)), asm.prog.Code)
		if err != nil {
			return
		}
		words = words[1:]
	}

	if len(words) > 0 {
		macro, ok := asm.Macro[words[0]]
		if ok {
			err = asm.expand(words[0], macro, words[1:])
			words = nil
		}
	}

	return
}

// expand assembles the body of a macro, with its arguments bound as
// equates. '@' in the body becomes a prefix unique to this expansion.
func (asm *Assembler) expand(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}
	if asm.expanding[name] {
		err = ErrMacroRecursive
		return
	}

	old_equate := maps.Clone(asm.Equate)
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}
	asm.expanding[name] = true
	defer func() {
		asm.Equate = old_equate
		delete(asm.expanding, name)
	}()

	asm.expanded += 1
	local := fmt.Sprintf("%v_%v_", name, asm.expanded)

	for n, line := range macro.Lines {
		lineno := macro.LineNo + n
		line = strings.ReplaceAll(line, "@", local)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err == nil {
			err = asm.parseWords(words, lineno, line)
		}
		if err != nil {
			err = ErrMacro{Macro: name, Line: lineno, Err: err}
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
	}

	return
}

// stripComment removes a ';' comment, unless the ';' is a character literal.
func stripComment(text string) string {
	quoted := false
	for n, r := range text {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == ';' && !quoted:
			return text[:n]
		}
	}
	return text
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		var serr *ErrSyntax
		if err != nil && !errors.As(err, &serr) {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.linker.Reset()
	asm.prog = &Program{}
	asm.Macro = map[string]*Macro{}
	asm.expanding = map[string]bool{}
	asm.expanded = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))

		// .macro NAME arg...
		directive := strings.FieldsFunc(line, isSeparator)
		if len(directive) > 0 && strings.EqualFold(directive[0], ".macro") {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(directive) < 2 || !labelRegexp.MatchString(directive[1]) {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[directive[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   directive[2:],
			}
			asm.Macro[directive[1]] = macro
			continue
		}

		if len(directive) > 0 && strings.EqualFold(directive[0], ".endm") {
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
		if err == nil {
			err = asm.parseWords(words, lineno, line)
		}
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
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

	err = asm.linker.Check()
	if err != nil {
		return
	}

	// Forward references were patched in the code after their
	// statements were recorded.
	for n := range asm.prog.Statements {
		st := &asm.prog.Statements[n]
		start := int(st.Addr) + 1
		st.Inst.Operands = slices.Clone(asm.prog.Code[start : start+len(st.Inst.Operands)])
	}

	asm.Label = maps.Clone(asm.linker.Label)
	asm.prog.Label = asm.Label
	prog = asm.prog

	return
}

// expectArgs checks the operand count of an instruction.
func expectArgs(args []string, count int) (err error) {
	switch {
	case len(args) < count:
		err = ErrOpcodeValueMissing
	case len(args) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// aluMap maps arithmetic and logic mnemonics.
var aluMap = map[string]CodeAluOp{
	"ADD": ALU_OP_ADD,
	"SUB": ALU_OP_SUB,
	"AND": ALU_OP_AND,
	"OR":  ALU_OP_OR,
	"XOR": ALU_OP_XOR,
}

// emit appends a statement's instruction to the program.
func (asm *Assembler) emit(st Statement) (err error) {
	if len(asm.prog.Code)+st.Inst.Size() > PROGRAM_SIZE_MAX {
		err = ErrProgramTooLarge
		return
	}

	if asm.Verbose {
		log.Printf("%04x: % x", st.Addr, st.Inst.Bytes())
	}

	asm.prog.Code = append(asm.prog.Code, st.Inst.Bytes()...)
	asm.prog.Statements = append(asm.prog.Statements, st)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int, line string) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	var inst Instruction
	var label string

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]
	addr := uint16(len(asm.prog.Code))

	switch mnemonic {
	case "NOP":
		err = expectArgs(args, 0)
		if err != nil {
			return
		}
		inst = MakeNop()
	case "LDA", "LDB", "LDC":
		err = expectArgs(args, 1)
		if err != nil {
			return
		}
		dst := regMap[mnemonic[2:]]
		src, reg_err := asm.register(args[0])
		switch {
		case reg_err == nil:
			inst = MakeLoadReg(dst, src)
		case strings.HasPrefix(args[0], "$"):
			if dst != REG_A {
				err = ErrAddressInvalid
				return
			}
			var from uint16
			from, err = asm.address(args[0])
			if err != nil {
				return
			}
			inst = MakeLoadAddr(from)
		default:
			var value byte
			value, err = asm.immediate(args[0])
			if err != nil {
				return
			}
			inst = MakeLoadImm(dst, value)
		}
	case "STA", "STB", "STC":
		err = expectArgs(args, 1)
		if err != nil {
			return
		}
		var to uint16
		to, err = asm.address(args[0])
		if err != nil {
			return
		}
		inst = MakeStore(regMap[mnemonic[2:]], to)
	case "ADD", "SUB":
		err = expectArgs(args, 2)
		if err != nil {
			return
		}
		var dst Register
		dst, err = asm.register(args[0])
		if err != nil {
			return
		}
		src, reg_err := asm.register(args[1])
		if reg_err == nil {
			inst = MakeAlu(aluMap[mnemonic], dst, byte(src), false)
			break
		}
		var value byte
		value, err = asm.immediate(args[1])
		if err != nil {
			return
		}
		inst = MakeAlu(aluMap[mnemonic], dst, value, true)
	case "AND", "OR", "XOR":
		err = expectArgs(args, 2)
		if err != nil {
			return
		}
		var dst, src Register
		dst, err = asm.register(args[0])
		if err != nil {
			return
		}
		src, err = asm.register(args[1])
		if err != nil {
			return
		}
		inst = MakeAlu(aluMap[mnemonic], dst, byte(src), false)
	case "NOT":
		err = expectArgs(args, 1)
		if err != nil {
			return
		}
		var reg Register
		reg, err = asm.register(args[0])
		if err != nil {
			return
		}
		inst = MakeNot(reg)
	case "JMP":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		cond := COND_ALWAYS
		if len(args) == 2 {
			var ok bool
			cond, ok = condMap[strings.ToUpper(args[0])]
			if !ok {
				err = ErrConditionInvalid
				return
			}
			args = args[1:]
		}
		var to uint16
		to, label, err = asm.target(args[0], Ref{Offset: addr + 1, LineNo: lineno, Line: line})
		if err != nil {
			return
		}
		inst = MakeJump(cond, to)
	case "CP":
		err = expectArgs(args, 1)
		if err != nil {
			return
		}
		var value byte
		value, err = asm.immediate(args[0])
		if err != nil {
			return
		}
		inst = MakeCompare(value)
	default:
		err = ErrInstructionInvalid
		return
	}

	err = asm.emit(Statement{LineNo: lineno, Addr: addr, Words: words, Inst: inst, Label: label})
	return
}
