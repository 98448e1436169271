package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the first byte of an instruction.
type Opcode byte

const (
	OP_NOP      = Opcode(0x00) // NOP
	OP_LDA_IMM  = Opcode(0x01) // LDA imm
	OP_LDA_REG  = Opcode(0x02) // LDA reg
	OP_STA      = Opcode(0x03) // STA addr
	OP_LDB_IMM  = Opcode(0x04) // LDB imm
	OP_LDB_REG  = Opcode(0x05) // LDB reg
	OP_STB      = Opcode(0x06) // STB addr
	OP_LDC_IMM  = Opcode(0x07) // LDC imm
	OP_LDC_REG  = Opcode(0x08) // LDC reg
	OP_STC      = Opcode(0x09) // STC addr
	OP_LDA_ADDR = Opcode(0x0A) // LDA addr
	OP_ADD_REG  = Opcode(0x0B) // ADD reg, reg
	OP_SUB_REG  = Opcode(0x0C) // SUB reg, reg
	OP_ADD_IMM  = Opcode(0x0D) // ADD reg, imm
	OP_SUB_IMM  = Opcode(0x0E) // SUB reg, imm
	OP_AND      = Opcode(0x0F) // AND reg, reg
	OP_OR       = Opcode(0x10) // OR reg, reg
	OP_XOR      = Opcode(0x11) // XOR reg, reg
	OP_NOT      = Opcode(0x12) // NOT reg
	OP_JMP      = Opcode(0x13) // JMP addr
	OP_JMP_Z    = Opcode(0x14) // JMP Z, addr
	OP_JMP_NZ   = Opcode(0x15) // JMP NZ, addr
	OP_JMP_C    = Opcode(0x16) // JMP C, addr
	OP_JMP_NC   = Opcode(0x17) // JMP NC, addr
	OP_CP       = Opcode(0x18) // CP imm
	OP_FILL     = Opcode(0xFF) // filler
)

// Register is a general purpose register index.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_A = Register(0) // A
	REG_B = Register(1) // B
	REG_C = Register(2) // C
)

// CodeCond is a jump condition.
type CodeCond int

//go:generate go tool stringer -linecomment -type=CodeCond
const (
	COND_ALWAYS = CodeCond(0) // always
	COND_Z      = CodeCond(1) // Z
	COND_NZ     = CodeCond(2) // NZ
	COND_C      = CodeCond(3) // C
	COND_NC     = CodeCond(4) // NC
)

// CodeAluOp is an ALU operation type.
type CodeAluOp int

const (
	ALU_OP_NONE = CodeAluOp(0)
	ALU_OP_ADD  = CodeAluOp(1)
	ALU_OP_SUB  = CodeAluOp(2)
	ALU_OP_AND  = CodeAluOp(3)
	ALU_OP_OR   = CodeAluOp(4)
	ALU_OP_XOR  = CodeAluOp(5)
	ALU_OP_NOT  = CodeAluOp(6)
)

// ArgKind is the kind of an instruction operand.
type ArgKind int

const (
	ARG_REG  = ArgKind(0) // register index, one byte
	ARG_IMM  = ArgKind(1) // immediate, one byte
	ARG_ADDR = ArgKind(2) // address, two bytes big-endian
)

// Size returns the encoded size of the operand.
func (kind ArgKind) Size() int {
	if kind == ARG_ADDR {
		return 2
	}
	return 1
}

// Shape describes the encoding and meaning of a single opcode.
type Shape struct {
	Opcode   Opcode
	Mnemonic string
	Register Register  // Implied register of LDx and STx.
	Cond     CodeCond  // Condition of jumps.
	Alu      CodeAluOp // ALU operation of arithmetic and logic.
	Args     []ArgKind
}

// Size returns the encoded size of the instruction, opcode included.
func (shape Shape) Size() (size int) {
	size = 1
	for _, arg := range shape.Args {
		size += arg.Size()
	}
	return
}

var (
	argsNone   = []ArgKind{}
	argsReg    = []ArgKind{ARG_REG}
	argsImm    = []ArgKind{ARG_IMM}
	argsAddr   = []ArgKind{ARG_ADDR}
	argsRegReg = []ArgKind{ARG_REG, ARG_REG}
	argsRegImm = []ArgKind{ARG_REG, ARG_IMM}
)

// Catalog is the instruction set, in opcode order.
var Catalog = []Shape{
	{Opcode: OP_NOP, Mnemonic: "NOP", Args: argsNone},
	{Opcode: OP_LDA_IMM, Mnemonic: "LDA", Register: REG_A, Args: argsImm},
	{Opcode: OP_LDA_REG, Mnemonic: "LDA", Register: REG_A, Args: argsReg},
	{Opcode: OP_STA, Mnemonic: "STA", Register: REG_A, Args: argsAddr},
	{Opcode: OP_LDB_IMM, Mnemonic: "LDB", Register: REG_B, Args: argsImm},
	{Opcode: OP_LDB_REG, Mnemonic: "LDB", Register: REG_B, Args: argsReg},
	{Opcode: OP_STB, Mnemonic: "STB", Register: REG_B, Args: argsAddr},
	{Opcode: OP_LDC_IMM, Mnemonic: "LDC", Register: REG_C, Args: argsImm},
	{Opcode: OP_LDC_REG, Mnemonic: "LDC", Register: REG_C, Args: argsReg},
	{Opcode: OP_STC, Mnemonic: "STC", Register: REG_C, Args: argsAddr},
	{Opcode: OP_LDA_ADDR, Mnemonic: "LDA", Register: REG_A, Args: argsAddr},
	{Opcode: OP_ADD_REG, Mnemonic: "ADD", Alu: ALU_OP_ADD, Args: argsRegReg},
	{Opcode: OP_SUB_REG, Mnemonic: "SUB", Alu: ALU_OP_SUB, Args: argsRegReg},
	{Opcode: OP_ADD_IMM, Mnemonic: "ADD", Alu: ALU_OP_ADD, Args: argsRegImm},
	{Opcode: OP_SUB_IMM, Mnemonic: "SUB", Alu: ALU_OP_SUB, Args: argsRegImm},
	{Opcode: OP_AND, Mnemonic: "AND", Alu: ALU_OP_AND, Args: argsRegReg},
	{Opcode: OP_OR, Mnemonic: "OR", Alu: ALU_OP_OR, Args: argsRegReg},
	{Opcode: OP_XOR, Mnemonic: "XOR", Alu: ALU_OP_XOR, Args: argsRegReg},
	{Opcode: OP_NOT, Mnemonic: "NOT", Alu: ALU_OP_NOT, Args: argsReg},
	{Opcode: OP_JMP, Mnemonic: "JMP", Cond: COND_ALWAYS, Args: argsAddr},
	{Opcode: OP_JMP_Z, Mnemonic: "JMP", Cond: COND_Z, Args: argsAddr},
	{Opcode: OP_JMP_NZ, Mnemonic: "JMP", Cond: COND_NZ, Args: argsAddr},
	{Opcode: OP_JMP_C, Mnemonic: "JMP", Cond: COND_C, Args: argsAddr},
	{Opcode: OP_JMP_NC, Mnemonic: "JMP", Cond: COND_NC, Args: argsAddr},
	{Opcode: OP_CP, Mnemonic: "CP", Args: argsImm},
	{Opcode: OP_FILL, Mnemonic: "FILL", Args: argsNone},
}

var shapeOf [256]*Shape

func init() {
	for n := range Catalog {
		shape := &Catalog[n]
		shapeOf[shape.Opcode] = shape
	}
}

// Lookup returns the shape of an opcode.
func Lookup(op Opcode) (shape Shape, ok bool) {
	ptr := shapeOf[op]
	if ptr == nil {
		return
	}

	shape = *ptr
	ok = true
	return
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	shape, ok := Lookup(op)
	if !ok {
		return fmt.Sprintf("0x%02X", byte(op))
	}
	return shape.Mnemonic
}

// Instruction is a decoded instruction: an opcode and exactly the operand
// bytes its shape calls for.
type Instruction struct {
	Opcode   Opcode
	Operands []byte
}

func makeInstruction(op Opcode, operands ...byte) Instruction {
	return Instruction{Opcode: op, Operands: operands}
}

// MakeNop creates an end-of-program instruction.
func MakeNop() Instruction {
	return makeInstruction(OP_NOP)
}

// MakeLoadImm creates a load of an immediate into a register.
func MakeLoadImm(dst Register, value byte) Instruction {
	return makeInstruction(OP_LDA_IMM+Opcode(3*dst), value)
}

// MakeLoadReg creates a register to register copy.
func MakeLoadReg(dst Register, src Register) Instruction {
	return makeInstruction(OP_LDA_REG+Opcode(3*dst), byte(src))
}

// MakeLoadAddr creates a load of the accumulator from the data store.
func MakeLoadAddr(addr uint16) Instruction {
	return makeInstruction(OP_LDA_ADDR, byte(addr>>8), byte(addr))
}

// MakeStore creates a store of a register to the data store.
func MakeStore(src Register, addr uint16) Instruction {
	return makeInstruction(OP_STA+Opcode(3*src), byte(addr>>8), byte(addr))
}

// MakeAlu creates a two operand arithmetic or logic instruction.
// If imm is set, src is an immediate value instead of a register index.
func MakeAlu(alu CodeAluOp, dst Register, src byte, imm bool) Instruction {
	var op Opcode
	switch alu {
	case ALU_OP_ADD:
		op = OP_ADD_REG
		if imm {
			op = OP_ADD_IMM
		}
	case ALU_OP_SUB:
		op = OP_SUB_REG
		if imm {
			op = OP_SUB_IMM
		}
	case ALU_OP_AND:
		op = OP_AND
	case ALU_OP_OR:
		op = OP_OR
	case ALU_OP_XOR:
		op = OP_XOR
	}
	if op == OP_NOP || (imm && op >= OP_AND) {
		panic(fmt.Sprintf("alu op %d has no such two operand form", alu))
	}
	return makeInstruction(op, byte(dst), src)
}

// MakeNot creates a bitwise complement of a register.
func MakeNot(reg Register) Instruction {
	return makeInstruction(OP_NOT, byte(reg))
}

// MakeJump creates a conditional or unconditional jump.
func MakeJump(cond CodeCond, addr uint16) Instruction {
	return makeInstruction(OP_JMP+Opcode(cond), byte(addr>>8), byte(addr))
}

// MakeCompare creates a compare of the accumulator with an immediate.
func MakeCompare(value byte) Instruction {
	return makeInstruction(OP_CP, value)
}

// Shape returns the shape of the instruction's opcode.
func (inst Instruction) Shape() (Shape, bool) {
	return Lookup(inst.Opcode)
}

// Size returns the encoded size of the instruction.
func (inst Instruction) Size() int {
	return 1 + len(inst.Operands)
}

// Bytes returns the encoded instruction.
func (inst Instruction) Bytes() (code []byte) {
	code = make([]byte, 0, inst.Size())
	code = append(code, byte(inst.Opcode))
	code = append(code, inst.Operands...)
	return
}

// Reg returns operand n as a register index.
func (inst Instruction) Reg(n int) (reg Register, err error) {
	if n >= len(inst.Operands) {
		err = ErrOpcodeOperands
		return
	}

	reg = Register(inst.Operands[n])
	if reg > REG_C {
		err = ErrRegisterInvalid
		return
	}

	return
}

// Imm returns operand n as an immediate.
func (inst Instruction) Imm(n int) (value byte, err error) {
	if n >= len(inst.Operands) {
		err = ErrOpcodeOperands
		return
	}

	value = inst.Operands[n]
	return
}

// Addr returns the final two operand bytes as a big-endian address.
func (inst Instruction) Addr() (addr uint16, err error) {
	if len(inst.Operands) < 2 {
		err = ErrOpcodeOperands
		return
	}

	hi := inst.Operands[len(inst.Operands)-2]
	lo := inst.Operands[len(inst.Operands)-1]
	addr = (uint16(hi) << 8) | uint16(lo)
	return
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() string {
	shape, ok := inst.Shape()
	if !ok || shape.Size() != inst.Size() {
		return fmt.Sprintf(".db 0x%02X %v", byte(inst.Opcode), inst.Operands)
	}

	var args []string
	if shape.Cond != COND_ALWAYS {
		args = append(args, shape.Cond.String())
	}

	operands := inst.Operands
	for _, kind := range shape.Args {
		switch kind {
		case ARG_REG:
			args = append(args, Register(operands[0]).String())
		case ARG_IMM:
			args = append(args, fmt.Sprintf("0x%02X", operands[0]))
		case ARG_ADDR:
			args = append(args, fmt.Sprintf("$%02X%02X", operands[0], operands[1]))
		}
		operands = operands[kind.Size():]
	}

	if len(args) == 0 {
		return shape.Mnemonic
	}

	return shape.Mnemonic + " " + strings.Join(args, ", ")
}
