package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/vm8/io"
)

// Memory is a byte-addressed memory space.
type Memory io.Memory

var _cpu_defines = map[string]string{
	"REG_A":      fmt.Sprintf("%d", REG_A),
	"REG_B":      fmt.Sprintf("%d", REG_B),
	"REG_C":      fmt.Sprintf("%d", REG_C),
	"FLAG_ZERO":  fmt.Sprintf("0x%x", FLAG_ZERO),
	"FLAG_CARRY": fmt.Sprintf("0x%x", FLAG_CARRY),
}

// Cpu is the simulation context for the vm8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       uint16  // Address of the next instruction.
	Register [3]byte // Register bank, A is the accumulator.
	Flags    Flags   // Condition flags.

	Program Memory // Read-only program store.
	Data    Memory // Read-write data store.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a new CPU attached to a program and a data store.
func NewCpu(program, data Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Program: program,
		Data:    data,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: 0x%04X\n", cpu.Pc)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5v: 0x%02X\n", Register(n), val)
	}
	text += fmt.Sprintf("    f: %v\n", cpu.Flags)

	return
}

// Reset the CPU state.
// - Clears the registers and flags.
// - Zeros statistics counters.
// - Sets the PC to the start of the program store.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Flags = Flags{}
	cpu.Pc = 0
	cpu.Ticks = 0
}

// FetchCode fetches the instruction at the PC.
func (cpu *Cpu) FetchCode() (inst Instruction, err error) {
	if int(cpu.Pc) >= cpu.Program.Len() {
		err = ErrPcEnd
		return
	}

	inst, err = Decode(cpu.Program, cpu.Pc)
	return
}

// Tick executes a single CPU instruction cycle.
// ErrHalt and ErrPcEnd report a normal end of program.
func (cpu *Cpu) Tick() (err error) {
	inst, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	return
}

// Run ticks the CPU until the program ends, returning nil on a normal end.
func (cpu *Cpu) Run() (err error) {
	for {
		err = cpu.Tick()
		if errors.Is(err, ErrHalt) || errors.Is(err, ErrPcEnd) {
			err = nil
			return
		}
		if err != nil {
			return
		}
	}
}

// Execute executes a single decoded instruction at the PC.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil && err != ErrHalt {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, inst)
	}

	shape, ok := inst.Shape()
	if !ok {
		err = ErrOpcodeInvalid
		return
	}
	if shape.Size() != inst.Size() {
		err = ErrOpcodeOperands
		return
	}

	next_pc := cpu.Pc + uint16(inst.Size())

	switch inst.Opcode {
	case OP_NOP:
		cpu.Pc = next_pc
		cpu.Ticks += 1
		err = ErrHalt
		return
	case OP_FILL:
		// Padding left by older assemblers after CP.
	case OP_LDA_IMM, OP_LDB_IMM, OP_LDC_IMM:
		cpu.Register[shape.Register], _ = inst.Imm(0)
	case OP_LDA_REG, OP_LDB_REG, OP_LDC_REG:
		var src Register
		src, err = inst.Reg(0)
		if err != nil {
			err = errors.Join(ErrOpcodeLoad, err)
			return
		}
		cpu.Register[shape.Register] = cpu.Register[src]
	case OP_LDA_ADDR:
		addr, _ := inst.Addr()
		var value byte
		value, err = cpu.Data.Load(addr)
		if err != nil {
			err = errors.Join(ErrOpcodeLoad, err)
			return
		}
		cpu.Register[REG_A] = value
	case OP_STA, OP_STB, OP_STC:
		addr, _ := inst.Addr()
		err = cpu.Data.Store(addr, cpu.Register[shape.Register])
		if err != nil {
			err = errors.Join(ErrOpcodeStore, err)
			return
		}
	case OP_ADD_REG, OP_SUB_REG, OP_AND, OP_OR, OP_XOR:
		var dst, src Register
		dst, err = inst.Reg(0)
		if err == nil {
			src, err = inst.Reg(1)
		}
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, err)
			return
		}
		cpu.Register[dst] = cpu.doAlu(shape.Alu, cpu.Register[dst], cpu.Register[src])
	case OP_ADD_IMM, OP_SUB_IMM:
		var dst Register
		dst, err = inst.Reg(0)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, err)
			return
		}
		value, _ := inst.Imm(1)
		cpu.Register[dst] = cpu.doAlu(shape.Alu, cpu.Register[dst], value)
	case OP_NOT:
		var reg Register
		reg, err = inst.Reg(0)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, err)
			return
		}
		cpu.Register[reg] = cpu.doAlu(shape.Alu, cpu.Register[reg], 0)
	case OP_JMP, OP_JMP_Z, OP_JMP_NZ, OP_JMP_C, OP_JMP_NC:
		if cpu.Flags.Test(shape.Cond) {
			next_pc, _ = inst.Addr()
		}
	case OP_CP:
		value, _ := inst.Imm(0)
		cpu.Flags = Compare(cpu.Register[REG_A], value)
	default:
		err = ErrOpcodeInvalid
		return
	}

	cpu.Pc = next_pc
	cpu.Ticks += 1

	return
}
