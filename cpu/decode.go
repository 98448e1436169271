package cpu

import (
	"errors"
	"iter"

	"github.com/ezrec/vm8/io"
)

// Decode reads the instruction at pc, taking exactly as many operand bytes
// as the catalog lists for its opcode.
func Decode(mem Memory, pc uint16) (inst Instruction, err error) {
	op, err := mem.Load(pc)
	if err != nil {
		return
	}

	inst.Opcode = Opcode(op)
	shape, ok := Lookup(inst.Opcode)
	if !ok {
		err = errors.Join(ErrOpcodeInvalid, ErrOpcode(inst))
		return
	}

	size := shape.Size()
	if int(pc)+size > 0x10000 {
		err = errors.Join(ErrOpcodeOperands, io.ErrOutOfBounds(pc))
		return
	}

	if size > 1 {
		inst.Operands = make([]byte, size-1)
		for n := range inst.Operands {
			inst.Operands[n], err = mem.Load(pc + 1 + uint16(n))
			if err != nil {
				err = errors.Join(ErrOpcodeOperands, err)
				return
			}
		}
	}

	return
}

// Disassemble decodes a flat image from address 0, stopping at the end of
// the image or at the first byte that does not decode.
func Disassemble(code []byte) iter.Seq2[uint16, Instruction] {
	return func(yield func(pc uint16, inst Instruction) bool) {
		rom := &io.Rom{Data: code}
		for pc := 0; pc < len(code) && pc <= 0xffff; {
			inst, err := Decode(rom, uint16(pc))
			if err != nil {
				return
			}
			if !yield(uint16(pc), inst) {
				return
			}
			pc += inst.Size()
		}
	}
}
