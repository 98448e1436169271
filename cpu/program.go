package cpu

import (
	"bytes"
	"io"
	"iter"
	"slices"
)

// PROGRAM_SIZE_MAX is the size of the 16-bit address space.
const PROGRAM_SIZE_MAX = 0x10000

// Statement represents a line of assembled code with its source location
// and generated instruction.
type Statement struct {
	LineNo int
	Addr   uint16
	Words  []string
	Inst   Instruction
	Label  string // Jump target label, if any.
}

// Program is an assembled flat image, with the source map that produced it.
type Program struct {
	Code       []byte
	Statements []Statement
	Label      map[string]uint16
}

type Debug struct {
	*Statement
	Offset int
}

// Debug returns the statement whose instruction covers pc.
func (prog *Program) Debug(pc uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		if pc >= st.Addr && int(pc) < int(st.Addr)+st.Inst.Size() {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Offset:    int(pc - st.Addr),
			}
			break
		}
	}

	return
}

// Binary returns the flat image.
func (prog *Program) Binary() []byte {
	return prog.Code
}

// Listing returns the decoded instructions of the image, by address.
func (prog *Program) Listing() iter.Seq2[uint16, Instruction] {
	return Disassemble(prog.Code)
}

// WriteTo writes the flat image. There is no header.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	written, err := w.Write(prog.Code)
	n = int64(written)
	return
}

// ReadFrom loads a flat image, replacing the program. The source map is
// rebuilt from the decodable instructions; it carries no line numbers.
func (prog *Program) ReadFrom(r io.Reader) (n int64, err error) {
	var buff bytes.Buffer
	n, err = buff.ReadFrom(io.LimitReader(r, PROGRAM_SIZE_MAX+1))
	if err != nil {
		return
	}
	if n > PROGRAM_SIZE_MAX {
		err = ErrProgramTooLarge
		return
	}

	prog.Code = slices.Clone(buff.Bytes())
	prog.Statements = nil
	prog.Label = nil
	for pc, inst := range prog.Listing() {
		prog.Statements = append(prog.Statements, Statement{
			Addr:  pc,
			Words: []string{inst.String()},
			Inst:  inst,
		})
	}

	return
}
