// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/vm8/cpu"
	"github.com/ezrec/vm8/internal"
	vmio "github.com/ezrec/vm8/io"
)

const (
	ROM_SIZE = 4096 // Program store capacity.
	RAM_SIZE = 4096 // Data store size.
)

var _emulator_defines = map[string]string{
	"ROM_SIZE": fmt.Sprintf("%v", ROM_SIZE),
	"RAM_SIZE": fmt.Sprintf("%v", RAM_SIZE),
}

// Emulator state. CPU + program store + data store.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Trace    bool         // If set, writes a line per executed instruction to Output.
	Output   io.Writer    // Destination of the trace.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Rom vmio.Rom // Program store.
	Ram vmio.Ram // Data store.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Output:  io.Discard,
		Program: &cpu.Program{},
		Rom:     vmio.Rom{Capacity: ROM_SIZE},
		Ram:     vmio.Ram{Data: make([]byte, RAM_SIZE)},
	}

	emu.Cpu = cpu.NewCpu(&emu.Rom, &emu.Ram)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load places a program in the program store, and resets the emulator.
func (emu *Emulator) Load(prog *cpu.Program) (err error) {
	err = emu.Rom.SetImage(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// Reset the CPU and clear the data store.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Ram.Reset()
}

// Ticks returns the number of executed instructions since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the current line number for the executing instruction.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	inst, err := emu.Cpu.FetchCode()
	if errors.Is(err, cpu.ErrPcEnd) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	err = emu.Cpu.Execute(inst)
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
	}
	if err != nil {
		return
	}

	if emu.Trace && inst.Opcode != cpu.OP_FILL {
		emu.trace(pc, inst)
	}

	return
}

// Run ticks the emulator until the program ends.
func (emu *Emulator) Run() (err error) {
	if emu.Verbose {
		log.Printf("emulator: run %d bytes", emu.Rom.Len())
	}

	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: done after %d instructions", emu.Ticks())
	}

	return
}
