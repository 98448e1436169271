package emulator

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ezrec/vm8/cpu"
)

// trace writes one line for an executed instruction.
func (emu *Emulator) trace(pc uint16, inst cpu.Instruction) {
	fmt.Fprintf(emu.Output, "%5d: %04x %-16v pc=%04x f=%v a=%02x\n",
		emu.Ticks(), pc, inst, emu.Cpu.Pc, emu.Cpu.Flags, emu.Cpu.Register[cpu.REG_A])
}

// DumpMemory writes the entire data store.
func (emu *Emulator) DumpMemory(w io.Writer) (n int64, err error) {
	return emu.Ram.WriteTo(w)
}

// PrintMemory renders the non-zero cells of the data store as a table.
func (emu *Emulator) PrintMemory(w io.Writer) (err error) {
	tw := table.NewWriter()
	tw.SetTitle("RAM")
	tw.AppendHeader(table.Row{"Address", "Hex", "Dec"})

	for addr, value := range emu.Ram.Cells() {
		tw.AppendRow(table.Row{fmt.Sprintf("0x%04x", addr), fmt.Sprintf("0x%02x", value), value})
	}

	_, err = fmt.Fprintln(w, tw.Render())
	return
}

// PrintRegisters renders the CPU state as a table.
func (emu *Emulator) PrintRegisters(w io.Writer) (err error) {
	tw := table.NewWriter()
	tw.SetTitle("CPU")
	tw.AppendHeader(table.Row{"Register", "Value"})

	for n, value := range emu.Cpu.Register {
		tw.AppendRow(table.Row{cpu.Register(n).String(), fmt.Sprintf("0x%02x", value)})
	}
	tw.AppendRow(table.Row{"F", fmt.Sprintf("0x%02x %v", emu.Cpu.Flags.Byte(), emu.Cpu.Flags)})
	tw.AppendRow(table.Row{"PC", fmt.Sprintf("0x%04x", emu.Cpu.Pc)})
	tw.AppendRow(table.Row{"Ticks", emu.Ticks()})

	_, err = fmt.Fprintln(w, tw.Render())
	return
}
