package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vm8/cpu"
	vmio "github.com/ezrec/vm8/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(RAM_SIZE, emu.Ram.Len())
	assert.Equal(0, emu.Rom.Len())

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("4096", defines["ROM_SIZE"])
	assert.Equal("4096", defines["RAM_SIZE"])
	assert.Equal("1", defines["REG_B"])
}

func doLoad(t *testing.T, emu *Emulator, program []string) {
	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Load(prog)
	if err != nil {
		t.Fatal(err)
	}
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"LDA 5",
		"LDB 2",
		"ADD A,B",
		"STA $0000",
		"NOP",
	}
	doLoad(t, emu, program)

	for _, st := range emu.Program.Statements[:4] {
		assert.Equal(st.LineNo, emu.LineNo())
		assert.Equal(st.Addr, emu.Cpu.Pc)
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done, program[st.LineNo-1])
	}

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	assert.Equal(byte(7), emu.Cpu.Register[cpu.REG_A])
	assert.Equal(byte(7), emu.Ram.Data[0])
	assert.Equal(uint16(11), emu.Cpu.Pc)
	assert.Equal(5, emu.Ticks())

	// Reloading clears the data store.
	doLoad(t, emu, []string{"NOP"})
	assert.Equal(byte(0), emu.Ram.Data[0])
	assert.NoError(emu.Run())
	assert.Equal(uint16(1), emu.Cpu.Pc)
}

func TestEmulatorRunOffEnd(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(t, emu, []string{"LDA 1", "JMP $0100"})

	assert.NoError(emu.Run())
	assert.Equal(uint16(0x100), emu.Cpu.Pc)
	assert.Equal(2, emu.Ticks())
}

func TestEmulatorErrors(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(t, emu, []string{"LDA 1", "STA $1000", "NOP"})

	err := emu.Run()
	assert.ErrorIs(err, vmio.ErrOutOfBounds(0))
	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(2, runtime.LineNo)
		assert.Equal(uint16(2), runtime.Pc)
	}

	// Raw images have no line numbers.
	err = emu.Load(&cpu.Program{Code: []byte{0x01, 0x01, 0x42}})
	assert.NoError(err)
	err = emu.Run()
	assert.ErrorIs(err, cpu.ErrOpcodeInvalid)
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(0, runtime.LineNo)
		assert.Equal(uint16(2), runtime.Pc)
		assert.Contains(runtime.Error(), "pc 0x0002")
	}

	err = emu.Load(&cpu.Program{Code: make([]byte, ROM_SIZE+1)})
	assert.ErrorIs(err, vmio.ErrImageTooLarge)
}

func TestEmulatorTrace(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	var trace bytes.Buffer
	emu.Trace = true
	emu.Output = &trace

	err := emu.Load(&cpu.Program{Code: []byte{0x01, 0x05, 0x18, 0x05, 0xff, 0x00}})
	assert.NoError(err)
	assert.NoError(emu.Run())

	lines := strings.Split(strings.TrimRight(trace.String(), "\n"), "\n")
	assert.Equal([]string{
		"    1: 0000 LDA 0x05         pc=0002 f=-- a=05",
		"    2: 0002 CP 0x05          pc=0004 f=Z- a=05",
		"    4: 0005 NOP              pc=0006 f=Z- a=05",
	}, lines)
}

func TestEmulatorReport(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(t, emu, []string{"LDA 0x2a", "STA $0010", "STA $0ffe", "NOP"})
	assert.NoError(emu.Run())

	var dump bytes.Buffer
	n, err := emu.DumpMemory(&dump)
	assert.NoError(err)
	assert.Equal(int64(RAM_SIZE), n)
	assert.Equal(byte(0x2a), dump.Bytes()[0x10])
	assert.Equal(byte(0x2a), dump.Bytes()[0xffe])

	var text bytes.Buffer
	assert.NoError(emu.PrintMemory(&text))
	assert.Contains(text.String(), "0x0010")
	assert.Contains(text.String(), "0x0ffe")
	assert.Contains(text.String(), "0x2a")
	assert.NotContains(text.String(), "0x0000")

	text.Reset()
	assert.NoError(emu.PrintRegisters(&text))
	assert.Contains(text.String(), "0x2a")
	assert.Contains(text.String(), "0x0009")
	assert.Contains(text.String(), "0x00 --")

	text.Reset()
	emu.Cpu.Flags = cpu.Flags{Zero: true, Carry: true}
	assert.NoError(emu.PrintRegisters(&text))
	assert.Contains(text.String(), "0x03 ZC")
}
