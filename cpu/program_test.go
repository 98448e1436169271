package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"LDA 5",
		"",
		"STA $0010",
		"NOP",
	)

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Offset)

	dbg = prog.Debug(1)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(1, dbg.Offset)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Statement)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(2, dbg.Offset)
	assert.Equal([]string{"STA", "$0010"}, dbg.Words)

	dbg = prog.Debug(5)
	assert.NotNil(dbg.Statement)
	assert.Equal(4, dbg.LineNo)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, "NOP")

	dbg := prog.Debug(1)
	assert.Nil(dbg.Statement)

	dbg = (&Program{}).Debug(0)
	assert.Nil(dbg.Statement)
}

func TestProgram_WriteRead(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"LDA 5",
		"JMP Z, done",
		"LDB A",
		"done: NOP",
	)

	var buff bytes.Buffer
	n, err := prog.WriteTo(&buff)
	assert.NoError(err)
	assert.Equal(int64(len(prog.Code)), n)
	assert.Equal(prog.Code, buff.Bytes())

	loaded := &Program{}
	n, err = loaded.ReadFrom(&buff)
	assert.NoError(err)
	assert.Equal(int64(len(prog.Code)), n)
	assert.Equal(prog.Code, loaded.Code)

	var text []string
	for _, st := range loaded.Statements {
		assert.Equal(0, st.LineNo)
		text = append(text, st.Words...)
	}
	assert.Equal([]string{"LDA 0x05", "JMP Z, $0007", "LDB A", "NOP"}, text)

	dbg := loaded.Debug(3)
	if assert.NotNil(dbg.Statement) {
		assert.Equal(uint16(2), dbg.Addr)
	}
}

func TestProgram_ReadFrom_TooLarge(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	_, err := prog.ReadFrom(strings.NewReader(strings.Repeat("\x00", PROGRAM_SIZE_MAX+1)))
	assert.ErrorIs(err, ErrProgramTooLarge)
}
