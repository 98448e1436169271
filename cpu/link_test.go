package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinker(t *testing.T) {
	assert := assert.New(t)

	ln := &Linker{}
	ln.Reset()

	code := []byte{0x13, 0x00, 0x00, 0x14, 0x00, 0x00, 0x00}

	addr := ln.Resolve("end", Ref{Offset: 1, LineNo: 1, Line: "JMP end"})
	assert.Equal(uint16(0), addr)
	addr = ln.Resolve("end", Ref{Offset: 4, LineNo: 2, Line: "JMP Z, end"})
	assert.Equal(uint16(0), addr)
	assert.Len(ln.Pending["end"], 2)

	err := ln.Define("end", 0x0106, code)
	assert.NoError(err)
	assert.Equal([]byte{0x13, 0x01, 0x06, 0x14, 0x01, 0x06, 0x00}, code)
	assert.Empty(ln.Pending)

	// Backward references resolve immediately.
	addr = ln.Resolve("end", Ref{Offset: 7, LineNo: 3})
	assert.Equal(uint16(0x0106), addr)
	assert.Empty(ln.Pending)

	err = ln.Define("end", 0, code)
	assert.ErrorIs(err, ErrLabelDuplicate)

	assert.NoError(ln.Check())
}

func TestLinkerCheck(t *testing.T) {
	assert := assert.New(t)

	ln := &Linker{}
	ln.Resolve("later", Ref{Offset: 4, LineNo: 7, Line: "JMP later"})
	ln.Resolve("never", Ref{Offset: 1, LineNo: 3, Line: "JMP never"})

	err := ln.Check()
	assert.ErrorIs(err, ErrLabelMissing("never"))
	assert.ErrorIs(err, ErrLabelMissing("later"))

	var syntax *ErrSyntax
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(3, syntax.LineNo)
		assert.Equal("JMP never", syntax.Line)
	}
}
