package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRom(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom(4)
	assert.Equal(0, rom.Len())

	_, err := rom.Load(0)
	assert.ErrorIs(err, ErrOutOfBounds(0))

	err = rom.SetImage([]byte{0x01, 0x05, 0x00})
	assert.NoError(err)
	assert.Equal(3, rom.Len())

	value, err := rom.Load(1)
	assert.NoError(err)
	assert.Equal(byte(0x05), value)

	_, err = rom.Load(3)
	assert.ErrorIs(err, ErrOutOfBounds(0))
	var oob ErrOutOfBounds
	if assert.True(errors.As(err, &oob)) {
		assert.Equal(ErrOutOfBounds(3), oob)
	}

	err = rom.Store(0, 0xff)
	assert.ErrorIs(err, ErrReadOnly)
	assert.Equal(byte(0x01), rom.Data[0])

	err = rom.SetImage([]byte{1, 2, 3, 4, 5})
	assert.ErrorIs(err, ErrImageTooLarge)
	assert.Equal(3, rom.Len())
}

func TestRom_ReadFrom(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		capacity int
		input    string
		err      error
		length   int
	}){
		{"empty", 4, "", nil, 0},
		{"exact", 4, "abcd", nil, 4},
		{"short", 4, "ab", nil, 2},
		{"long", 4, "abcde", ErrImageTooLarge, 0},
		{"unlimited", 0, strings.Repeat("x", 8192), nil, 8192},
	}

	for _, entry := range table {
		rom := NewRom(entry.capacity)
		_, err := rom.ReadFrom(strings.NewReader(entry.input))
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.name)
			continue
		}
		assert.NoError(err, entry.name)
		assert.Equal(entry.length, rom.Len(), entry.name)
	}
}

func TestRam(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(16)
	assert.Equal(16, ram.Len())

	assert.NoError(ram.Store(0, 7))
	assert.NoError(ram.Store(15, 0x80))

	value, err := ram.Load(15)
	assert.NoError(err)
	assert.Equal(byte(0x80), value)

	assert.ErrorIs(ram.Store(16, 1), ErrOutOfBounds(0))
	_, err = ram.Load(0x1000)
	assert.ErrorIs(err, ErrOutOfBounds(0))

	cells := map[uint16]byte{}
	for addr, value := range ram.Cells() {
		cells[addr] = value
	}
	assert.Equal(map[uint16]byte{0: 7, 15: 0x80}, cells)

	var dump bytes.Buffer
	n, err := ram.WriteTo(&dump)
	assert.NoError(err)
	assert.Equal(int64(16), n)
	assert.Equal(byte(7), dump.Bytes()[0])
	assert.Equal(byte(0x80), dump.Bytes()[15])

	ram.Reset()
	for range ram.Cells() {
		assert.Fail("cell not cleared")
	}
}

func TestRam_CellsEarlyStop(t *testing.T) {
	assert := assert.New(t)

	ram := &Ram{Data: []byte{1, 0, 2, 3}}

	var addrs []uint16
	for addr := range ram.Cells() {
		addrs = append(addrs, addr)
		if len(addrs) == 2 {
			break
		}
	}

	assert.Equal([]uint16{0, 2}, addrs)
}
