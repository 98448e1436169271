package io

import (
	"bytes"
	"io"
	"slices"
)

// Rom is the program store. Its length is the length of the loaded image.
type Rom struct {
	Capacity int // Capacity in bytes. Zero is unlimited.
	Data     []byte
}

var _ Memory = (*Rom)(nil)

// NewRom creates an empty program store of a given capacity.
func NewRom(capacity int) *Rom {
	return &Rom{Capacity: capacity}
}

// Len returns the length of the loaded image.
func (rom *Rom) Len() int {
	return len(rom.Data)
}

// Load reads a byte of the image.
func (rom *Rom) Load(addr uint16) (value byte, err error) {
	if int(addr) >= len(rom.Data) {
		err = ErrOutOfBounds(addr)
		return
	}

	value = rom.Data[addr]
	return
}

// Store always fails; programs cannot write the program store.
func (rom *Rom) Store(addr uint16, value byte) error {
	return ErrReadOnly
}

// SetImage replaces the image with a copy of image.
func (rom *Rom) SetImage(image []byte) (err error) {
	if rom.Capacity > 0 && len(image) > rom.Capacity {
		err = ErrImageTooLarge
		return
	}

	rom.Data = slices.Clone(image)
	return
}

// ReadFrom replaces the image with the entire contents of r.
func (rom *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	if rom.Capacity > 0 {
		r = io.LimitReader(r, int64(rom.Capacity)+1)
	}

	var buff bytes.Buffer
	n, err = buff.ReadFrom(r)
	if err != nil {
		return
	}

	err = rom.SetImage(buff.Bytes())
	return
}
