package io

import (
	"io"
	"iter"
)

// Ram is the data store.
type Ram struct {
	Data []byte
}

var _ Memory = (*Ram)(nil)

// NewRam creates a zeroed data store.
func NewRam(size int) *Ram {
	return &Ram{Data: make([]byte, size)}
}

// Reset zeros the data store.
func (ram *Ram) Reset() {
	clear(ram.Data)
}

// Len returns the size of the data store.
func (ram *Ram) Len() int {
	return len(ram.Data)
}

// Load reads a byte from the data store.
func (ram *Ram) Load(addr uint16) (value byte, err error) {
	if int(addr) >= len(ram.Data) {
		err = ErrOutOfBounds(addr)
		return
	}

	value = ram.Data[addr]
	return
}

// Store writes a byte to the data store.
func (ram *Ram) Store(addr uint16, value byte) (err error) {
	if int(addr) >= len(ram.Data) {
		err = ErrOutOfBounds(addr)
		return
	}

	ram.Data[addr] = value
	return
}

// WriteTo dumps the entire data store.
func (ram *Ram) WriteTo(w io.Writer) (n int64, err error) {
	written, err := w.Write(ram.Data)
	n = int64(written)
	return
}

// Cells iterates over the non-zero cells, in address order.
func (ram *Ram) Cells() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for addr, value := range ram.Data {
			if value == 0 {
				continue
			}
			if !yield(uint16(addr), value) {
				return
			}
		}
	}
}
