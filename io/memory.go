// Package io provides the memory spaces of the vm8 machine.
// The program store (Rom) is read-only once an image is loaded, and the
// data store (Ram) is a flat byte-addressed read-write array. Both are
// accessed through the Memory interface and both reject out-of-range
// addresses with ErrOutOfBounds.
package io

// Memory defines the interface for a byte-addressed memory space.
type Memory interface {
	// Len returns the number of addressable bytes.
	Len() int
	// Load reads the byte at addr.
	Load(addr uint16) (value byte, err error)
	// Store writes the byte at addr.
	Store(addr uint16, value byte) error
}
