package io

import (
	"errors"

	"github.com/ezrec/vm8/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrReadOnly      = errors.New(f("memory is read-only"))
	ErrImageTooLarge = errors.New(f("image too large"))
)

// ErrOutOfBounds is returned for an access outside of a memory space.
type ErrOutOfBounds uint16

func (err ErrOutOfBounds) Error() string {
	return f("address 0x%04x out of bounds", uint16(err))
}

func (err ErrOutOfBounds) Is(target error) (ok bool) {
	_, ok = target.(ErrOutOfBounds)
	return
}
