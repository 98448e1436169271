package cpu

import (
	"cmp"
	"errors"
	"slices"
)

// Ref is a reference to a label that was not yet defined when it was used.
type Ref struct {
	Offset uint16 // Offset of the two reserved address bytes.
	LineNo int    // Line of the reference.
	Line   string // Text of the reference.
}

// Linker tracks label addresses and patches forward references in place.
type Linker struct {
	Label   map[string]uint16 // Map of labels to addresses.
	Pending map[string][]Ref  // Map of undefined labels to their references.
}

// Reset forgets all labels and references.
func (ln *Linker) Reset() {
	ln.Label = map[string]uint16{}
	ln.Pending = map[string][]Ref{}
}

// Resolve returns the address of a label. An unknown label is recorded
// as pending at ref, and resolves to a zero placeholder until defined.
func (ln *Linker) Resolve(label string, ref Ref) (addr uint16) {
	addr, ok := ln.Label[label]
	if ok {
		return
	}

	if ln.Pending == nil {
		ln.Pending = map[string][]Ref{}
	}
	ln.Pending[label] = append(ln.Pending[label], ref)
	return
}

// Define sets the address of a label, and writes it big-endian over the
// reserved bytes of every pending reference in code.
func (ln *Linker) Define(label string, addr uint16, code []byte) (err error) {
	if _, ok := ln.Label[label]; ok {
		err = ErrLabelDuplicate
		return
	}

	if ln.Label == nil {
		ln.Label = map[string]uint16{}
	}
	ln.Label[label] = addr

	for _, ref := range ln.Pending[label] {
		code[ref.Offset] = byte(addr >> 8)
		code[ref.Offset+1] = byte(addr)
	}
	delete(ln.Pending, label)

	return
}

// Check returns an error for every reference to a label that was never
// defined, in source line order.
func (ln *Linker) Check() (err error) {
	type missing struct {
		label string
		ref   Ref
	}

	var all []missing
	for label, refs := range ln.Pending {
		for _, ref := range refs {
			all = append(all, missing{label: label, ref: ref})
		}
	}

	slices.SortFunc(all, func(a, b missing) int {
		return cmp.Or(cmp.Compare(a.ref.LineNo, b.ref.LineNo), cmp.Compare(a.label, b.label))
	})

	var errs []error
	for _, item := range all {
		errs = append(errs, &ErrSyntax{LineNo: item.ref.LineNo, Line: item.ref.Line, Err: ErrLabelMissing(item.label)})
	}

	err = errors.Join(errs...)
	return
}
