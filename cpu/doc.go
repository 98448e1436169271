// Package cpu implements the processor and assembler for the vm8 system.
//
// The CPU has three 8-bit registers (A, B and C, with A as the
// accumulator), a 16-bit program counter and two condition flags, Zero and
// Carry. Programs execute from a read-only program store and address a
// separate read-write data store. Instructions are one opcode byte followed
// by the fixed number of operand bytes listed for that opcode in Catalog;
// addresses are big-endian.
//
// The assembler translates a line-oriented assembly language in a single
// pass, supporting labels with forward references, equates, and
// compile-time expression evaluation. A ';' starts a comment unless it is
// the character literal ';'.
//
// Macros are defined with
//
//	.macro NAME arg...
//	...
//	.endm
//
// and expanded by writing NAME followed by one value per argument. In the
// body, each argument is an equate, and '@' is replaced with a prefix
// unique to the expansion so a macro can carry its own labels. Macros may
// use other macros, but not themselves.
package cpu
