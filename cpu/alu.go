package cpu

// FullAdd adds two bytes and a carry-in through eight chained one-bit
// full adders, least significant bit first.
func FullAdd(a, b byte, carry bool) (sum byte, carryOut bool) {
	var c byte
	if carry {
		c = 1
	}

	for bit := range 8 {
		x := (a >> bit) & 1
		y := (b >> bit) & 1
		sum |= (x ^ y ^ c) << bit
		c = (x & y) | (x & c) | (y & c)
	}

	carryOut = c == 1
	return
}

// Add returns a + b. Carry is the carry out of bit 7.
func Add(a, b byte) (result byte, flags Flags) {
	result, flags.Carry = FullAdd(a, b, false)
	flags.Zero = result == 0
	return
}

// Sub returns a - b, as a plus the two's complement of b.
// Carry is set when the subtraction borrows.
func Sub(a, b byte) (result byte, flags Flags) {
	var carry bool
	result, carry = FullAdd(a, ^b, true)
	flags.Zero = result == 0
	flags.Carry = !carry
	return
}

// Compare sets the flags as for a - b, discarding the difference.
// Exactly one outcome holds: equal sets only Zero, a < b sets only
// Carry, and a > b sets neither.
func Compare(a, b byte) (flags Flags) {
	_, flags = Sub(a, b)
	return
}

// doAlu performs the requested ALU action, and returns the output value.
// Only ADD and SUB change the flags.
func (cpu *Cpu) doAlu(op CodeAluOp, input byte, value byte) (output byte) {
	switch op {
	case ALU_OP_ADD:
		output, cpu.Flags = Add(input, value)
	case ALU_OP_SUB:
		output, cpu.Flags = Sub(input, value)
	case ALU_OP_AND:
		output = input & value
	case ALU_OP_OR:
		output = input | value
	case ALU_OP_XOR:
		output = input ^ value
	case ALU_OP_NOT:
		output = ^input
	default:
		output = input
	}

	return
}
