package cpu

// Bit positions of the flags in the packed flags register.
const (
	FLAG_ZERO  = byte(0b01)
	FLAG_CARRY = byte(0b10)
)

// Flags holds the condition flags. They change only as a side effect of
// arithmetic and compare instructions.
type Flags struct {
	Zero  bool
	Carry bool
}

// Byte packs the flags into a register value.
func (fl Flags) Byte() (value byte) {
	if fl.Zero {
		value |= FLAG_ZERO
	}
	if fl.Carry {
		value |= FLAG_CARRY
	}
	return
}

// Test returns true if the jump condition holds.
func (fl Flags) Test(cond CodeCond) bool {
	switch cond {
	case COND_Z:
		return fl.Zero
	case COND_NZ:
		return !fl.Zero
	case COND_C:
		return fl.Carry
	case COND_NC:
		return !fl.Carry
	default:
		return true
	}
}

func (fl Flags) String() string {
	text := []byte("--")
	if fl.Zero {
		text[0] = 'Z'
	}
	if fl.Carry {
		text[1] = 'C'
	}
	return string(text)
}
