package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullAdd(t *testing.T) {
	assert := assert.New(t)

	for a := range 256 {
		for b := range 256 {
			for _, carry := range []bool{false, true} {
				expected := a + b
				if carry {
					expected++
				}
				sum, carryOut := FullAdd(byte(a), byte(b), carry)
				if sum != byte(expected) || carryOut != (expected > 0xff) {
					assert.Fail("FullAdd", "%d + %d + %v = %d, %v", a, b, carry, sum, carryOut)
					return
				}
			}
		}
	}
}

func TestAddSub(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		op     func(a, b byte) (byte, Flags)
		a, b   byte
		result byte
		flags  Flags
	}){
		{"add", Add, 5, 2, 7, Flags{}},
		{"add_zero", Add, 0, 0, 0, Flags{Zero: true}},
		{"add_carry", Add, 0xff, 2, 1, Flags{Carry: true}},
		{"add_wrap_zero", Add, 0x80, 0x80, 0, Flags{Zero: true, Carry: true}},
		{"sub", Sub, 7, 5, 2, Flags{}},
		{"sub_zero", Sub, 5, 5, 0, Flags{Zero: true}},
		{"sub_borrow", Sub, 3, 5, 0xfe, Flags{Carry: true}},
		{"sub_from_zero", Sub, 0, 1, 0xff, Flags{Carry: true}},
	}

	for _, entry := range table {
		result, flags := entry.op(entry.a, entry.b)
		assert.Equal(entry.result, result, entry.name)
		assert.Equal(entry.flags, flags, entry.name)
	}
}

func TestCompare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a, b  byte
		flags Flags
	}){
		{5, 5, Flags{Zero: true}},
		{7, 5, Flags{}},
		{3, 5, Flags{Carry: true}},
		{0, 0xff, Flags{Carry: true}},
		{0xff, 0, Flags{}},
	}

	for _, entry := range table {
		assert.Equal(entry.flags, Compare(entry.a, entry.b), "%d vs %d", entry.a, entry.b)
	}

	// Exactly one of equal, greater, less.
	for a := range 256 {
		for b := range 256 {
			flags := Compare(byte(a), byte(b))
			switch {
			case a == b:
				assert.Equal(Flags{Zero: true}, flags)
			case a > b:
				assert.Equal(Flags{}, flags)
			default:
				assert.Equal(Flags{Carry: true}, flags)
			}
			if t.Failed() {
				return
			}
		}
	}
}

func TestFlags(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		flags Flags
		value byte
		text  string
		z, nz bool
		c, nc bool
	}){
		{Flags{}, 0b00, "--", false, true, false, true},
		{Flags{Zero: true}, 0b01, "Z-", true, false, false, true},
		{Flags{Carry: true}, 0b10, "-C", false, true, true, false},
		{Flags{Zero: true, Carry: true}, 0b11, "ZC", true, false, true, false},
	}

	for _, entry := range table {
		assert.Equal(entry.value, entry.flags.Byte(), entry.text)
		assert.Equal(entry.text, entry.flags.String())
		assert.True(entry.flags.Test(COND_ALWAYS), entry.text)
		assert.Equal(entry.z, entry.flags.Test(COND_Z), entry.text)
		assert.Equal(entry.nz, entry.flags.Test(COND_NZ), entry.text)
		assert.Equal(entry.c, entry.flags.Test(COND_C), entry.text)
		assert.Equal(entry.nc, entry.flags.Test(COND_NC), entry.text)
	}
}
