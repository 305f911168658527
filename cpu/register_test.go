package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisters_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	rf := &Registers{}
	for reg := R0; reg <= COND; reg++ {
		assert.Equal(Word(0), rf.Read(reg), reg.String())
	}

	for reg := R0; reg <= COND; reg++ {
		rf.Write(reg, 0xf000|Word(reg))
	}
	for reg := R0; reg <= COND; reg++ {
		assert.Equal(0xf000|Word(reg), rf.Read(reg), reg.String())
	}

	rf.Reset()
	for reg := R0; reg <= COND; reg++ {
		assert.Equal(Word(0), rf.Read(reg), reg.String())
	}
}

func TestRegisters_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("R0", R0.String())
	assert.Equal("R7", R7.String())
	assert.Equal("PC", PC.String())
	assert.Equal("COND", COND.String())
	assert.Equal("Reg(10)", Reg(10).String())
}

func TestFlags(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FLAG_Z, FlagsOf(0))
	assert.Equal(FLAG_P, FlagsOf(1))
	assert.Equal(FLAG_P, FlagsOf(0x7fff))
	assert.Equal(FLAG_N, FlagsOf(0x8000))
	assert.Equal(FLAG_N, FlagsOf(0xffff))

	assert.Equal("nzp", FlagString(0))
	assert.Equal("Nzp", FlagString(FLAG_N))
	assert.Equal("nZp", FlagString(FLAG_Z))
	assert.Equal("nzP", FlagString(FLAG_P))
	assert.Equal("NZP", FlagString(FLAG_N|FLAG_Z|FLAG_P))
}
