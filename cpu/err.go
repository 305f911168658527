package cpu

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrOutOfBoundsLoad = errors.New(f("load out of bounds"))
	ErrIllegalOpcode   = errors.New(f("illegal opcode"))

	// Program image errors
	ErrProgramEmpty = errors.New(f("program image has no origin"))
	ErrProgramOdd   = errors.New(f("program image has odd length"))
)

// ErrOpcode describes the instruction that failed to execute.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x %v", uint16(eo.Word), Instruction(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrLoad describes a block that does not fit in the address space.
type ErrLoad struct {
	Offset Word
	Length int
}

func (err ErrLoad) Error() string {
	return f("load of %d words at 0x%04x exceeds address space", err.Length, uint16(err.Offset))
}

func (err ErrLoad) Unwrap() error {
	return ErrOutOfBoundsLoad
}
