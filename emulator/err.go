package emulator

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	ErrHalted    = errors.New(f("machine halted"))
	ErrStepLimit = errors.New(f("step limit reached"))
	ErrRegister  = errors.New(f("unknown register"))
	ErrVector    = errors.New(f("invalid trap vector"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc  uint16
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc x%04X %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrTrapVector indicates a service registered outside the 8-bit trap
// vector range.
type ErrTrapVector struct {
	Vector uint16
}

func (err *ErrTrapVector) Error() string {
	return f("trap vector x%X out of range", err.Vector)
}

func (err *ErrTrapVector) Unwrap() error {
	return ErrVector
}

// ErrScript indicates a failure while running a boot script.
type ErrScript struct {
	Name string
	Err  error
}

func (err *ErrScript) Error() string {
	return f("script %v: %v", err.Name, err.Err)
}

func (err *ErrScript) Unwrap() error {
	return err.Err
}
