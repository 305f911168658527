package emulator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Machine)
	assert.NotNil(emu.Program)
	assert.Len(emu.Service, 6)
	assert.Equal(DEFAULT_STEP_LIMIT, emu.Limit)
	assert.False(emu.Halted)
}

func doRun(words []cpu.Word, input string, t *testing.T) (emu *Emulator, steps int, output string, err error) {
	assert := assert.New(t)

	emu = NewEmulator()
	emu.Program.Add(cpu.USER_SPACE, words...)

	emu.Console.Input = strings.NewReader(input)
	buffer := &bytes.Buffer{}
	emu.Console.Output = buffer

	assert.NoError(emu.Reset())

	steps, err = emu.Run(context.Background(), 1000)
	output = buffer.String()

	return
}

func TestEmulator_Reset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program.Add(0x4000, cpu.MakeTrap(TRAP_HALT))
	emu.Preset[cpu.R6] = 0xfdff

	assert.NoError(emu.Reset())

	assert.Equal(cpu.Word(0x4000), emu.Pc())
	assert.Equal(cpu.Word(0xfdff), emu.Registers.Read(cpu.R6))
	assert.Equal(cpu.FLAG_Z, emu.Registers.Read(cpu.COND))
	assert.Equal(cpu.MakeTrap(TRAP_HALT), emu.Memory.Read(0x4000))

	// Served vectors point at a RET, the rest at BAD_TRAP.
	for vector := range emu.Service {
		entry := emu.Memory.Read(cpu.TRAP_TABLE + vector)
		assert.Equal(ServiceEntry(vector), entry)
		assert.Equal(cpu.MakeRet(), emu.Memory.Read(entry))
	}
	assert.Equal(BAD_TRAP, emu.Memory.Read(cpu.TRAP_TABLE+0x30))
	assert.Equal(cpu.OP_RESERVED, cpu.Decode(emu.Memory.Read(BAD_TRAP)).Op)

	entry := cpu.Word(0x5000)
	emu.Entry = &entry
	assert.NoError(emu.Reset())
	assert.Equal(entry, emu.Pc())
}

func TestEmulator_ResetOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program.Add(0xffff, 1, 2)

	err := emu.Reset()
	assert.ErrorIs(err, cpu.ErrOutOfBoundsLoad)
}

func TestEmulator_Puts(t *testing.T) {
	assert := assert.New(t)

	emu, steps, output, err := doRun([]cpu.Word{
		cpu.MakePcRel(cpu.OP_LEA, cpu.R0, 2),
		cpu.MakeTrap(TRAP_PUTS),
		cpu.MakeTrap(TRAP_HALT),
		'H', 'i', '\n', 0,
	}, "", t)

	assert.NoError(err)
	assert.Equal("Hi\n", output)
	assert.Equal(4, steps)
	assert.True(emu.Halted)

	// The TRAP links back to the instruction following it.
	assert.Equal(cpu.USER_SPACE+3, emu.Registers.Read(cpu.R7))
}

func TestEmulator_Putsp(t *testing.T) {
	assert := assert.New(t)

	_, _, output, err := doRun([]cpu.Word{
		cpu.MakePcRel(cpu.OP_LEA, cpu.R0, 2),
		cpu.MakeTrap(TRAP_PUTSP),
		cpu.MakeTrap(TRAP_HALT),
		0x6548, // 'H', 'e'
		0x006c, // 'l'
		0x0000,
	}, "", t)

	assert.NoError(err)
	assert.Equal("Hel", output)
}

func TestEmulator_Getc(t *testing.T) {
	assert := assert.New(t)

	emu, _, output, err := doRun([]cpu.Word{
		cpu.MakeTrap(TRAP_GETC),
		cpu.MakeTrap(TRAP_OUT),
		cpu.MakeTrap(TRAP_HALT),
	}, "q", t)

	assert.NoError(err)
	assert.Equal("q", output)
	assert.Equal(cpu.Word('q'), emu.Registers.Read(cpu.R0))
}

func TestEmulator_In(t *testing.T) {
	assert := assert.New(t)

	emu, _, output, err := doRun([]cpu.Word{
		cpu.MakeTrap(TRAP_IN),
		cpu.MakeTrap(TRAP_HALT),
	}, "z", t)

	assert.NoError(err)
	assert.Equal(INPUT_PROMPT+"z", output)
	assert.Equal(cpu.Word('z'), emu.Registers.Read(cpu.R0))
}

func TestEmulator_GetcNoInput(t *testing.T) {
	assert := assert.New(t)

	_, steps, _, err := doRun([]cpu.Word{
		cpu.MakeTrap(TRAP_GETC),
		cpu.MakeTrap(TRAP_HALT),
	}, "", t)

	assert.Equal(1, steps)

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(ServiceEntry(TRAP_GETC), rt.Pc)
}

func TestEmulator_Subroutine(t *testing.T) {
	assert := assert.New(t)

	emu, steps, output, err := doRun([]cpu.Word{
		cpu.MakeJsr(2),                      // x3000
		cpu.MakeTrap(TRAP_HALT),             // x3001
		0,                                   // x3002
		cpu.MakePcRel(cpu.OP_LD, cpu.R0, 4), // x3003
		cpu.MakePcRel(cpu.OP_ST, cpu.R7, 4), // x3004
		cpu.MakeTrap(TRAP_OUT),              // x3005
		cpu.MakePcRel(cpu.OP_LD, cpu.R7, 2), // x3006
		cpu.MakeRet(),                       // x3007
		'A',                                 // x3008
		0,                                   // x3009
	}, "", t)

	assert.NoError(err)
	assert.Equal("A", output)
	assert.Equal(8, steps)
	assert.True(emu.Halted)
	assert.Equal(cpu.Word('A'), emu.Registers.Read(cpu.R0))
	assert.Equal(cpu.USER_SPACE+1, emu.Memory.Read(0x3009))

	// Only the HALT trap is still outstanding.
	assert.Equal([]cpu.Word{cpu.USER_SPACE + 2}, emu.Calls.Data)
}

func TestEmulator_StepLimit(t *testing.T) {
	assert := assert.New(t)

	emu, steps, _, err := doRun([]cpu.Word{
		cpu.MakeBr(cpu.FLAG_N|cpu.FLAG_Z|cpu.FLAG_P, -1),
	}, "", t)

	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(1000, steps)
	assert.False(emu.Halted)
	assert.Equal(cpu.USER_SPACE, emu.Pc())
}

func TestEmulator_HaltAtLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program.Add(cpu.USER_SPACE,
		cpu.MakeAddImm(cpu.R0, cpu.R0, 1),
		cpu.MakeTrap(TRAP_HALT),
	)
	assert.NoError(emu.Reset())

	// The HALT service runs even with the budget spent.
	steps, err := emu.Run(context.Background(), 2)
	assert.NoError(err)
	assert.Equal(2, steps)
	assert.True(emu.Halted)

	// A budget that ends before the TRAP still stops the run.
	assert.NoError(emu.Reset())
	steps, err = emu.Run(context.Background(), 1)
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(1, steps)
	assert.False(emu.Halted)

	// OUT is not a halt, so it does not run past the budget.
	emu.Program = &cpu.Program{}
	emu.Program.Add(cpu.USER_SPACE,
		cpu.MakeTrap(TRAP_OUT),
		cpu.MakeTrap(TRAP_HALT),
	)
	emu.Console.Output = &bytes.Buffer{}
	assert.NoError(emu.Reset())
	steps, err = emu.Run(context.Background(), 1)
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(1, steps)
	assert.Equal(ServiceEntry(TRAP_OUT), emu.Pc())
}

func TestEmulator_Interrupt(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program.Add(cpu.USER_SPACE,
		cpu.MakeTrap(TRAP_GETC),
		cpu.MakeBr(cpu.FLAG_N|cpu.FLAG_Z|cpu.FLAG_P, -2),
	)
	emu.Console.Input = strings.NewReader("ab\x03")
	emu.Console.Raw = true
	assert.NoError(emu.Reset())

	_, err := emu.Run(context.Background(), 0)
	assert.ErrorIs(err, io.ErrConsoleInterrupt)

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(ServiceEntry(TRAP_GETC), rt.Pc)
	assert.Equal(cpu.Word('b'), emu.Registers.Read(cpu.R0))
}

func TestEmulator_ResetConsole(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program.Add(cpu.USER_SPACE,
		cpu.MakeTrap(TRAP_GETC),
		cpu.MakeTrap(TRAP_HALT),
	)
	emu.Console.Input = strings.NewReader("ab")
	assert.NoError(emu.Reset())

	_, err := emu.Run(context.Background(), 100)
	assert.NoError(err)
	assert.Equal(cpu.Word('a'), emu.Registers.Read(cpu.R0))

	// The 'b' buffered by the first run is dropped by the reset.
	assert.NoError(emu.Reset())
	_, err = emu.Run(context.Background(), 100)
	assert.ErrorIs(err, io.ErrConsoleInput)
	assert.Equal(cpu.Word(0), emu.Registers.Read(cpu.R0))

	// Pending output is flushed by the reset.
	buffer := &bytes.Buffer{}
	emu.Console.Output = buffer
	assert.NoError(emu.Console.PutChar('x'))
	assert.Equal("", buffer.String())
	assert.NoError(emu.Reset())
	assert.Equal("x", buffer.String())
}

func TestEmulator_ServiceVector(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Service[0x140] = func(emu *Emulator) error {
		return nil
	}

	err := emu.Reset()
	assert.ErrorIs(err, ErrVector)

	var tv *ErrTrapVector
	if assert.True(errors.As(err, &tv)) {
		assert.Equal(cpu.Word(0x140), tv.Vector)
	}

	// The highest vector is still accepted.
	delete(emu.Service, 0x140)
	emu.Service[0xff] = func(emu *Emulator) error {
		return nil
	}
	assert.NoError(emu.Reset())
	assert.Equal(ServiceEntry(0xff), emu.Memory.Read(cpu.TRAP_TABLE+0xff))
}

func TestEmulator_Cancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program.Add(cpu.USER_SPACE, cpu.MakeBr(cpu.FLAG_N|cpu.FLAG_Z|cpu.FLAG_P, -1))
	assert.NoError(emu.Reset())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps, err := emu.Run(ctx, 0)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, steps)
}

func TestEmulator_Halted(t *testing.T) {
	assert := assert.New(t)

	emu, _, _, err := doRun([]cpu.Word{
		cpu.MakeTrap(TRAP_HALT),
	}, "", t)
	assert.NoError(err)
	assert.True(emu.Halted)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	_, err = emu.Run(context.Background(), 0)
	assert.ErrorIs(err, ErrHalted)

	// Reset clears the halt.
	assert.NoError(emu.Reset())
	assert.False(emu.Halted)
}

func TestEmulator_IllegalOpcode(t *testing.T) {
	assert := assert.New(t)

	emu, steps, _, err := doRun([]cpu.Word{
		cpu.MakeAddImm(cpu.R1, cpu.R1, 1),
		0xd000,
	}, "", t)

	assert.Equal(1, steps)
	assert.ErrorIs(err, cpu.ErrIllegalOpcode)

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(cpu.USER_SPACE+1, rt.Pc)
	assert.Equal(cpu.USER_SPACE+1, emu.Pc())
	assert.Equal(cpu.Word(1), emu.Registers.Read(cpu.R1))
}

func TestEmulator_UnknownTrap(t *testing.T) {
	assert := assert.New(t)

	emu, steps, _, err := doRun([]cpu.Word{
		cpu.MakeTrap(0x30),
	}, "", t)

	assert.Equal(1, steps)
	assert.ErrorIs(err, cpu.ErrIllegalOpcode)

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(BAD_TRAP, rt.Pc)
	assert.Equal(cpu.USER_SPACE+1, emu.Registers.Read(cpu.R7))
}

func TestEmulator_CustomService(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Service[0x40] = func(emu *Emulator) error {
		emu.Registers.Write(cpu.R3, 0xbeef)
		return nil
	}
	emu.Program.Add(cpu.USER_SPACE,
		cpu.MakeTrap(0x40),
		cpu.MakeTrap(TRAP_HALT),
	)
	assert.NoError(emu.Reset())

	_, err := emu.Run(context.Background(), 100)
	assert.NoError(err)
	assert.Equal(cpu.Word(0xbeef), emu.Registers.Read(cpu.R3))
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("0x25", defines["TRAP_HALT"])
	assert.Equal("0x3000", defines["USER_SPACE"])
	assert.Equal("10000000", defines["DEFAULT_STEP_LIMIT"])
}
