// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/internal"
	"github.com/ezrec/lc3/io"
)

const (
	DEFAULT_STEP_LIMIT = 10_000_000 // Step budget for scripts that do not set one.
)

var _emulator_defines = map[string]string{
	"DEFAULT_STEP_LIMIT": fmt.Sprintf("%v", DEFAULT_STEP_LIMIT),
}

// Emulator state. Machine + trap services + console.
type Emulator struct {
	Verbose      bool         // If set, enables verbose logging.
	*cpu.Machine              // Reference to the machine simulation.
	Program      *cpu.Program // Reference to the program image to install.

	Entry  *cpu.Word            // If set, overrides the program entry point.
	Preset map[cpu.Reg]cpu.Word // Register values applied after reset.
	Limit  int                  // Step budget for Run; zero is unlimited.

	Console io.Console // Console behind the trap services.
	Device  io.Device  // Device used by the trap services.

	Service map[cpu.Word]Service // Trap services, by vector.

	Calls cpu.CallStack // Subroutine and trap call trace.

	Halted bool // Set by the HALT service.
}

// NewEmulator creates a new emulator, with the standard console services.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: cpu.NewMachine(),
		Program: &cpu.Program{},
		Preset:  map[cpu.Reg]cpu.Word{},
		Limit:   DEFAULT_STEP_LIMIT,
	}

	emu.Device = &emu.Console

	emu.Service = map[cpu.Word]Service{
		TRAP_GETC:  trapGetc,
		TRAP_OUT:   trapOut,
		TRAP_PUTS:  trapPuts,
		TRAP_IN:    trapIn,
		TRAP_PUTSP: trapPutsp,
		TRAP_HALT:  trapHalt,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Merge(maps.All(_emulator_defines),
		emu.Machine.Defines(),
		maps.All(_trap_defines),
	)
}

// Close the emulator, flushing any pending console output.
func (emu *Emulator) Close() (err error) {
	err = emu.Device.Flush()

	return
}

// Reset the emulator state.
// - Resets the machine.
// - Flushes console output and drops buffered console input.
// - Installs the trap table and service routine entries.
// - Installs the program.
// - Sets PC to the entry point, then applies the register presets.
func (emu *Emulator) Reset() (err error) {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	emu.Machine.Verbose = false
	emu.Machine.Reset()
	emu.Calls.Reset()
	emu.Halted = false

	err = emu.Device.Flush()
	if err != nil {
		return
	}
	emu.Console.Rewind()

	err = emu.installTraps()
	if err != nil {
		return
	}

	err = emu.Program.Install(emu.Machine)
	if err != nil {
		return
	}

	pc := emu.Program.Entry()
	if emu.Entry != nil {
		pc = *emu.Entry
	}
	emu.Machine.SetPc(pc)

	for reg, value := range emu.Preset {
		emu.Machine.Registers.Write(reg, value)
	}

	emu.Machine.Verbose = emu.Verbose

	return
}

// Tick performs a single tick of the emulator. When PC is at a service
// entry, the service runs before the instruction there is stepped.
// done is set once the machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	if emu.Halted {
		done = true
		return
	}

	pc := emu.Machine.Pc()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, Err: err}
		}
	}()

	vector, svc, ok := emu.serviceAt(pc)
	if ok {
		if emu.Verbose {
			log.Printf("emulator: trap x%02X", vector)
		}
		err = svc(emu)
		if err == nil {
			err = emu.Device.Flush()
		}
		if err != nil {
			return
		}
		if emu.Halted {
			done = true
			return
		}
	}

	ins, err := emu.Machine.Step()
	if err != nil {
		return
	}

	emu.Calls.Trace(ins, &emu.Machine.Registers)

	return
}

// Run ticks the emulator until it halts, fails, ctx is done, or maxSteps
// instructions have executed. A maxSteps of zero or less is unlimited.
func (emu *Emulator) Run(ctx context.Context, maxSteps int) (steps int, err error) {
	if emu.Halted {
		err = ErrHalted
		return
	}

	defer func() {
		ferr := emu.Device.Flush()
		if err == nil {
			err = ferr
		}
	}()

	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		// A pending HALT executes no instruction, so it may run past
		// the budget.
		if maxSteps > 0 && steps >= maxSteps && !emu.haltPending() {
			err = ErrStepLimit
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		steps++
	}
}
