package emulator

import (
	"fmt"
	"log"

	"github.com/ezrec/lc3/cpu"
)

// Trap vectors of the console service routines.
const (
	TRAP_GETC  = cpu.Word(0x20) // Read a character into R0, no echo.
	TRAP_OUT   = cpu.Word(0x21) // Write the character in R0.
	TRAP_PUTS  = cpu.Word(0x22) // Write the word string at R0.
	TRAP_IN    = cpu.Word(0x23) // Prompt, read and echo a character into R0.
	TRAP_PUTSP = cpu.Word(0x24) // Write the packed byte string at R0.
	TRAP_HALT  = cpu.Word(0x25) // Stop the machine.
)

// BAD_TRAP is the routine address installed for vectors with no service.
// It holds a RESERVED instruction, so reaching it faults.
const BAD_TRAP = cpu.SUPERVISOR_SPACE + 0x100

// INPUT_PROMPT is written by the IN service before reading.
const INPUT_PROMPT = "\nInput a character> "

var _trap_defines = map[string]string{
	"TRAP_GETC":  fmt.Sprintf("%#x", TRAP_GETC),
	"TRAP_OUT":   fmt.Sprintf("%#x", TRAP_OUT),
	"TRAP_PUTS":  fmt.Sprintf("%#x", TRAP_PUTS),
	"TRAP_IN":    fmt.Sprintf("%#x", TRAP_IN),
	"TRAP_PUTSP": fmt.Sprintf("%#x", TRAP_PUTSP),
	"TRAP_HALT":  fmt.Sprintf("%#x", TRAP_HALT),
	"BAD_TRAP":   fmt.Sprintf("%#x", BAD_TRAP),
}

// Service is a trap service routine implemented by the emulator. It runs
// when PC reaches the routine's entry address, before the RET stored there.
type Service func(emu *Emulator) error

// ServiceEntry returns the routine entry address installed for a vector.
func ServiceEntry(vector cpu.Word) cpu.Word {
	return cpu.SUPERVISOR_SPACE + vector
}

// serviceAt returns the service whose entry address is pc.
func (emu *Emulator) serviceAt(pc cpu.Word) (vector cpu.Word, svc Service, ok bool) {
	if pc < cpu.SUPERVISOR_SPACE || pc >= BAD_TRAP {
		return
	}

	vector = pc - cpu.SUPERVISOR_SPACE
	svc, ok = emu.Service[vector]
	return
}

// haltPending is true when the next tick runs the HALT service.
func (emu *Emulator) haltPending() bool {
	vector, _, ok := emu.serviceAt(emu.Machine.Pc())
	return ok && vector == TRAP_HALT
}

// installTraps fills the trap table. Vectors with a service point at the
// service entry, which holds a RET; all others point at BAD_TRAP.
func (emu *Emulator) installTraps() (err error) {
	for vector := range emu.Service {
		if vector > 0xff {
			err = &ErrTrapVector{Vector: vector}
			return
		}
	}

	mem := &emu.Machine.Memory

	for vector := range cpu.Word(0x100) {
		mem.Write(cpu.TRAP_TABLE+vector, BAD_TRAP)
	}
	mem.Write(BAD_TRAP, cpu.Instruction{Op: cpu.OP_RESERVED}.Encode())

	for vector := range emu.Service {
		entry := ServiceEntry(vector)
		mem.Write(cpu.TRAP_TABLE+vector, entry)
		mem.Write(entry, cpu.MakeRet())
	}

	return
}

func trapGetc(emu *Emulator) (err error) {
	ch, err := emu.Device.GetChar()
	if err != nil {
		return
	}

	emu.Registers.Write(cpu.R0, cpu.Word(ch))

	return
}

func trapOut(emu *Emulator) (err error) {
	err = emu.Device.PutChar(byte(emu.Registers.Read(cpu.R0)))
	return
}

func trapPuts(emu *Emulator) (err error) {
	addr := emu.Registers.Read(cpu.R0)
	for range cpu.MEMORY_SIZE {
		word := emu.Memory.Read(addr)
		if word == 0 {
			break
		}
		err = emu.Device.PutChar(byte(word))
		if err != nil {
			return
		}
		addr++
	}

	return
}

func trapIn(emu *Emulator) (err error) {
	for n := range len(INPUT_PROMPT) {
		err = emu.Device.PutChar(INPUT_PROMPT[n])
		if err != nil {
			return
		}
	}

	err = trapGetc(emu)
	if err != nil {
		return
	}

	err = trapOut(emu)

	return
}

// trapPutsp writes two characters per word, low byte first. A zero byte
// or word terminates the string.
func trapPutsp(emu *Emulator) (err error) {
	addr := emu.Registers.Read(cpu.R0)
	for range cpu.MEMORY_SIZE {
		word := emu.Memory.Read(addr)
		for _, ch := range []byte{byte(word), byte(word >> 8)} {
			if ch == 0 {
				return
			}
			err = emu.Device.PutChar(ch)
			if err != nil {
				return
			}
		}
		addr++
	}

	return
}

func trapHalt(emu *Emulator) (err error) {
	if emu.Verbose {
		log.Printf("emulator: halt")
	}

	emu.Halted = true

	return
}
