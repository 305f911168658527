// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"TRAP_TABLE":       fmt.Sprintf("%#x", TRAP_TABLE),
	"INTERRUPT_TABLE":  fmt.Sprintf("%#x", INTERRUPT_TABLE),
	"SUPERVISOR_SPACE": fmt.Sprintf("%#x", SUPERVISOR_SPACE),
	"USER_SPACE":       fmt.Sprintf("%#x", USER_SPACE),
	"DEVICE_SPACE":     fmt.Sprintf("%#x", DEVICE_SPACE),
	"FLAG_N":           fmt.Sprintf("%#x", FLAG_N),
	"FLAG_Z":           fmt.Sprintf("%#x", FLAG_Z),
	"FLAG_P":           fmt.Sprintf("%#x", FLAG_P),
}

// Machine is the simulation context: one memory and one register file,
// owned exclusively by the caller.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Memory    Memory    // Main memory.
	Registers Registers // Register file.

	Ticks int // Instructions executed since reset.
}

// NewMachine creates a machine with zeroed memory and registers.
func NewMachine() (mc *Machine) {
	mc = &Machine{}

	return
}

// Defines for the machine.
func (mc *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the machine state.
// - Clears memory and registers.
// - Sets COND to Z.
// - Zeros the tick counter.
func (mc *Machine) Reset() {
	if mc.Verbose {
		log.Printf("cpu: reset")
	}

	mc.Memory.Reset()
	mc.Registers.Reset()
	mc.Registers[COND] = FLAG_Z
	mc.Ticks = 0
}

// Load copies block into memory at offset.
func (mc *Machine) Load(block []Word, offset Word) (err error) {
	err = mc.Memory.Load(block, offset)
	if err == nil && mc.Verbose {
		log.Printf("cpu: loaded %d words at 0x%04x", len(block), offset)
	}
	return
}

// Pc returns the program counter.
func (mc *Machine) Pc() Word {
	return mc.Registers[PC]
}

// SetPc sets the program counter.
func (mc *Machine) SetPc(pc Word) {
	mc.Registers[PC] = pc
}

// String returns the current register state as a string.
func (mc *Machine) String() (text string) {
	for reg := R0; reg < REGISTER_COUNT; reg++ {
		var strval string
		val := mc.Registers[reg]
		switch reg {
		case COND:
			strval = FlagString(val)
		default:
			strval = fmt.Sprintf("x%04X (%d)", val, int16(val))
		}
		text += fmt.Sprintf("% 5s: %v\n", reg.String(), strval)
	}

	return
}

// Step executes a single fetch-decode-execute cycle and returns the
// instruction that was executed.
//
// An UNUSED or RESERVED instruction returns an error matching
// ErrIllegalOpcode, and leaves the machine exactly as it was before the step.
func (mc *Machine) Step() (ins Instruction, err error) {
	pc := mc.Registers[PC]

	// Fetch, then advance before execution so that relative
	// offsets are from the following instruction.
	word := mc.Memory.Read(pc)
	mc.Registers[PC] = pc + 1

	ins = Decode(word)

	if mc.Verbose {
		log.Printf("%04x: %v", pc, ins)
	}

	err = mc.Execute(ins)
	if err != nil {
		mc.Registers[PC] = pc
		err = errors.Join(ErrOpcode(ins), err)
		return
	}

	mc.Ticks++

	return
}

// Execute executes a single decoded instruction against the current state.
// PC must already point past the instruction.
func (mc *Machine) Execute(ins Instruction) (err error) {
	if !ins.Op.Legal() {
		err = ErrIllegalOpcode
		return
	}

	reg := &mc.Registers
	mem := &mc.Memory

	// Result of a register-writing opcode.
	var value Word

	switch ins.Op {
	case OP_ADD:
		value = ins.Imm
		if !ins.Immediate {
			value = reg[ins.Sr2]
		}
		value += reg[ins.Sr1]
	case OP_AND:
		value = ins.Imm
		if !ins.Immediate {
			value = reg[ins.Sr2]
		}
		value &= reg[ins.Sr1]
	case OP_NOT:
		value = ^reg[ins.Sr1]
	case OP_LD:
		value = mem.Read(reg[PC] + ins.Offset)
	case OP_LDI:
		value = mem.Read(mem.Read(reg[PC] + ins.Offset))
	case OP_LDR:
		value = mem.Read(reg[ins.Base] + ins.Offset)
	case OP_LEA:
		value = reg[PC] + ins.Offset
	case OP_ST:
		mem.Write(reg[PC]+ins.Offset, reg[ins.Sr])
	case OP_STI:
		mem.Write(mem.Read(reg[PC]+ins.Offset), reg[ins.Sr])
	case OP_STR:
		mem.Write(reg[ins.Base]+ins.Offset, reg[ins.Sr])
	case OP_BR:
		if ins.Flags&reg[COND] != 0 {
			reg[PC] += ins.Offset
		}
	case OP_JMP:
		reg[PC] = reg[ins.Base]
	case OP_JSR:
		// Target is resolved before R7 is written, so JSRR R7 works.
		link := reg[PC]
		target := reg[ins.Base]
		if ins.Relative {
			target = link + ins.Offset
		}
		reg[R7] = link
		reg[PC] = target
	case OP_TRAP:
		reg[R7] = reg[PC]
		reg[PC] = mem.Read(TRAP_TABLE + ins.Vector)
	default:
		err = ErrIllegalOpcode
		return
	}

	if ins.Op.Writes() {
		mc.setResult(ins.Dr, value)
	}

	return
}

// setResult writes a general-purpose register and updates COND.
func (mc *Machine) setResult(dr Reg, value Word) {
	mc.Registers[dr] = value
	mc.Registers[COND] = FlagsOf(value)
}
