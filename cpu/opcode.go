package cpu

import (
	"strings"
)

// Word is the unit of memory and register storage.
type Word = uint16

// Opcode is the 4-bit operation selector in bits 15-12 of an instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_BR       = Opcode(0x0) // BR
	OP_ADD      = Opcode(0x1) // ADD
	OP_LD       = Opcode(0x2) // LD
	OP_ST       = Opcode(0x3) // ST
	OP_JSR      = Opcode(0x4) // JSR
	OP_AND      = Opcode(0x5) // AND
	OP_LDR      = Opcode(0x6) // LDR
	OP_STR      = Opcode(0x7) // STR
	OP_UNUSED   = Opcode(0x8) // UNUSED
	OP_NOT      = Opcode(0x9) // NOT
	OP_LDI      = Opcode(0xa) // LDI
	OP_STI      = Opcode(0xb) // STI
	OP_JMP      = Opcode(0xc) // JMP
	OP_RESERVED = Opcode(0xd) // RESERVED
	OP_LEA      = Opcode(0xe) // LEA
	OP_TRAP     = Opcode(0xf) // TRAP
)

// Legal returns false for the selectors that have no defined semantics.
func (op Opcode) Legal() bool {
	return op != OP_UNUSED && op != OP_RESERVED
}

// Writes returns true if the opcode writes a general-purpose register and
// so updates the condition flags.
func (op Opcode) Writes() bool {
	switch op {
	case OP_ADD, OP_AND, OP_NOT, OP_LD, OP_LDR, OP_LDI, OP_LEA:
		return true
	}
	return false
}

// Reg is a register index.
type Reg int

//go:generate go tool stringer -linecomment -type=Reg
const (
	R0   = Reg(0) // R0
	R1   = Reg(1) // R1
	R2   = Reg(2) // R2
	R3   = Reg(3) // R3
	R4   = Reg(4) // R4
	R5   = Reg(5) // R5
	R6   = Reg(6) // R6
	R7   = Reg(7) // R7
	PC   = Reg(8) // PC
	COND = Reg(9) // COND
)

// REGISTER_COUNT is the number of slots in the register file.
const REGISTER_COUNT = 10

// Condition flags held in COND. Exactly one is set after any
// register-writing instruction.
const (
	FLAG_P = Word(1 << 0) // Positive
	FLAG_Z = Word(1 << 1) // Zero
	FLAG_N = Word(1 << 2) // Negative
)

// FlagsOf returns the condition flag for a result value.
func FlagsOf(value Word) Word {
	switch {
	case value == 0:
		return FLAG_Z
	case value&0x8000 != 0:
		return FLAG_N
	default:
		return FLAG_P
	}
}

// FlagString renders a flag mask as "nzp", upper-casing the set flags.
func FlagString(flags Word) string {
	s := strings.Builder{}

	for _, flag := range [](struct {
		mask Word
		name rune
	}){{FLAG_N, 'n'}, {FLAG_Z, 'z'}, {FLAG_P, 'p'}} {
		if flags&flag.mask != 0 {
			s.WriteRune(flag.name - 'a' + 'A')
		} else {
			s.WriteRune(flag.name)
		}
	}

	return s.String()
}
