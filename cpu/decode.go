package cpu

import (
	"fmt"
)

// Instruction is a decoded instruction word. Only the fields used by Op are
// meaningful; the rest are zero.
type Instruction struct {
	Word Word   // Raw instruction word.
	Op   Opcode // Operation selector.

	Dr   Reg // Destination register (11-9).
	Sr   Reg // Source register of a store (11-9).
	Sr1  Reg // First source register (8-6).
	Sr2  Reg // Second source register (2-0).
	Base Reg // Base register (8-6).

	Immediate bool // ADD/AND use Imm rather than Sr2.
	Relative  bool // JSR uses a PC-relative Offset rather than Base.

	Imm    Word // Sign-extended imm5.
	Offset Word // Sign-extended offset6, offset9 or offset11.
	Flags  Word // BR n/z/p mask, in COND bit order.
	Vector Word // Zero-extended trapvect8.
}

// SignExtend replicates bit (bits-1) of value through the upper bits of a Word.
func SignExtend(value Word, bits uint) Word {
	value &= (1 << bits) - 1
	if (value>>(bits-1))&1 != 0 {
		value |= 0xffff << bits
	}
	return value
}

// Decode maps an instruction word onto an Instruction.
// Every word decodes; UNUSED and RESERVED carry no operands.
func Decode(word Word) (ins Instruction) {
	ins = Instruction{Word: word, Op: Opcode(word >> 12)}

	switch ins.Op {
	case OP_BR:
		ins.Flags = (word >> 9) & 0x7
		ins.Offset = SignExtend(word, 9)
	case OP_ADD, OP_AND:
		ins.Dr = fieldReg(word, 9)
		ins.Sr1 = fieldReg(word, 6)
		if word&(1<<5) != 0 {
			ins.Immediate = true
			ins.Imm = SignExtend(word, 5)
		} else {
			ins.Sr2 = fieldReg(word, 0)
		}
	case OP_LD, OP_LDI, OP_LEA:
		ins.Dr = fieldReg(word, 9)
		ins.Offset = SignExtend(word, 9)
	case OP_ST, OP_STI:
		ins.Sr = fieldReg(word, 9)
		ins.Offset = SignExtend(word, 9)
	case OP_JSR:
		if word&(1<<11) != 0 {
			ins.Relative = true
			ins.Offset = SignExtend(word, 11)
		} else {
			ins.Base = fieldReg(word, 6)
		}
	case OP_LDR:
		ins.Dr = fieldReg(word, 9)
		ins.Base = fieldReg(word, 6)
		ins.Offset = SignExtend(word, 6)
	case OP_STR:
		ins.Sr = fieldReg(word, 9)
		ins.Base = fieldReg(word, 6)
		ins.Offset = SignExtend(word, 6)
	case OP_NOT:
		ins.Dr = fieldReg(word, 9)
		ins.Sr1 = fieldReg(word, 6)
	case OP_JMP:
		ins.Base = fieldReg(word, 6)
	case OP_TRAP:
		ins.Vector = word & 0xff
	case OP_UNUSED, OP_RESERVED:
		// no operands
	}

	return
}

// Encode returns the canonical instruction word for the decoded fields.
// Bits that the decoder ignores are emitted as zero, except NOT which
// carries its fixed 0b111111 trailer.
func (ins Instruction) Encode() (word Word) {
	word = Word(ins.Op) << 12

	switch ins.Op {
	case OP_BR:
		word |= (ins.Flags&0x7)<<9 | ins.Offset&0x1ff
	case OP_ADD, OP_AND:
		word |= Word(ins.Dr)<<9 | Word(ins.Sr1)<<6
		if ins.Immediate {
			word |= 1<<5 | ins.Imm&0x1f
		} else {
			word |= Word(ins.Sr2)
		}
	case OP_LD, OP_LDI, OP_LEA:
		word |= Word(ins.Dr)<<9 | ins.Offset&0x1ff
	case OP_ST, OP_STI:
		word |= Word(ins.Sr)<<9 | ins.Offset&0x1ff
	case OP_JSR:
		if ins.Relative {
			word |= 1<<11 | ins.Offset&0x7ff
		} else {
			word |= Word(ins.Base) << 6
		}
	case OP_LDR:
		word |= Word(ins.Dr)<<9 | Word(ins.Base)<<6 | ins.Offset&0x3f
	case OP_STR:
		word |= Word(ins.Sr)<<9 | Word(ins.Base)<<6 | ins.Offset&0x3f
	case OP_NOT:
		word |= Word(ins.Dr)<<9 | Word(ins.Sr1)<<6 | 0x3f
	case OP_JMP:
		word |= Word(ins.Base) << 6
	case OP_TRAP:
		word |= ins.Vector & 0xff
	}

	return
}

// String returns the assembly language representation of the instruction.
func (ins Instruction) String() (out string) {
	switch ins.Op {
	case OP_BR:
		if ins.Flags == 0 {
			out = "NOP"
			break
		}
		flags := ""
		for _, fl := range [](struct {
			mask Word
			name string
		}){{FLAG_N, "n"}, {FLAG_Z, "z"}, {FLAG_P, "p"}} {
			if ins.Flags&fl.mask != 0 {
				flags += fl.name
			}
		}
		out = fmt.Sprintf("BR%v #%d", flags, int16(ins.Offset))
	case OP_ADD, OP_AND:
		if ins.Immediate {
			out = fmt.Sprintf("%v %v, %v, #%d", ins.Op, ins.Dr, ins.Sr1, int16(ins.Imm))
		} else {
			out = fmt.Sprintf("%v %v, %v, %v", ins.Op, ins.Dr, ins.Sr1, ins.Sr2)
		}
	case OP_LD, OP_LDI, OP_LEA:
		out = fmt.Sprintf("%v %v, #%d", ins.Op, ins.Dr, int16(ins.Offset))
	case OP_ST, OP_STI:
		out = fmt.Sprintf("%v %v, #%d", ins.Op, ins.Sr, int16(ins.Offset))
	case OP_JSR:
		if ins.Relative {
			out = fmt.Sprintf("JSR #%d", int16(ins.Offset))
		} else {
			out = fmt.Sprintf("JSRR %v", ins.Base)
		}
	case OP_LDR:
		out = fmt.Sprintf("LDR %v, %v, #%d", ins.Dr, ins.Base, int16(ins.Offset))
	case OP_STR:
		out = fmt.Sprintf("STR %v, %v, #%d", ins.Sr, ins.Base, int16(ins.Offset))
	case OP_NOT:
		out = fmt.Sprintf("NOT %v, %v", ins.Dr, ins.Sr1)
	case OP_JMP:
		if ins.Base == R7 {
			out = "RET"
		} else {
			out = fmt.Sprintf("JMP %v", ins.Base)
		}
	case OP_TRAP:
		out = fmt.Sprintf("TRAP x%02X", ins.Vector)
	default:
		out = fmt.Sprintf("%v x%04X", ins.Op, ins.Word)
	}

	return
}

// MakeAdd encodes ADD dr, sr1, sr2.
func MakeAdd(dr, sr1, sr2 Reg) Word {
	return Instruction{Op: OP_ADD, Dr: dr, Sr1: sr1, Sr2: sr2}.Encode()
}

// MakeAddImm encodes ADD dr, sr1, #imm5.
func MakeAddImm(dr, sr1 Reg, imm int) Word {
	return Instruction{Op: OP_ADD, Dr: dr, Sr1: sr1, Immediate: true, Imm: Word(imm)}.Encode()
}

// MakeAnd encodes AND dr, sr1, sr2.
func MakeAnd(dr, sr1, sr2 Reg) Word {
	return Instruction{Op: OP_AND, Dr: dr, Sr1: sr1, Sr2: sr2}.Encode()
}

// MakeAndImm encodes AND dr, sr1, #imm5.
func MakeAndImm(dr, sr1 Reg, imm int) Word {
	return Instruction{Op: OP_AND, Dr: dr, Sr1: sr1, Immediate: true, Imm: Word(imm)}.Encode()
}

// MakeNot encodes NOT dr, sr.
func MakeNot(dr, sr Reg) Word {
	return Instruction{Op: OP_NOT, Dr: dr, Sr1: sr}.Encode()
}

// MakeBr encodes BR with an n/z/p mask and offset9.
func MakeBr(flags Word, offset int) Word {
	return Instruction{Op: OP_BR, Flags: flags, Offset: Word(offset)}.Encode()
}

// MakePcRel encodes LD, LDI, LEA, ST or STI with a register and offset9.
func MakePcRel(op Opcode, reg Reg, offset int) Word {
	return Instruction{Op: op, Dr: reg, Sr: reg, Offset: Word(offset)}.Encode()
}

// MakeBaseRel encodes LDR or STR with a register, base and offset6.
func MakeBaseRel(op Opcode, reg, base Reg, offset int) Word {
	return Instruction{Op: op, Dr: reg, Sr: reg, Base: base, Offset: Word(offset)}.Encode()
}

// MakeJsr encodes JSR with offset11.
func MakeJsr(offset int) Word {
	return Instruction{Op: OP_JSR, Relative: true, Offset: Word(offset)}.Encode()
}

// MakeJsrr encodes JSRR base.
func MakeJsrr(base Reg) Word {
	return Instruction{Op: OP_JSR, Base: base}.Encode()
}

// MakeJmp encodes JMP base.
func MakeJmp(base Reg) Word {
	return Instruction{Op: OP_JMP, Base: base}.Encode()
}

// MakeRet encodes RET (JMP R7).
func MakeRet() Word {
	return MakeJmp(R7)
}

// MakeTrap encodes TRAP vector.
func MakeTrap(vector Word) Word {
	return Instruction{Op: OP_TRAP, Vector: vector}.Encode()
}
