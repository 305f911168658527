package cpu

// Registers is the register file: R0-R7, PC and COND.
type Registers [REGISTER_COUNT]Word

// Read returns the value of a register.
func (rf *Registers) Read(reg Reg) Word {
	return rf[reg]
}

// Write sets the value of a register.
func (rf *Registers) Write(reg Reg, value Word) {
	rf[reg] = value
}

// Reset zeros every register, including PC and COND.
func (rf *Registers) Reset() {
	clear(rf[:])
}

// fieldReg extracts the 3-bit register field whose low bit is at shift.
func fieldReg(word Word, shift uint) Reg {
	return Reg((word >> shift) & 0x7)
}
