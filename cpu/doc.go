// Package cpu implements the execution core of the LC-3 style 16-bit machine.
//
// The machine consists of 65536 words of memory, eight 16-bit general-purpose
// registers (R0-R7), a program counter (PC), and a condition code register
// (COND) holding exactly one of the N, Z or P flags after any instruction that
// writes a general-purpose register.
//
// Each Step fetches the word at PC, advances PC by one word, decodes the word
// into an Instruction, and executes it. PC-relative offsets are therefore
// computed against the address of the following instruction.
package cpu
