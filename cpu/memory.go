package cpu

// MEMORY_SIZE is the number of addressable words.
const MEMORY_SIZE = 1 << 16

// Memory is the flat word-addressable store. Every 16-bit address is valid.
type Memory struct {
	Data [MEMORY_SIZE]Word
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem.Data[:])
}

// Load copies block into memory starting at offset.
// The load is all-or-nothing: a block that would run past the end of the
// address space leaves memory untouched.
func (mem *Memory) Load(block []Word, offset Word) (err error) {
	if int(offset)+len(block) > MEMORY_SIZE {
		err = ErrLoad{Offset: offset, Length: len(block)}
		return
	}

	copy(mem.Data[offset:], block)

	return
}

// Read returns the word at addr.
func (mem *Memory) Read(addr Word) Word {
	return mem.Data[addr]
}

// Write stores value at addr.
func (mem *Memory) Write(addr Word, value Word) {
	mem.Data[addr] = value
}

// Slice returns a copy of count words starting at addr, wrapping at the end
// of the address space.
func (mem *Memory) Slice(addr Word, count int) (words []Word) {
	words = make([]Word, count)
	for n := range words {
		words[n] = mem.Data[addr+Word(n)]
	}
	return
}
