package cpu

const (
	CALL_DEPTH = 64 // Maximum tracked call depth
)

// CallStack traces subroutine and trap linkage. Each entry is the return
// address written to R7 by a JSR, JSRR or TRAP. When full, the oldest
// entry is dropped.
type CallStack struct {
	Data []Word
}

func (s *CallStack) Push(link Word) {
	if s.Full() {
		copy(s.Data, s.Data[1:])
		s.Data = s.Data[:len(s.Data)-1]
	}
	s.Data = append(s.Data, link)
}

func (s *CallStack) Pop() (link Word, ok bool) {
	link, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *CallStack) Empty() bool {
	return len(s.Data) == 0
}

func (s *CallStack) Full() bool {
	return len(s.Data) == CALL_DEPTH
}

func (s *CallStack) Peek() (link Word, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *CallStack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}

// Trace updates the stack for an instruction that has just executed
// against the register file reg.
func (s *CallStack) Trace(ins Instruction, reg *Registers) {
	switch {
	case ins.Op == OP_JSR, ins.Op == OP_TRAP:
		s.Push(reg[R7])
	case ins.Op == OP_JMP && ins.Base == R7:
		// Only a RET to the recorded link unwinds.
		if link, ok := s.Peek(); ok && link == reg[PC] {
			s.Pop()
		}
	}
}
