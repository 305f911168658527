package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &CallStack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	s.Push(0x3001)
	assert.False(s.Empty())
	assert.Equal(1, len(s.Data))
	assert.Equal(Word(0x3001), s.Data[0])
}

func TestCallStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &CallStack{}
	s.Push(0x3001)
	s.Push(0x4002)

	val, ok := s.Pop()
	assert.True(ok)
	assert.Equal(Word(0x4002), val)
	assert.Equal(1, len(s.Data))

	val, ok = s.Peek()
	assert.True(ok)
	assert.Equal(Word(0x3001), val)

	s.Pop()
	val, ok = s.Pop()
	assert.False(ok)
	assert.Equal(Word(0), val)
}

func TestCallStack_Full(t *testing.T) {
	assert := assert.New(t)

	s := &CallStack{}

	for i := range CALL_DEPTH {
		assert.False(s.Full())
		s.Push(Word(i))
	}
	assert.True(s.Full())

	// The oldest entry is dropped.
	s.Push(0xffff)
	assert.Equal(CALL_DEPTH, len(s.Data))
	assert.Equal(Word(1), s.Data[0])
	assert.Equal(Word(0xffff), s.Data[CALL_DEPTH-1])

	s.Reset()
	assert.True(s.Empty())
}

func TestCallStack_Trace(t *testing.T) {
	assert := assert.New(t)

	mc := NewMachine()
	mc.Reset()
	mc.SetPc(USER_SPACE)
	assert.NoError(mc.Load([]Word{
		MakeJsr(1),     // x3000
		MakeTrap(0x25), // x3001
		MakeJsrr(R7),   // x3002
		MakeRet(),      // x3003
	}, USER_SPACE))

	s := &CallStack{}
	step := func() {
		ins, err := mc.Step()
		assert.NoError(err)
		s.Trace(ins, &mc.Registers)
	}

	step() // JSR x3002
	assert.Equal([]Word{0x3001}, s.Data)

	step() // JSRR R7
	assert.Equal([]Word{0x3001, 0x3003}, s.Data)

	// A RET that does not return to the recorded link leaves the stack.
	s.Trace(Decode(MakeRet()), &mc.Registers)
	assert.Equal(2, len(s.Data))

	mc.Registers[PC] = 0x3003
	s.Trace(Decode(MakeRet()), &mc.Registers)
	assert.Equal([]Word{0x3001}, s.Data)

	s.Trace(Decode(MakeAddImm(R0, R0, 1)), &mc.Registers)
	assert.Equal([]Word{0x3001}, s.Data)
}
