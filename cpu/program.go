package cpu

import (
	"encoding/binary"
	"io"
	"iter"
)

// Segment is a block of words with its load origin.
type Segment struct {
	Origin Word
	Words  []Word
}

// Program is an ordered list of segments. Later segments overwrite earlier
// ones where they overlap.
type Program struct {
	Segments []Segment
}

// ReadSegment reads an object image: big-endian words, the first of which
// is the origin of the rest.
func ReadSegment(input io.Reader) (seg Segment, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	if len(data)%2 != 0 {
		err = ErrProgramOdd
		return
	}

	if len(data) < 2 {
		err = ErrProgramEmpty
		return
	}

	seg.Origin = binary.BigEndian.Uint16(data)
	seg.Words = make([]Word, len(data)/2-1)
	for n := range seg.Words {
		seg.Words[n] = binary.BigEndian.Uint16(data[2+2*n:])
	}

	return
}

// WriteSegment writes seg in the object image format read by ReadSegment.
func WriteSegment(output io.Writer, seg Segment) (err error) {
	data := make([]byte, 2+2*len(seg.Words))
	binary.BigEndian.PutUint16(data, seg.Origin)
	for n, word := range seg.Words {
		binary.BigEndian.PutUint16(data[2+2*n:], word)
	}

	_, err = output.Write(data)
	return
}

// Add appends a segment to the program.
func (prog *Program) Add(origin Word, words ...Word) {
	prog.Segments = append(prog.Segments, Segment{Origin: origin, Words: words})
}

// Entry returns the origin of the first segment, or USER_SPACE for an empty
// program.
func (prog *Program) Entry() Word {
	if len(prog.Segments) == 0 {
		return USER_SPACE
	}

	return prog.Segments[0].Origin
}

// Words iterates over every (address, word) pair of the program, in
// segment order.
func (prog *Program) Words() iter.Seq2[Word, Word] {
	return func(yield func(addr Word, word Word) bool) {
		for _, seg := range prog.Segments {
			for n, word := range seg.Words {
				if !yield(seg.Origin+Word(n), word) {
					return
				}
			}
		}
	}
}

// Install loads every segment into the machine. Every segment is checked
// before any is loaded, so a segment that does not fit leaves memory
// untouched.
func (prog *Program) Install(mc *Machine) (err error) {
	for _, seg := range prog.Segments {
		if int(seg.Origin)+len(seg.Words) > MEMORY_SIZE {
			err = ErrLoad{Offset: seg.Origin, Length: len(seg.Words)}
			return
		}
	}

	for _, seg := range prog.Segments {
		err = mc.Load(seg.Words, seg.Origin)
		if err != nil {
			return
		}
	}

	return
}
