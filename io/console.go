package io

import (
	"bufio"
	"errors"
	"io"
)

// Console provides keyboard input and display output for the trap
// service routines. It wraps an io.Reader for input and io.Writer for output.
//
// In Raw mode the console expects a terminal without line discipline:
// CR is read as LF, DEL as BS, and LF is written as CR LF. A ^C read
// returns ErrConsoleInterrupt.
type Console struct {
	Input  io.Reader
	Output io.Writer
	Raw    bool

	reader *bufio.Reader
	input  io.Reader
	writer *bufio.Writer
	output io.Writer
}

var _ Device = (*Console)(nil)

// Rewind drops any buffered input and output.
func (con *Console) Rewind() {
	con.reader = nil
	con.input = nil
	con.writer = nil
	con.output = nil
}

// GetChar reads the next byte of input.
func (con *Console) GetChar() (ch byte, err error) {
	if con.Input == nil {
		err = ErrConsoleInput
		return
	}

	if con.reader == nil || con.input != con.Input {
		con.reader = bufio.NewReader(con.Input)
		con.input = con.Input
	}

	// Display output must be visible before blocking for a key.
	err = con.Flush()
	if err != nil {
		return
	}

	ch, err = con.reader.ReadByte()
	if err != nil {
		err = errors.Join(ErrConsoleInput, err)
		return
	}

	if con.Raw {
		switch ch {
		case '\r':
			ch = '\n'
		case 0x7f:
			ch = 0x08
		case 0x03:
			err = ErrConsoleInterrupt
		}
	}

	return
}

// PutChar writes a byte of output.
func (con *Console) PutChar(ch byte) (err error) {
	if con.Output == nil {
		err = ErrConsoleOutput
		return
	}

	if con.writer == nil || con.output != con.Output {
		con.writer = bufio.NewWriter(con.Output)
		con.output = con.Output
	}

	if con.Raw && ch == '\n' {
		err = con.writer.WriteByte('\r')
		if err != nil {
			return
		}
	}

	err = con.writer.WriteByte(ch)

	return
}

// PutString writes every byte of text.
func (con *Console) PutString(text string) (err error) {
	for n := range len(text) {
		err = con.PutChar(text[n])
		if err != nil {
			return
		}
	}

	return
}

// Flush writes any buffered output.
func (con *Console) Flush() (err error) {
	if con.writer == nil {
		return
	}

	err = con.writer.Flush()

	return
}
