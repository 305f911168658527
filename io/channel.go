// Package io provides the console device behind the LC-3 trap service
// routines.
package io

// Device is a byte-oriented keyboard and display.
type Device interface {
	// GetChar blocks until a character is available from the keyboard.
	GetChar() (ch byte, err error)
	// PutChar writes a single character to the display.
	PutChar(ch byte) error
	// Flush pushes any buffered display output.
	Flush() error
}
