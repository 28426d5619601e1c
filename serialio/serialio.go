// Package serialio defines the narrow, byte-at-a-time non-blocking
// contract the rest of this module drives a serial endpoint through. It
// deliberately does not model a real OS TTY or UART HAL — only the
// read/write/flush shape those drivers expose.
package serialio

import "errors"

// ErrWouldBlock is returned by ReadByte/WriteByte when the operation
// cannot make progress right now but left no side effects: the caller is
// expected to retry later (spin, sleep, or yield to an event loop).
var ErrWouldBlock = errors.New("serialio: would block")

// Serial is a byte-at-a-time, non-blocking read/write/flush endpoint. Both
// a real hardware adapter (see package hwserial) and an in-memory pipe
// used in tests satisfy it.
type Serial interface {
	// ReadByte returns the next received byte, or ErrWouldBlock if none is
	// available yet, or an implementation-specific error.
	ReadByte() (byte, error)
	// WriteByte writes a single byte, returning ErrWouldBlock if the
	// endpoint cannot accept it right now, or an implementation-specific
	// error.
	WriteByte(b byte) error
	// Flush requests that any buffered output be pushed out.
	Flush() error
}
