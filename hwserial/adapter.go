// Package hwserial adapts a real serial port, opened through
// go.bug.st/serial, to the byte-at-a-time non-blocking serialio.Serial
// contract the rest of this module is built on.
package hwserial

import (
	"time"

	"go.bug.st/serial"

	"serialperf/serialio"
)

// pollTimeout is the read timeout configured on the underlying port.
// go.bug.st/serial's Read blocks for at most this long before returning
// whatever it has (possibly zero bytes, with a nil error); a short
// timeout gives ReadByte the poll-don't-block behavior serialio.Serial
// requires without busy-spinning the OS read syscall.
const pollTimeout = 5 * time.Millisecond

// Adapter wraps an open serial.Port.
type Adapter struct {
	port    serial.Port
	readBuf [1]byte
}

// Open opens portPath with the given mode and wraps it in an Adapter.
func Open(portPath string, mode *serial.Mode) (*Adapter, error) {
	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(pollTimeout); err != nil {
		_ = port.Close()
		return nil, err
	}
	return &Adapter{port: port}, nil
}

// Wrap adapts an already-open serial.Port, setting its read timeout to
// the adapter's poll interval.
func Wrap(port serial.Port) (*Adapter, error) {
	if err := port.SetReadTimeout(pollTimeout); err != nil {
		return nil, err
	}
	return &Adapter{port: port}, nil
}

// ReadByte reads one byte, returning serialio.ErrWouldBlock if the poll
// timeout elapses with nothing received.
func (a *Adapter) ReadByte() (byte, error) {
	n, err := a.port.Read(a.readBuf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, serialio.ErrWouldBlock
	}
	return a.readBuf[0], nil
}

// WriteByte writes one byte. The underlying driver's write is not itself
// non-blocking; in practice a single byte always fits the OS write
// buffer immediately, so the rate limiter (package limit) is what
// actually governs pacing, not this call.
func (a *Adapter) WriteByte(b byte) error {
	buf := [1]byte{b}
	n, err := a.port.Write(buf[:])
	if err != nil {
		return err
	}
	if n == 0 {
		return serialio.ErrWouldBlock
	}
	return nil
}

// Flush is a no-op: Write already pushes each byte to the driver
// synchronously, so there is nothing buffered on this side to push out.
func (a *Adapter) Flush() error {
	return nil
}

// Close closes the underlying port.
func (a *Adapter) Close() error {
	return a.port.Close()
}
