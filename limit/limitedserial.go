package limit

import "serialperf/serialio"

// LimitedSerial wraps a Serial endpoint, gating writes through a
// PollingLimiter. Reads and flushes pass through unchanged.
type LimitedSerial struct {
	serial  serialio.Serial
	limiter *PollingLimiter
}

// NewLimitedSerial wraps serial, metering writes against limiter.
func NewLimitedSerial(serial serialio.Serial, limiter *PollingLimiter) *LimitedSerial {
	return &LimitedSerial{serial: serial, limiter: limiter}
}

// ReadByte passes through to the underlying serial endpoint.
func (s *LimitedSerial) ReadByte() (byte, error) {
	return s.serial.ReadByte()
}

// WriteByte writes one byte if the limiter's budget allows it.
//
// If the limiter reports no budget, WriteByte returns ErrWouldBlock without
// touching the underlying serial endpoint. On a successful underlying
// write, the limiter is charged one byte. On ErrWouldBlock or any other
// write error from the underlying endpoint, the limiter budget is left
// untouched — a rejected or failed write never consumed its slot.
func (s *LimitedSerial) WriteByte(b byte) error {
	if !s.limiter.CanSend() {
		return serialio.ErrWouldBlock
	}

	if err := s.serial.WriteByte(b); err != nil {
		return err
	}

	_, err := s.limiter.Send()
	return err
}

// Flush passes through to the underlying serial endpoint.
func (s *LimitedSerial) Flush() error {
	return s.serial.Flush()
}
