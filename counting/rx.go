package counting

import "serialperf/stats"

type rxPhase int

const (
	rxReceiving rxPhase = iota
	rxAwaitingCRC
)

// RxState consumes the incoming byte stream one byte at a time, framing
// packets on the 0x00 sentinel, validating the CRC, decoding the counter,
// and inferring packet loss from gaps between consecutive counters.
type RxState struct {
	width           Width
	checksumEnabled bool

	phase rxPhase
	buf   [8]byte
	n     int

	last    Counter
	hasLast bool

	lossStats stats.Statistics
}

// NewRxState creates an RxState expecting w-byte counters, using lossStats
// to record inferred packet loss.
func NewRxState(w Width, checksumEnabled bool, lossStats stats.Statistics) *RxState {
	return &RxState{
		width:           w,
		checksumEnabled: checksumEnabled,
		lossStats:       lossStats,
	}
}

// LossStats returns the statistics object tracking inferred packet loss.
func (s *RxState) LossStats() stats.Statistics {
	return s.lossStats
}

// Reset clears framing state and the last-seen counter, but preserves
// width and checksum mode. It does not reset lossStats; callers reset it
// independently (the orchestrator resets all three statistics together).
func (s *RxState) Reset() {
	s.phase = rxReceiving
	s.n = 0
	s.hasLast = false
}

// OnByteReceived feeds one incoming byte into the state machine.
func (s *RxState) OnByteReceived(b byte) {
	switch s.phase {
	case rxReceiving:
		if b == 0x00 {
			s.phase = rxAwaitingCRC
			return
		}
		if s.n >= int(s.width) {
			// Desynchronized: the accumulated prefix never hit the
			// sentinel before filling. Drop it and restart framing
			// with this byte.
			s.n = 0
		}
		s.buf[s.n] = b
		s.n++

	case rxAwaitingCRC:
		crcByte := b
		var crcOpt *byte
		if s.checksumEnabled {
			crcOpt = &crcByte
		}
		if c, ok := DecodePacket(s.width, s.buf[:s.n], crcOpt); ok {
			s.onNewCounter(c)
		}
		s.n = 0
		s.phase = rxReceiving
	}
}

func (s *RxState) onNewCounter(c Counter) {
	if !s.hasLast {
		s.last = c
		s.hasLast = true
		s.lossStats.AddSuccessful(1)
		return
	}

	d := Distance(s.last, c)
	var lost uint64
	if d > 0 {
		lost = d - 1
	}
	s.lossStats.AddFailed(lost)
	s.lossStats.AddSuccessful(1)
	s.last = c
}
