package counting

// TxState produces the counting protocol's outgoing byte stream one byte
// at a time: the next packet is materialized lazily, only once the
// previous one has been fully emitted.
type TxState struct {
	current         Counter
	checksumEnabled bool
	pending         Packet
	pendingOffset   int
}

// NewTxState creates a TxState starting at Min(w).
func NewTxState(w Width, checksumEnabled bool) *TxState {
	return &TxState{
		current:         Min(w),
		checksumEnabled: checksumEnabled,
	}
}

// Peek returns the next byte to write without consuming it, lazily
// materializing the next packet if the current one is exhausted.
func (s *TxState) Peek() byte {
	if s.pendingOffset >= s.pending.n {
		s.prepareNextPacket()
	}
	return s.pending.buf[s.pendingOffset]
}

// Take returns Peek's result and advances past it.
func (s *TxState) Take() byte {
	b := s.Peek()
	s.pendingOffset++
	return b
}

// Reset restores the initial counter and clears the pending packet,
// leaving the checksum mode untouched.
func (s *TxState) Reset() {
	s.current = Min(s.current.Width)
	s.pending = Packet{}
	s.pendingOffset = 0
}

func (s *TxState) prepareNextPacket() {
	s.pending = EncodePacket(s.current, s.checksumEnabled)
	s.current = Next(s.current)
	s.pendingOffset = 0
}
