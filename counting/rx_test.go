package counting

import (
	"testing"

	"serialperf/stats"
)

func feedPacket(s *RxState, c Counter, checksumEnabled bool) {
	pkt := EncodePacket(c, checksumEnabled)
	for _, b := range pkt.Bytes() {
		s.OnByteReceived(b)
	}
}

func TestRxStateFirstPacketNoLoss(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width1, true, loss)

	feedPacket(s, Min(Width1), true)

	if loss.Successful() != 1 {
		t.Fatalf("successful = %d, want 1", loss.Successful())
	}
	if loss.Failed() != 0 {
		t.Fatalf("failed = %d, want 0", loss.Failed())
	}
}

func TestRxStateConsecutiveNoLoss(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width1, true, loss)

	c := Min(Width1)
	feedPacket(s, c, true)
	c = Next(c)
	feedPacket(s, c, true)
	c = Next(c)
	feedPacket(s, c, true)

	if loss.Successful() != 3 {
		t.Fatalf("successful = %d, want 3", loss.Successful())
	}
	if loss.Failed() != 0 {
		t.Fatalf("failed = %d, want 0", loss.Failed())
	}
}

func TestRxStateGapCountsLoss(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width1, true, loss)

	c := Min(Width1)
	feedPacket(s, c, true)

	// Skip two counters (c+1 and c+2); arriving packet is c+3.
	c = Next(Next(Next(c)))
	feedPacket(s, c, true)

	if loss.Successful() != 2 {
		t.Fatalf("successful = %d, want 2", loss.Successful())
	}
	if loss.Failed() != 2 {
		t.Fatalf("failed = %d, want 2", loss.Failed())
	}
}

func TestRxStateBadCRCDropsPacketWithoutAffectingLoss(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width1, true, loss)

	c := Min(Width1)
	feedPacket(s, c, true)

	pkt := EncodePacket(Next(c), true)
	corrupted := append([]byte{}, pkt.Bytes()...)
	corrupted[len(corrupted)-1] ^= 0xFF
	for _, b := range corrupted {
		s.OnByteReceived(b)
	}

	if loss.Successful() != 1 {
		t.Fatalf("successful = %d, want 1 (corrupted packet must not count)", loss.Successful())
	}
	if loss.Failed() != 0 {
		t.Fatalf("failed = %d, want 0", loss.Failed())
	}

	// A subsequent valid packet resumes tracking from the last accepted
	// counter, so the corrupted one counts as a gap once we recover.
	feedPacket(s, Next(Next(c)), true)
	if loss.Successful() != 2 {
		t.Fatalf("successful = %d, want 2", loss.Successful())
	}
	if loss.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", loss.Failed())
	}
}

func TestRxStateDesyncRecoversAtNextSentinel(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width2, true, loss)

	// Garbage bytes longer than the counter width, never hitting 0x00,
	// forces an in-band resync before the sentinel finally arrives.
	s.OnByteReceived(0x7A)
	s.OnByteReceived(0x7B)
	s.OnByteReceived(0x7C)
	s.OnByteReceived(0x7D)

	feedPacket(s, Min(Width2), true)

	if loss.Successful() != 1 {
		t.Fatalf("successful = %d, want 1", loss.Successful())
	}
}

func TestRxStateChecksumDisabledIgnoresCRCByte(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width1, false, loss)

	feedPacket(s, Min(Width1), false)
	if loss.Successful() != 1 {
		t.Fatalf("successful = %d, want 1", loss.Successful())
	}
}

func TestRxStateResetClearsFramingNotLossStats(t *testing.T) {
	loss := &stats.Counting{}
	s := NewRxState(Width1, true, loss)

	feedPacket(s, Min(Width1), true)
	s.OnByteReceived(0x05) // partial next packet, never completed

	s.Reset()

	if loss.Successful() != 1 {
		t.Fatalf("Reset must not touch loss stats; successful = %d, want 1", loss.Successful())
	}

	// After reset, framing restarts cleanly.
	feedPacket(s, Min(Width1), true)
	if loss.Successful() != 2 {
		t.Fatalf("successful = %d, want 2", loss.Successful())
	}
}
