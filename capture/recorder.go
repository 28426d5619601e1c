// Package capture records the raw byte stream of a counting or loopback
// session to a libpcap file, for offline inspection in Wireshark
// alongside the actual protocol traffic.
package capture

import (
	"time"

	"serialperf/pkg/pcap"
	"serialperf/serialio"
)

// Direction tags which side of the link a captured byte crossed.
type Direction byte

const (
	DirectionRX Direction = 0
	DirectionTX Direction = 1
)

// Recorder wraps a serialio.Serial, writing every byte that crosses it
// to a pcap file as a one-byte-payload packet prefixed with a direction
// tag. Capture timestamps come from the wall clock (time.Now), not the
// module's clock abstraction: pcap's on-disk format is defined in terms
// of real calendar time for Wireshark's benefit, which is exactly the
// wall-clock semantics the rest of this module's clock type deliberately
// avoids.
type Recorder struct {
	inner serialio.Serial
	pw    *pcap.Writer
}

// NewRecorder wraps inner, appending captured frames to w. It writes no
// header itself: pcap.NewWriter has already written the 24-byte global
// header when w was created.
func NewRecorder(inner serialio.Serial, w *pcap.Writer) *Recorder {
	return &Recorder{inner: inner, pw: w}
}

// ReadByte passes through to inner, recording the byte as an RX packet
// on success. A WouldBlock or other error is never recorded.
func (r *Recorder) ReadByte() (byte, error) {
	b, err := r.inner.ReadByte()
	if err != nil {
		return 0, err
	}
	r.record(DirectionRX, b)
	return b, nil
}

// WriteByte passes through to inner, recording the byte as a TX packet
// on success.
func (r *Recorder) WriteByte(b byte) error {
	if err := r.inner.WriteByte(b); err != nil {
		return err
	}
	r.record(DirectionTX, b)
	return nil
}

// Flush passes through to inner.
func (r *Recorder) Flush() error {
	return r.inner.Flush()
}

func (r *Recorder) record(dir Direction, b byte) {
	// Errors writing the capture file are deliberately swallowed: a
	// failing capture sink must never interrupt the link it is
	// observing.
	_ = r.pw.WritePacket(time.Now(), []byte{byte(dir), b})
}
